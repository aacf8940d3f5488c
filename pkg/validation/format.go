// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/esop-forecast/pkg/constants"
)

var outputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
	constants.OutputFormatPDF,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, f := range outputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV,
		constants.OutputFormatJSON, constants.OutputFormatPDF, format)
}

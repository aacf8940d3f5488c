// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/esop-forecast/pkg/output"
)

// FindRow finds the row for an IPO valuation multiple in a serialised table.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(rows []output.Row, valuation int) *output.Row {
	for i := range rows {
		if rows[i].Valuation == valuation {
			return &rows[i]
		}
	}
	return nil
}

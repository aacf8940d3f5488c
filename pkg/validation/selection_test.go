package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		percent  float64
		count    float64
		multiple int
		wantErr  error
	}{
		{name: "Full grant by percentage", mode: "percentage", percent: 100, multiple: 3},
		{name: "Zero percent", mode: "percentage", percent: 0, multiple: 1},
		{name: "Absolute count", mode: "absolute", count: 2131, multiple: 10},
		{name: "Absolute zero", mode: "absolute", count: 0, multiple: 5},
		{name: "Percent above range", mode: "percentage", percent: 105, multiple: 3, wantErr: ErrInvalidPercent},
		{name: "Negative percent", mode: "percentage", percent: -5, multiple: 3, wantErr: ErrInvalidPercent},
		{name: "NaN percent", mode: "percentage", percent: math.NaN(), multiple: 3, wantErr: ErrInvalidPercent},
		{name: "Negative count", mode: "absolute", count: -100, multiple: 3, wantErr: ErrInvalidCount},
		{name: "Infinite count", mode: "absolute", count: math.Inf(1), multiple: 3, wantErr: ErrInvalidCount},
		{name: "Multiple zero", mode: "percentage", percent: 50, multiple: 0, wantErr: ErrInvalidMultiple},
		{name: "Multiple above range", mode: "absolute", count: 10, multiple: 11, wantErr: ErrInvalidMultiple},
		{name: "Unknown mode", mode: "all", multiple: 3, wantErr: ErrInvalidMode},
		{name: "Percent ignored in absolute mode", mode: "absolute", percent: 500, count: 10, multiple: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelection(tt.mode, tt.percent, tt.count, tt.multiple, 10)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateOptionValueMode(t *testing.T) {
	require.NoError(t, ValidateOptionValueMode("flat"))
	require.NoError(t, ValidateOptionValueMode("gain"))
	require.ErrorIs(t, ValidateOptionValueMode("spread"), ErrInvalidValueMode)
	require.ErrorIs(t, ValidateOptionValueMode(""), ErrInvalidValueMode)
}

func TestSelectionWarnings(t *testing.T) {
	assert.Empty(t, SelectionWarnings("percentage", 35, 0, 2131))
	assert.Len(t, SelectionWarnings("percentage", 33, 0, 2131), 1)

	// The full grant is the number input's default and is not flagged.
	assert.Empty(t, SelectionWarnings("absolute", 0, 2131, 2131))
	assert.Empty(t, SelectionWarnings("absolute", 0, 1500, 2131))
	assert.Len(t, SelectionWarnings("absolute", 0, 1550, 2131), 1)

	warnings := SelectionWarnings("absolute", 0, 3000, 2131)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "exceeds")
}

func TestGrantWarnings(t *testing.T) {
	assert.Empty(t, GrantWarnings(12, 4150, 0.3667, 0.125))
	assert.Len(t, GrantWarnings(5000, 4150, 0.3667, 0.125), 1)
	assert.Len(t, GrantWarnings(12, 4150, 36.67, 12.5), 2)
}

func TestValidateCurrentFMV(t *testing.T) {
	assert.NoError(t, ValidateCurrentFMV(4150))
	assert.ErrorIs(t, ValidateCurrentFMV(0), ErrInvalidFMV)
	assert.ErrorIs(t, ValidateCurrentFMV(-1), ErrInvalidFMV)
	assert.ErrorIs(t, ValidateCurrentFMV(math.NaN()), ErrInvalidFMV)
}

func TestValidateScale(t *testing.T) {
	tests := []struct {
		name    string
		options float64
		wantErr bool
	}{
		{name: "Reference grant", options: 2131},
		{name: "Trillion options", options: 1e12},
		// 1e19 * 13833.33 / 1e5 is about 1.4e18, just past the bound
		{name: "Just beyond the bound", options: 1e19, wantErr: true},
		{name: "Astronomical count", options: 1e300, wantErr: true},
		{name: "Infinite count", options: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScale(tt.options, 12, 4150, 0.3667, 0.125, 100000, 10, 3)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidCount)
		})
	}
}

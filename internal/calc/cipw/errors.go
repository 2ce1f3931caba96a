package cipw

import "errors"

var (
	// ErrInvalidCO2Split is returned when the cancrinite and calcite CO2
	// proportions neither sum to 1 nor are both zero.
	ErrInvalidCO2Split = errors.New("co2_cancrinite and co2_calcite must sum to 1 or both be 0")

	ErrInvalidSkipCols  = errors.New("invalid skip_cols")
	ErrInvalidRounding  = errors.New("invalid to_round")
	ErrEmptyTable       = errors.New("table has no columns")
	ErrMissingReference = errors.New("reference table lacks a molar mass")
)

package calculator

import "errors"

var (
	// ErrInsufficientData means too few aligned periods remain for estimation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateInput means index returns are flat, leaving beta undefined.
	ErrDegenerateInput = errors.New("degenerate input")
)

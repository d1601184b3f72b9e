package fin

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDivisionByZero is returned instead of silently producing zero when a
	// denominator (ownership, contributions) is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

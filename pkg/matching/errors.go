package matching

import "errors"

var (
	// ErrInvalidConstraint is returned when a pattern/expression pair cannot
	// form a constraint.
	ErrInvalidConstraint = errors.New("invalid constraint")

	// ErrInvalidArguments is returned by problem-building operations given
	// data they cannot turn into constraints.
	ErrInvalidArguments = errors.New("invalid problem arguments")

	// ErrInternal wraps the panics raised when the search reaches a state
	// its classification rules exclude. It always indicates a bug.
	ErrInternal = errors.New("internal matching error")
)

package housie

import "errors"

var (
	// ErrInvalidGrid means a grid breaks one of the ticket invariants
	// (row counts, column ranges or duplicate values).
	ErrInvalidGrid = errors.New("invalid ticket grid")

	// ErrGeneration means the generator could not produce a valid grid
	// within the retry budget.
	ErrGeneration = errors.New("failed to generate valid ticket")

	// ErrExhausted means all 99 numbers have been called.
	ErrExhausted = errors.New("all numbers have been called")
)

package binpack

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every input validation error.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNonPositiveSize is returned when an item size is zero, negative or NaN.
	ErrNonPositiveSize = fmt.Errorf("%w: item sizes must be greater than zero", ErrInvalidInput)
	// ErrOversizedItem is returned when an item is larger than a bin.
	ErrOversizedItem = fmt.Errorf("%w: item sizes must not exceed the bin capacity", ErrInvalidInput)
	// ErrNegativeBins is returned when a negative bin count is requested.
	ErrNegativeBins = fmt.Errorf("%w: bin count must be a non-negative integer", ErrInvalidInput)

	// ErrNoSolution is returned when no bin count up to the item count is feasible.
	// It cannot happen for validated input and indicates a search defect.
	ErrNoSolution = errors.New("no feasible bin count found")
	// ErrIncompleteAssignment is returned when the assignment search leaves an item without a bin.
	ErrIncompleteAssignment = errors.New("assignment search left an item unassigned")
	// ErrInvalidAssignment is returned when an assignment overfills a bin or references a missing one.
	ErrInvalidAssignment = errors.New("invalid assignment")
)

package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTerminus is returned for a terminus other than N or C.
	ErrUnknownTerminus = errors.New("unknown terminus")
	// ErrUnknownMassKind is returned for a mass kind other than mono or avg.
	ErrUnknownMassKind = errors.New("unknown mass kind")
)

// UnknownResidueError is returned when a residue code has no entry in the
// amino acid table. Position is the 0-based sequence index, or -1 when the
// lookup happened outside a sequence.
type UnknownResidueError struct {
	Residue  rune
	Position int
}

func (e *UnknownResidueError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("unknown residue '%c'", e.Residue)
	}
	return fmt.Sprintf("unknown residue '%c' at position %d", e.Residue, e.Position)
}

// InvalidIndexError is returned when a split index falls outside [0, Length].
type InvalidIndexError struct {
	Index  int
	Length int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d]", e.Index, e.Length)
}

// ValidationError represents an error found during validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

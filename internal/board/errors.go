package board

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds reports access to a coordinate outside the grid.
	// It always indicates a caller bug, never player input.
	ErrOutOfBounds = errors.New("square out of bounds")

	// ErrInvalidDimensions reports a board size outside [2, MaxDimension].
	ErrInvalidDimensions = errors.New("invalid board dimensions")

	// ErrUnplayableSquare reports an attempt to put a piece on a light square.
	ErrUnplayableSquare = errors.New("square is not playable")

	// ErrInvalidMove is wrapped by every move rejection.
	ErrInvalidMove = errors.New("invalid move")

	// ErrNoPiece is returned when the source square is empty.
	ErrNoPiece = errors.New("no piece on square")

	// ErrWrongSide is returned when moving a piece of the side not on turn.
	ErrWrongSide = errors.New("piece does not belong to side to move")

	// ErrCaptureRequired is returned for a simple move while a capture exists.
	ErrCaptureRequired = errors.New("a capture is available and must be taken")

	// ErrMustContinueChain is returned when a different piece is moved while
	// a capture chain is pending.
	ErrMustContinueChain = errors.New("capture chain must be continued")
)

// BoundsError describes a malformed coordinate for a concrete board.
type BoundsError struct {
	Square Square
	Width  int
	Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("square (%d,%d) outside %dx%d board", e.Square.Row, e.Square.Col, e.Width, e.Height)
}

// Unwrap lets errors.Is match ErrOutOfBounds.
func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// DimensionError describes a board size that cannot be built.
type DimensionError struct {
	Width  int
	Height int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("board %dx%d: each side must be in [2, %d]", e.Width, e.Height, MaxDimension)
}

// Unwrap lets errors.Is match ErrInvalidDimensions.
func (e *DimensionError) Unwrap() error {
	return ErrInvalidDimensions
}

// invalid wraps ErrInvalidMove with the rule that failed.
func invalid(rule string, from, to Square) error {
	return fmt.Errorf("%w: %s -> %s: %s", ErrInvalidMove, from, to, rule)
}

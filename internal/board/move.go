package board

import (
	"fmt"
	"math"
	"strings"
)

// MoveKind classifies a move against the board it was computed on.
type MoveKind uint8

const (
	Invalid MoveKind = iota
	Simple
	Capture
)

// Generator priorities. They only filter moves (captures override simple
// moves); strategic ranking belongs to the evaluator.
const (
	PriorityCapture = 3
	PrioritySimple  = 1
	PriorityInvalid = math.MinInt
)

// Priority returns the filtering priority of the kind.
func (k MoveKind) Priority() int {
	switch k {
	case Capture:
		return PriorityCapture
	case Simple:
		return PrioritySimple
	}
	return PriorityInvalid
}

// String returns the kind name.
func (k MoveKind) String() string {
	switch k {
	case Simple:
		return "Simple"
	case Capture:
		return "Capture"
	}
	return "Invalid"
}

// Move is one primitive step: a slide or a single jump. A capture chain is a
// sequence of Moves by the same piece. A Move is only meaningful for the
// board it was computed against.
type Move struct {
	From     Square
	To       Square
	Kind     MoveKind
	Piece    Piece  // mover before the move
	Captured Square // NoSquare unless Kind == Capture
	Victim   Piece  // NoPiece unless Kind == Capture
	Promotes bool   // mover is crowned on arrival
}

// IsCapture returns true for jumps.
func (m Move) IsCapture() bool {
	return m.Kind == Capture
}

// IsValid returns true for anything but Invalid.
func (m Move) IsValid() bool {
	return m.Kind != Invalid
}

// Result returns the piece as it stands after the move.
func (m Move) Result() Piece {
	if m.Promotes {
		return m.Piece.Crowned()
	}
	return m.Piece
}

// String returns the move in coordinate notation: "c3d4" for a slide,
// "c3xe5" for a jump.
func (m Move) String() string {
	if m.Kind == Invalid {
		return "0000"
	}
	sep := ""
	if m.Kind == Capture {
		sep = "x"
	}
	return m.From.String() + sep + m.To.String()
}

// ParseMoveSquares splits "c3d4", "c3-d4" or "c3xe5" into its two squares.
func ParseMoveSquares(s string) (Square, Square, error) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{"x", "-"} {
		if i := strings.Index(s, sep); i > 0 {
			from, err := ParseSquare(s[:i])
			if err != nil {
				return NoSquare, NoSquare, err
			}
			to, err := ParseSquare(s[i+1:])
			if err != nil {
				return NoSquare, NoSquare, err
			}
			return from, to, nil
		}
	}
	// No separator: the second square starts at the second letter.
	for i := 1; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			from, err := ParseSquare(s[:i])
			if err != nil {
				return NoSquare, NoSquare, err
			}
			to, err := ParseSquare(s[i:])
			if err != nil {
				return NoSquare, NoSquare, err
			}
			return from, to, nil
		}
	}
	return NoSquare, NoSquare, fmt.Errorf("invalid move string: %s", s)
}

// Package board implements the checkers board, the move legality rules and
// the move generator.
package board

import (
	"fmt"
	"strconv"
)

// Square is a (row, column) coordinate on the board, both 0-based.
// Row 0 is Black's home row.
type Square struct {
	Row int
	Col int
}

// NoSquare marks the absence of a square (e.g. no pending capture chain).
var NoSquare = Square{Row: -1, Col: -1}

// NewSquare creates a square from row and column.
func NewSquare(row, col int) Square {
	return Square{Row: row, Col: col}
}

// IsNone returns true for NoSquare.
func (sq Square) IsNone() bool {
	return sq == NoSquare
}

// Playable returns true for the dark squares pieces may stand on.
func (sq Square) Playable() bool {
	return (sq.Row+sq.Col)%2 != 0
}

// Step returns the square dr rows and dc columns away.
func (sq Square) Step(dr, dc int) Square {
	return Square{Row: sq.Row + dr, Col: sq.Col + dc}
}

// ForwardLeft steps one square toward the opponent and to the left, for a
// side moving in direction dir.
func (sq Square) ForwardLeft(dir int) Square {
	return sq.Step(dir, -1)
}

// ForwardRight steps one square toward the opponent and to the right.
func (sq Square) ForwardRight(dir int) Square {
	return sq.Step(dir, 1)
}

// BackwardLeft steps one square back toward the own side and to the left.
func (sq Square) BackwardLeft(dir int) Square {
	return sq.Step(-dir, -1)
}

// BackwardRight steps one square back toward the own side and to the right.
func (sq Square) BackwardRight(dir int) Square {
	return sq.Step(-dir, 1)
}

// String returns the algebraic form: column letter and 1-based row ("b1").
func (sq Square) String() string {
	if sq.IsNone() || sq.Col < 0 || sq.Col > 25 || sq.Row < 0 {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+sq.Col, sq.Row+1)
}

// ParseSquare parses algebraic notation (e.g. "c4") into a Square.
// Bounds against a concrete board are checked by the caller.
func ParseSquare(s string) (Square, error) {
	if len(s) < 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	col := int(s[0] - 'a')
	if col < 0 || col > 25 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	return NewSquare(row-1, col), nil
}

// direction is one diagonal ray, expressed relative to a side's forward
// direction so the same table serves both sides.
type direction struct {
	name    string
	forward bool
	step    func(sq Square, dir int) Square
}

// directions lists the four diagonals in generation order.
var directions = [4]direction{
	{name: "forward-left", forward: true, step: Square.ForwardLeft},
	{name: "forward-right", forward: true, step: Square.ForwardRight},
	{name: "backward-left", forward: false, step: Square.BackwardLeft},
	{name: "backward-right", forward: false, step: Square.BackwardRight},
}

// sign returns -1, 0 or 1.
func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

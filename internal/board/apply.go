package board

// Outcome reports what happened to a proposed move.
type Outcome struct {
	Applied bool
	Err     error

	// Position is the resulting position, independent of the input. It is
	// nil when the move was rejected.
	Position *Position
	Move     Move

	Captured *Placed // removed piece, nil for simple moves
	Promoted bool

	// MustContinue is the square of the piece that has to keep capturing,
	// or NoSquare when the turn passed.
	MustContinue Square
}

// ProposeMove validates and applies a move from -> to for the side to move.
// A rejected proposal leaves pos untouched and carries an error wrapping
// ErrInvalidMove (or a BoundsError for off-board sources).
func ProposeMove(pos *Position, from, to Square) Outcome {
	m, err := pos.ValidateMove(from, to)
	if err != nil {
		return Outcome{Err: err, Move: m, MustContinue: pos.Chain}
	}

	next := pos.Apply(m)
	out := Outcome{
		Applied:      true,
		Position:     next,
		Move:         m,
		Promoted:     m.Promotes,
		MustContinue: next.Chain,
	}
	if m.Kind == Capture {
		out.Captured = &Placed{Square: m.Captured, Piece: m.Victim}
	}
	return out
}

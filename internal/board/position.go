package board

import "fmt"

// Position is a board together with the side to move and the pending
// capture chain, if any.
type Position struct {
	Board      *Board
	SideToMove Side

	// Chain is the square of the piece that must continue capturing, or
	// NoSquare. While set, the same side keeps the turn.
	Chain Square
}

// NewPosition creates the standard 8x8 starting position with Black to move.
func NewPosition() *Position {
	pos, err := InitialPosition(DefaultWidth, DefaultHeight)
	if err != nil {
		panic(err)
	}
	return pos
}

// InitialPosition creates the starting position for any board size in
// [2, MaxDimension].
func InitialPosition(width, height int) (*Position, error) {
	b, err := InitialBoard(width, height)
	if err != nil {
		return nil, err
	}
	return &Position{Board: b, SideToMove: Black, Chain: NoSquare}, nil
}

// NewPositionFromBoard wraps a board with the side to move.
func NewPositionFromBoard(b *Board, side Side) *Position {
	return &Position{Board: b, SideToMove: side, Chain: NoSquare}
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	return &Position{Board: p.Board.Copy(), SideToMove: p.SideToMove, Chain: p.Chain}
}

// InChain returns true while a capture chain is pending.
func (p *Position) InChain() bool {
	return !p.Chain.IsNone()
}

// Apply plays a generated move on a copy and returns the child position.
// The receiver is not modified. After a capture, if the moved piece (crowned
// or not) can capture again, the child keeps the side to move with Chain on
// the landing square; otherwise the turn passes.
func (p *Position) Apply(m Move) *Position {
	child := &Position{Board: p.Board.Copy(), SideToMove: p.SideToMove.Other(), Chain: NoSquare}
	if m.Kind == Capture {
		child.Board.Capture(m.From, m.Captured, m.To)
		if child.Board.HasCapture(m.To) {
			child.SideToMove = p.SideToMove
			child.Chain = m.To
		}
		return child
	}
	child.Board.Move(m.From, m.To)
	return child
}

// ValidateMove checks a proposed move against the turn-level rules on top of
// Classify: ownership, pending chains and the forced capture.
func (p *Position) ValidateMove(from, to Square) (Move, error) {
	pc, err := p.Board.Get(from)
	if err != nil {
		return Move{Kind: Invalid, From: from, To: to, Captured: NoSquare, Victim: NoPiece}, err
	}
	if pc == NoPiece {
		return Move{Kind: Invalid, From: from, To: to, Captured: NoSquare, Victim: NoPiece},
			fmt.Errorf("%w: %s: %w", ErrInvalidMove, from, ErrNoPiece)
	}
	if pc.Side() != p.SideToMove {
		return Move{Kind: Invalid, From: from, To: to, Piece: pc, Captured: NoSquare, Victim: NoPiece},
			fmt.Errorf("%w: %s: %w", ErrInvalidMove, from, ErrWrongSide)
	}
	if p.InChain() && from != p.Chain {
		return Move{Kind: Invalid, From: from, To: to, Piece: pc, Captured: NoSquare, Victim: NoPiece},
			fmt.Errorf("%w: %s: %w (piece on %s)", ErrInvalidMove, from, ErrMustContinueChain, p.Chain)
	}

	m, err := p.Board.Classify(from, to)
	if err != nil {
		return m, err
	}
	if m.Kind != Capture && p.HasAnyCapture() {
		m.Kind = Invalid
		return m, fmt.Errorf("%w: %s -> %s: %w", ErrInvalidMove, from, to, ErrCaptureRequired)
	}
	return m, nil
}

// IsOver returns true when the side to move cannot move.
func (p *Position) IsOver() bool {
	return !p.HasLegalMoves()
}

// String returns the diagram followed by the side to move.
func (p *Position) String() string {
	s := p.Board.String() + "side: " + p.SideToMove.String()
	if p.InChain() {
		s += " (continue from " + p.Chain.String() + ")"
	}
	return s
}

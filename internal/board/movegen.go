package board

import (
	"context"

	"github.com/michalgawin/checkers/internal/pool"
)

// walkers generate one piece's moves along one diagonal, per kind.
var walkers = [NoKind]func(b *Board, from Square, p Piece, d direction) []Move{
	Man:  walkMan,
	King: walkKing,
}

// PieceMoves enumerates every move of the piece on from, in direction order
// forward-left, forward-right, backward-left, backward-right. It ignores the
// forced-capture rule, which spans all pieces of a side.
func (b *Board) PieceMoves(from Square) []Move {
	p := b.PieceAt(from)
	if p == NoPiece {
		return nil
	}
	var moves []Move
	for _, d := range directions {
		moves = append(moves, walkers[p.Kind()](b, from, p, d)...)
	}
	return moves
}

// HasCapture returns true if the piece on from can jump something.
func (b *Board) HasCapture(from Square) bool {
	p := b.PieceAt(from)
	if p == NoPiece {
		return false
	}
	for _, d := range directions {
		for _, m := range walkers[p.Kind()](b, from, p, d) {
			if m.Kind == Capture {
				return true
			}
		}
	}
	return false
}

// walkMan: a man steps once; an empty square is a move only forward, an
// opposing piece with an empty square behind it is a capture either way.
func walkMan(b *Board, from Square, p Piece, d direction) []Move {
	dir := p.Side().Direction()
	next := d.step(from, dir)
	if !b.OnBoard(next) {
		return nil
	}
	target := b.PieceAt(next)
	if target == NoPiece {
		if !d.forward {
			return nil
		}
		return []Move{b.simpleMove(from, next, p)}
	}
	if target.Side() == p.Side() {
		return nil
	}
	landing := d.step(next, dir)
	if !b.OnBoard(landing) || b.IsOccupied(landing) {
		return nil
	}
	return []Move{b.captureMove(from, next, landing, p)}
}

// walkKing: a king slides over empty squares, nearest first. On the first
// opposing piece it may only land directly behind it; continuing past is a
// new primitive move from the landing square.
func walkKing(b *Board, from Square, p Piece, d direction) []Move {
	dir := p.Side().Direction()
	var moves []Move
	sq := d.step(from, dir)
	for b.OnBoard(sq) && !b.IsOccupied(sq) {
		moves = append(moves, b.simpleMove(from, sq, p))
		sq = d.step(sq, dir)
	}
	if !b.OnBoard(sq) || b.PieceAt(sq).Side() == p.Side() {
		return moves
	}
	landing := d.step(sq, dir)
	if b.OnBoard(landing) && !b.IsOccupied(landing) {
		moves = append(moves, b.captureMove(from, sq, landing, p))
	}
	return moves
}

func (b *Board) simpleMove(from, to Square, p Piece) Move {
	return Move{
		From:     from,
		To:       to,
		Kind:     Simple,
		Piece:    p,
		Captured: NoSquare,
		Victim:   NoPiece,
		Promotes: p.Kind() == Man && to.Row == p.Side().PromotionRow(b.height),
	}
}

func (b *Board) captureMove(from, victim, to Square, p Piece) Move {
	return Move{
		From:     from,
		To:       to,
		Kind:     Capture,
		Piece:    p,
		Captured: victim,
		Victim:   b.PieceAt(victim),
		Promotes: p.Kind() == Man && to.Row == p.Side().PromotionRow(b.height),
	}
}

// movers returns the squares allowed to move: the chain piece when a
// capture chain is pending, otherwise every piece of the side to move.
func (p *Position) movers() []Square {
	if !p.Chain.IsNone() {
		return []Square{p.Chain}
	}
	pieces := p.Board.Pieces(p.SideToMove)
	out := make([]Square, len(pieces))
	for i, pc := range pieces {
		out[i] = pc.Square
	}
	return out
}

// LegalMoves generates all legal moves for the side to move. If any capture
// exists, only captures are returned.
func (p *Position) LegalMoves() []Move {
	var moves []Move
	for _, sq := range p.movers() {
		moves = append(moves, p.Board.PieceMoves(sq)...)
	}
	return filterForced(moves)
}

// LegalMovesParallel is LegalMoves with one pool task per piece and
// direction. Results are merged by slot, so the order matches LegalMoves.
func (p *Position) LegalMovesParallel(ctx context.Context, fj *pool.Pool) ([]Move, error) {
	squares := p.movers()
	slots := make([][]Move, len(squares)*len(directions))

	g := fj.Group(ctx)
	for i, sq := range squares {
		pc := p.Board.PieceAt(sq)
		for j, d := range directions {
			slot := i*len(directions) + j
			sq, d := sq, d
			g.Fork(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				slots[slot] = walkers[pc.Kind()](p.Board, sq, pc, d)
				return nil
			})
		}
	}
	if err := g.Join(); err != nil {
		return nil, err
	}

	var moves []Move
	for _, s := range slots {
		moves = append(moves, s...)
	}
	return filterForced(moves), nil
}

// HasLegalMoves returns true if the side to move can move at all.
func (p *Position) HasLegalMoves() bool {
	for _, sq := range p.movers() {
		if len(p.Board.PieceMoves(sq)) > 0 {
			return true
		}
	}
	return false
}

// HasAnyCapture returns true if the side to move has a capture somewhere.
func (p *Position) HasAnyCapture() bool {
	for _, sq := range p.movers() {
		if p.Board.HasCapture(sq) {
			return true
		}
	}
	return false
}

// filterForced drops non-captures when at least one capture is present,
// keeping the highest-priority class only. Order is preserved.
func filterForced(moves []Move) []Move {
	best := PriorityInvalid
	for _, m := range moves {
		if pr := m.Kind.Priority(); pr > best {
			best = pr
		}
	}
	if best != PriorityCapture {
		return moves
	}
	out := moves[:0:0]
	for _, m := range moves {
		if m.Kind.Priority() == best {
			out = append(out, m)
		}
	}
	return out
}

// Package engine implements the checkers AI: the heuristic evaluator, the
// game tree builder and the minimax / alpha-beta search over it.
package engine

import (
	"github.com/michalgawin/checkers/internal/board"
)

// Evaluation constants
const (
	MaterialValue   = 5    // every piece on the board
	KingBonus       = 6    // on top of material for a crowned piece
	ThreatBonus     = 10   // piece has a capture available
	KingThreatBonus = 15   // one of those captures takes a king
	WinBonus        = 1000 // opponent has no pieces left
)

// centrality returns 2 for a coordinate at least two squares from both
// edges of a dimension of the given size, 1 otherwise.
func centrality(x, size int) int {
	if x >= 2 && x <= size-3 {
		return 2
	}
	return 1
}

// advancement returns how far a man has travelled toward its promotion row,
// counting its starting row as 1.
func advancement(pc board.Placed, height int) int {
	if pc.Piece.Side() == board.Black {
		return pc.Square.Row + 1
	}
	return height - pc.Square.Row
}

// threat returns the threat bonus for the piece on sq.
func threat(b *board.Board, sq board.Square) int {
	bonus := 0
	for _, m := range b.PieceMoves(sq) {
		if m.Kind != board.Capture {
			continue
		}
		if m.Victim.IsKing() {
			return KingThreatBonus
		}
		bonus = ThreatBonus
	}
	return bonus
}

// PieceValue scores a single piece on its square.
func PieceValue(b *board.Board, pc board.Placed) int {
	v := MaterialValue + centrality(pc.Square.Col, b.Width())
	if pc.Piece.IsKing() {
		v += centrality(pc.Square.Row, b.Height()) + KingBonus
	} else {
		v += advancement(pc, b.Height())
	}
	return v + threat(b, pc.Square)
}

// Evaluate returns the static evaluation of the board from side's point of
// view: its piece values minus the opponent's, plus WinBonus if the opponent
// has no pieces and minus WinBonus if side has none. The function is
// symmetric: Evaluate(b, Black) == -Evaluate(b, White).
func Evaluate(b *board.Board, side board.Side) int {
	var own, opp, ownCount, oppCount int
	for _, pc := range b.Pieces(board.NoSide) {
		v := PieceValue(b, pc)
		if pc.Piece.Side() == side {
			own += v
			ownCount++
		} else {
			opp += v
			oppCount++
		}
	}

	score := own - opp
	if oppCount == 0 {
		score += WinBonus
	}
	if ownCount == 0 {
		score -= WinBonus
	}
	return score
}

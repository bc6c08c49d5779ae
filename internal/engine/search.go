package engine

import (
	"context"

	"github.com/michalgawin/checkers/internal/board"
)

// Search constants
const (
	Infinity = 30000
	MaxDepth = 12
)

// ctxCheckInterval is how many visited nodes pass between cancellation checks.
const ctxCheckInterval = 1024

// evaluator scores leaves; EvalCache and plainEvaluator implement it.
type evaluator interface {
	Evaluate(b *board.Board, side board.Side) int
}

type plainEvaluator struct{}

func (plainEvaluator) Evaluate(b *board.Board, side board.Side) int {
	return Evaluate(b, side)
}

// searcher walks a built tree for one root side.
type searcher struct {
	ctx   context.Context
	side  board.Side
	eval  evaluator
	nodes uint64
	stop  bool
}

func newSearcher(ctx context.Context, side board.Side, eval evaluator) *searcher {
	if eval == nil {
		eval = plainEvaluator{}
	}
	return &searcher{ctx: ctx, side: side, eval: eval}
}

// visit counts a node and polls the context.
func (s *searcher) visit() bool {
	s.nodes++
	if !s.stop && s.nodes%ctxCheckInterval == 0 && s.ctx.Err() != nil {
		s.stop = true
	}
	return !s.stop
}

// leaf returns the evaluator score of n from the searcher's side, cached on
// the node.
func (s *searcher) leaf(n *Node) int {
	if !n.scored || n.scoredFor != s.side {
		n.score = s.eval.Evaluate(n.Position.Board, s.side)
		n.scored, n.scoredFor = true, s.side
	}
	return n.score
}

// maximizing: a node maximizes iff the side to move is the root side. While
// a capture chain is pending the same side moves again.
func (s *searcher) maximizing(n *Node) bool {
	return n.Position.SideToMove == s.side
}

func (s *searcher) minimax(n *Node) int {
	if !s.visit() {
		return 0
	}
	if n.IsLeaf() {
		return s.leaf(n)
	}

	if s.maximizing(n) {
		best := -Infinity
		for _, c := range n.Children {
			if v := s.minimax(c); v > best {
				best = v
			}
		}
		return best
	}
	best := Infinity
	for _, c := range n.Children {
		if v := s.minimax(c); v < best {
			best = v
		}
	}
	return best
}

// alphaBeta is fail-soft: the returned value may lie outside (alpha, beta).
func (s *searcher) alphaBeta(n *Node, alpha, beta int) int {
	if !s.visit() {
		return 0
	}
	if n.IsLeaf() {
		return s.leaf(n)
	}

	if s.maximizing(n) {
		best := -Infinity
		for _, c := range n.Children {
			v := s.alphaBeta(c, alpha, beta)
			if v > best {
				best = v
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
		return best
	}

	best := Infinity
	for _, c := range n.Children {
		v := s.alphaBeta(c, alpha, beta)
		if v < best {
			best = v
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// rootMinimax picks the first root child with the highest minimax value.
func (s *searcher) rootMinimax(root *Node) (int, int) {
	bestIdx, bestVal := -1, -Infinity
	for i, c := range root.Children {
		if v := s.minimax(c); bestIdx < 0 || v > bestVal {
			bestIdx, bestVal = i, v
		}
	}
	return bestIdx, bestVal
}

// rootAlphaBeta picks the same child as rootMinimax. Only strictly better
// children raise alpha, and a child that cannot beat alpha returns a bound
// no greater than it, so ties keep the earliest child.
func (s *searcher) rootAlphaBeta(root *Node) (int, int) {
	bestIdx, bestVal := -1, -Infinity
	alpha := -Infinity
	for i, c := range root.Children {
		v := s.alphaBeta(c, alpha, Infinity)
		if bestIdx < 0 || v > bestVal {
			bestIdx, bestVal = i, v
		}
		if bestVal > alpha {
			alpha = bestVal
		}
	}
	return bestIdx, bestVal
}

// Minimax searches a built tree and returns the index of the best root
// child for side and its backed-up value. The index is -1 when the root has
// no children.
func Minimax(root *Node, side board.Side) (int, int) {
	return newSearcher(context.Background(), side, nil).rootMinimax(root)
}

// AlphaBeta is Minimax with alpha-beta pruning. It chooses the same child
// and value as Minimax.
func AlphaBeta(root *Node, side board.Side) (int, int) {
	return newSearcher(context.Background(), side, nil).rootAlphaBeta(root)
}

// GreedyMove returns the first legal move of the highest priority class, so
// a capture whenever one exists. It does no lookahead.
func GreedyMove(pos *board.Position) (board.Move, bool) {
	var best board.Move
	found := false
	for _, m := range pos.LegalMoves() {
		if !found || m.Kind.Priority() > best.Kind.Priority() {
			best, found = m, true
		}
	}
	return best, found
}

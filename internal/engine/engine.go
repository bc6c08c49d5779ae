package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/michalgawin/checkers/internal/board"
	"github.com/michalgawin/checkers/internal/pool"
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth     int
	Score     int
	Nodes     uint64 // tree nodes built
	Visited   uint64 // nodes walked by the search
	Time      time.Duration
	Move      board.Move
	CacheRate float64 // eval cache hit rate, percent
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // plies to build; 0 picks the greedy move
	MoveTime time.Duration // abort the search after this long (0 = no limit)
	Minimax  bool          // search without pruning
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2},
	Medium: {Depth: 4},
	Hard:   {Depth: 6},
}

// String returns the lower-case difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("invalid difficulty: %s", s)
}

// Choice is the engine's pick for the side to move.
type Choice struct {
	From      board.Square
	To        board.Square
	IsCapture bool
	Score     int
	Move      board.Move
}

// Engine is the checkers AI engine. An Engine may serve several games at
// once; the pool and evaluation cache are shared between them.
type Engine struct {
	pool       *pool.Pool
	cache      *EvalCache
	difficulty atomic.Int32

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine using the given pool and an evaluation cache
// of cacheMB megabytes.
func NewEngine(p *pool.Pool, cacheMB int) *Engine {
	if p == nil {
		p = pool.New(pool.DefaultWorkers)
	}
	e := &Engine{
		pool:  p,
		cache: NewEvalCache(cacheMB),
	}
	e.difficulty.Store(int32(Medium))
	return e
}

// SetDifficulty sets the engine difficulty. It is safe to call while
// searches run; a running search keeps the limits it started with.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty.Store(int32(d))
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	return Difficulty(e.difficulty.Load())
}

// Search picks a move with the limits of the current difficulty.
func (e *Engine) Search(ctx context.Context, pos *board.Position) (Choice, bool, error) {
	return e.SearchWithLimits(ctx, pos, DifficultySettings[e.Difficulty()])
}

// BestMove builds the game tree of pos to depth plies and returns the
// alpha-beta choice for the side to move. ok is false when there is no
// legal move. If ctx ends first, ctx.Err() is returned and no choice.
func (e *Engine) BestMove(ctx context.Context, pos *board.Position, depth int) (Choice, bool, error) {
	return e.SearchWithLimits(ctx, pos, SearchLimits{Depth: depth})
}

// SearchWithLimits is BestMove with explicit limits.
func (e *Engine) SearchWithLimits(ctx context.Context, pos *board.Position, limits SearchLimits) (Choice, bool, error) {
	if err := ctx.Err(); err != nil {
		return Choice{}, false, err
	}
	startTime := time.Now()
	side := pos.SideToMove

	if limits.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.MoveTime)
		defer cancel()
	}

	if limits.Depth <= 0 {
		m, ok := GreedyMove(pos)
		if !ok {
			return Choice{}, false, nil
		}
		score := e.cache.Evaluate(pos.Apply(m).Board, side)
		return choiceOf(m, score), true, nil
	}
	depth := limits.Depth
	if depth > MaxDepth {
		depth = MaxDepth
	}

	builder := NewBuilder(e.pool)
	root := NewRoot(pos)
	if err := builder.Build(ctx, root, depth); err != nil {
		return Choice{}, false, fmt.Errorf("build game tree: %w", err)
	}
	if root.IsLeaf() {
		return Choice{}, false, nil
	}

	s := newSearcher(ctx, side, e.cache)
	var idx, score int
	if limits.Minimax {
		idx, score = s.rootMinimax(root)
	} else {
		idx, score = s.rootAlphaBeta(root)
	}
	if s.stop {
		return Choice{}, false, ctx.Err()
	}

	m := root.Children[idx].Move
	info := SearchInfo{
		Depth:     depth,
		Score:     score,
		Nodes:     builder.Nodes(),
		Visited:   s.nodes,
		Time:      time.Since(startTime),
		Move:      m,
		CacheRate: e.cache.HitRate(),
	}
	log.Debug().
		Str("side", side.String()).
		Int("depth", depth).
		Str("move", m.String()).
		Int("score", score).
		Uint64("nodes", info.Nodes).
		Uint64("visited", info.Visited).
		Dur("time", info.Time).
		Msg("search finished")
	if e.OnInfo != nil {
		e.OnInfo(info)
	}

	return choiceOf(m, score), true, nil
}

func choiceOf(m board.Move, score int) Choice {
	return Choice{From: m.From, To: m.To, IsCapture: m.IsCapture(), Score: score, Move: m}
}

// Clear clears the evaluation cache.
func (e *Engine) Clear() {
	e.cache.Clear()
}

// Pool returns the engine's worker pool.
func (e *Engine) Pool() *pool.Pool {
	return e.pool
}

// Perft counts the leaf nodes of the move tree to depth (for debugging move
// generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	moves := pos.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		nodes += e.Perft(pos.Apply(m), depth-1)
	}
	return nodes
}

// PerftDivide returns the perft count below each root move, in generation
// order.
func (e *Engine) PerftDivide(pos *board.Position, depth int) ([]board.Move, []uint64) {
	moves := pos.LegalMoves()
	counts := make([]uint64, len(moves))
	for i, m := range moves {
		counts[i] = e.Perft(pos.Apply(m), depth-1)
	}
	return moves, counts
}

// Evaluate returns the static evaluation of a position for the side to move.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.cache.Evaluate(pos.Board, pos.SideToMove)
}

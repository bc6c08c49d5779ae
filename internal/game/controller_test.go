package game

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalgawin/checkers/internal/board"
	"github.com/michalgawin/checkers/internal/engine"
	"github.com/michalgawin/checkers/internal/pool"
	"github.com/michalgawin/checkers/internal/storage"
)

type fakeRecorder struct {
	mu      sync.Mutex
	results []storage.GameResult
}

func (r *fakeRecorder) RecordGame(result storage.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

func (r *fakeRecorder) all() []storage.GameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]storage.GameResult(nil), r.results...)
}

type failingMover struct{ err error }

func (f failingMover) Search(context.Context, *board.Position) (engine.Choice, bool, error) {
	return engine.Choice{}, false, f.err
}

func newEngine() *engine.Engine {
	eng := engine.NewEngine(pool.New(2), 1)
	eng.SetDifficulty(engine.Easy)
	return eng
}

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return pos
}

func sq(t *testing.T, s string) board.Square {
	t.Helper()
	out, err := board.ParseSquare(s)
	require.NoError(t, err)
	return out
}

func TestHumanMoves(t *testing.T) {
	c := NewController(Options{Players: [2]PlayerKind{Human, Human}})
	require.Equal(t, AwaitingHumanMove, c.State())

	before := c.Position()
	_, err := c.ProposeMove(sq(t, "b3"), sq(t, "b4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, board.ErrInvalidMove)
	assert.Equal(t, AwaitingHumanMove, c.State())
	assert.Equal(t, before.FEN(), c.Position().FEN())

	_, err = c.ProposeMove(sq(t, "a6"), sq(t, "b5"))
	assert.ErrorIs(t, err, board.ErrWrongSide)

	out, err := c.ProposeMove(sq(t, "b3"), sq(t, "a4"))
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, AwaitingHumanMove, c.State())
	assert.Equal(t, board.White, c.Position().SideToMove)
	assert.Len(t, c.History(), 1)
}

func TestHumanChain(t *testing.T) {
	rec := &fakeRecorder{}
	c := NewController(Options{
		Position: mustFEN(t, "8/8/1b6/2w5/8/4w3/8/8 b"),
		Players:  [2]PlayerKind{Human, Human},
		Recorder: rec,
	})

	out, err := c.ProposeMove(sq(t, "b3"), sq(t, "d5"))
	require.NoError(t, err)
	assert.Equal(t, sq(t, "d5"), out.MustContinue)
	assert.Equal(t, AwaitingChainContinuation, c.State())
	assert.Equal(t, board.Black, c.Position().SideToMove)

	_, err = c.ProposeMove(sq(t, "d5"), sq(t, "e6"))
	assert.ErrorIs(t, err, board.ErrInvalidMove)
	assert.Equal(t, AwaitingChainContinuation, c.State())

	out, err = c.ProposeMove(sq(t, "d5"), sq(t, "f7"))
	require.NoError(t, err)
	assert.Equal(t, board.NoSquare, out.MustContinue)
	assert.Equal(t, GameOver, c.State())

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, board.Black, res.Winner)
	assert.ErrorIs(t, res.Reason, ErrNoLegalMoves)
	assert.Equal(t, 2, res.Plies)

	_, err = c.ProposeMove(sq(t, "f7"), sq(t, "e8"))
	assert.ErrorIs(t, err, ErrGameOver)

	results := rec.all()
	require.Len(t, results, 1)
	assert.True(t, results[0].Won)
	assert.Equal(t, storage.ModeHumanVsHuman, results[0].Mode)
	assert.Equal(t, 2, results[0].Plies)
}

func TestComputerTurn(t *testing.T) {
	c := NewController(Options{
		Players: [2]PlayerKind{Human, Computer},
		AI:      newEngine(),
	})

	_, err := c.PlayAI(context.Background())
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = c.ProposeMove(sq(t, "b3"), sq(t, "a4"))
	require.NoError(t, err)
	require.Equal(t, AwaitingAIMove, c.State())

	_, err = c.ProposeMove(sq(t, "a6"), sq(t, "b5"))
	assert.ErrorIs(t, err, ErrNotYourTurn)

	outcomes, err := c.PlayAI(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Applied)
	assert.Equal(t, AwaitingHumanMove, c.State())
	assert.Equal(t, board.Black, c.Position().SideToMove)
	assert.Len(t, c.History(), 2)
}

func TestComputerChain(t *testing.T) {
	rec := &fakeRecorder{}
	c := NewController(Options{
		Position:   mustFEN(t, "8/8/5W2/8/8/2W5/8/B7 b"),
		Players:    [2]PlayerKind{Computer, Human},
		AI:         newEngine(),
		Recorder:   rec,
		Difficulty: storage.DifficultyEasy,
	})
	require.Equal(t, AwaitingAIMove, c.State())

	outcomes, err := c.PlayAI(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, sq(t, "d5"), outcomes[0].Move.To)
	assert.Equal(t, sq(t, "d5"), outcomes[0].MustContinue)
	assert.Equal(t, sq(t, "g2"), outcomes[1].Move.To)

	assert.Equal(t, GameOver, c.State())
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, board.Black, res.Winner)

	results := rec.all()
	require.Len(t, results, 1)
	assert.False(t, results[0].Won, "the human played White")
	assert.Equal(t, storage.ModeHumanVsComputer, results[0].Mode)
}

func TestComputerVsComputer(t *testing.T) {
	c := NewController(Options{
		Players: [2]PlayerKind{Computer, Computer},
		AI:      newEngine(),
	})
	for i := 0; i < 6 && c.State() != GameOver; i++ {
		_, err := c.PlayAI(context.Background())
		require.NoError(t, err)
		require.Contains(t, []State{AwaitingAIMove, GameOver}, c.State())
	}
	assert.GreaterOrEqual(t, len(c.History()), 6)
}

func TestSearchErrorKeepsState(t *testing.T) {
	boom := errors.New("boom")
	c := NewController(Options{
		Players: [2]PlayerKind{Computer, Human},
		AI:      failingMover{err: boom},
	})
	before := c.Position().FEN()

	outcomes, err := c.PlayAI(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, outcomes)
	assert.Equal(t, AwaitingAIMove, c.State())
	assert.Equal(t, before, c.Position().FEN())
}

func TestCancelledComputerTurn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewController(Options{
		Players: [2]PlayerKind{Computer, Human},
		AI:      newEngine(),
	})
	_, err := c.PlayAI(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, AwaitingAIMove, c.State())
}

func TestStartWithoutMoves(t *testing.T) {
	c := NewController(Options{Position: mustFEN(t, "1w6/8/8/8/8/8/8/8 w")})
	assert.Equal(t, GameOver, c.State())
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, board.Black, res.Winner)
	assert.Equal(t, 0, res.Plies)
}

func TestAbandon(t *testing.T) {
	rec := &fakeRecorder{}
	c := NewController(Options{Recorder: rec})
	require.NoError(t, c.Abandon())
	assert.Equal(t, GameOver, c.State())
	assert.ErrorIs(t, c.Abandon(), ErrGameOver)

	res, _ := c.Result()
	assert.Equal(t, board.NoSide, res.Winner)
	assert.ErrorIs(t, res.Reason, ErrAbandoned)

	results := rec.all()
	require.Len(t, results, 1)
	assert.True(t, results[0].Abandoned)
	assert.False(t, results[0].Won)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "AwaitingChainContinuation", AwaitingChainContinuation.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.Equal(t, "computer", Computer.String())
}

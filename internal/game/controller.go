// Package game runs checkers games: the turn controller state machine and a
// manager for concurrent sessions.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/michalgawin/checkers/internal/board"
	"github.com/michalgawin/checkers/internal/engine"
	"github.com/michalgawin/checkers/internal/storage"
)

var (
	// ErrNoLegalMoves is the game-over reason when the side to move is stuck
	// or has no pieces left.
	ErrNoLegalMoves = errors.New("no legal moves")

	// ErrNotYourTurn is returned when a human moves during the computer's
	// turn or PlayAI is called during a human turn.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrGameOver is returned for any move after the game has ended.
	ErrGameOver = errors.New("game is over")

	// ErrAbandoned is the game-over reason for an abandoned game.
	ErrAbandoned = errors.New("game abandoned")
)

// State is the controller state.
type State int

const (
	AwaitingHumanMove State = iota
	ValidatingMove
	ApplyingSimpleMove
	ApplyingCapture
	AwaitingChainContinuation
	AwaitingAIMove
	ApplyingAIMove
	GameOver
)

var stateNames = [...]string{
	AwaitingHumanMove:         "AwaitingHumanMove",
	ValidatingMove:            "ValidatingMove",
	ApplyingSimpleMove:        "ApplyingSimpleMove",
	ApplyingCapture:           "ApplyingCapture",
	AwaitingChainContinuation: "AwaitingChainContinuation",
	AwaitingAIMove:            "AwaitingAIMove",
	ApplyingAIMove:            "ApplyingAIMove",
	GameOver:                  "GameOver",
}

// String returns the state name.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PlayerKind says who controls a side.
type PlayerKind int

const (
	Human PlayerKind = iota
	Computer
)

// String returns "human" or "computer".
func (k PlayerKind) String() string {
	if k == Computer {
		return "computer"
	}
	return "human"
}

// Mover chooses moves for computer-controlled sides. *engine.Engine
// implements it.
type Mover interface {
	Search(ctx context.Context, pos *board.Position) (engine.Choice, bool, error)
}

// MoverFunc adapts a function to Mover.
type MoverFunc func(ctx context.Context, pos *board.Position) (engine.Choice, bool, error)

// Search calls f.
func (f MoverFunc) Search(ctx context.Context, pos *board.Position) (engine.Choice, bool, error) {
	return f(ctx, pos)
}

// ResultRecorder receives finished games. *storage.Storage implements it.
type ResultRecorder interface {
	RecordGame(result storage.GameResult) error
}

// Options configures a new controller.
type Options struct {
	ID         string
	Position   *board.Position // nil = standard start
	Players    [2]PlayerKind   // indexed by board.Side
	AI         Mover
	Recorder   ResultRecorder
	Difficulty storage.Difficulty
}

// Result describes a finished game.
type Result struct {
	Winner board.Side // NoSide when abandoned
	Reason error      // ErrNoLegalMoves or ErrAbandoned
	Plies  int
}

// Controller drives one game. Every method is safe for concurrent use; a
// computer turn holds the controller until the search returns.
type Controller struct {
	mu sync.Mutex

	id         string
	pos        *board.Position
	state      State
	players    [2]PlayerKind
	ai         Mover
	recorder   ResultRecorder
	difficulty storage.Difficulty
	history    []board.Move
	result     *Result
	started    time.Time
	logger     zerolog.Logger
}

// NewController creates a controller in the state matching the side to move.
func NewController(opts Options) *Controller {
	pos := opts.Position
	if pos == nil {
		pos = board.NewPosition()
	}
	c := &Controller{
		id:         opts.ID,
		pos:        pos.Copy(),
		players:    opts.Players,
		ai:         opts.AI,
		recorder:   opts.Recorder,
		difficulty: opts.Difficulty,
		started:    time.Now(),
		logger:     log.With().Str("game", opts.ID).Logger(),
	}
	c.advance()
	return c
}

// ID returns the game id.
func (c *Controller) ID() string {
	return c.id
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position returns a copy of the current position.
func (c *Controller) Position() *board.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos.Copy()
}

// History returns the primitive moves played so far.
func (c *Controller) History() []board.Move {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]board.Move, len(c.history))
	copy(out, c.history)
	return out
}

// Result returns the outcome once the game is over.
func (c *Controller) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

// Players returns who controls each side.
func (c *Controller) Players() [2]PlayerKind {
	return c.players
}

// ProposeMove validates and applies a human move. A rejected proposal leaves
// the position and state unchanged; the returned error wraps
// board.ErrInvalidMove.
func (c *Controller) ProposeMove(from, to board.Square) (board.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case GameOver:
		return board.Outcome{MustContinue: board.NoSquare}, ErrGameOver
	case AwaitingHumanMove, AwaitingChainContinuation:
	default:
		return board.Outcome{MustContinue: board.NoSquare}, ErrNotYourTurn
	}

	resume := c.state
	c.state = ValidatingMove
	out := board.ProposeMove(c.pos, from, to)
	if !out.Applied {
		c.state = resume
		c.logger.Debug().Str("from", from.String()).Str("to", to.String()).Err(out.Err).Msg("move rejected")
		return out, out.Err
	}

	c.apply(out)
	return out, nil
}

// PlayAI plays the computer's whole turn, including every continuation of
// a capture chain, and returns the primitive outcomes in order. When both
// sides are computer-controlled it stops once the turn passes. On a search
// error the moves already played stay applied and the controller keeps
// awaiting the computer.
func (c *Controller) PlayAI(ctx context.Context) ([]board.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case GameOver:
		return nil, ErrGameOver
	case AwaitingAIMove:
	default:
		return nil, ErrNotYourTurn
	}
	if c.ai == nil {
		return nil, errors.New("no engine configured")
	}

	side := c.pos.SideToMove
	var outcomes []board.Outcome
	for c.state == AwaitingAIMove && c.pos.SideToMove == side {
		choice, ok, err := c.ai.Search(ctx, c.pos)
		if err != nil {
			return outcomes, fmt.Errorf("computer move: %w", err)
		}
		if !ok {
			// Unreachable while advance checks for moves; end the game anyway.
			c.finish(c.pos.SideToMove.Other(), ErrNoLegalMoves)
			break
		}

		c.state = ApplyingAIMove
		out := board.ProposeMove(c.pos, choice.From, choice.To)
		if !out.Applied {
			c.state = AwaitingAIMove
			return outcomes, fmt.Errorf("engine proposed %s: %w", choice.Move, out.Err)
		}
		c.logger.Info().
			Str("side", c.pos.SideToMove.String()).
			Str("move", out.Move.String()).
			Int("score", choice.Score).
			Msg("computer move")
		c.apply(out)
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// Abandon ends the game without a winner.
func (c *Controller) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == GameOver {
		return ErrGameOver
	}
	c.finish(board.NoSide, ErrAbandoned)
	return nil
}

// apply commits an accepted outcome and moves to the next state.
func (c *Controller) apply(out board.Outcome) {
	if out.Move.IsCapture() {
		c.state = ApplyingCapture
	} else if c.state != ApplyingAIMove {
		c.state = ApplyingSimpleMove
	}
	c.pos = out.Position
	c.history = append(c.history, out.Move)
	c.advance()
}

// advance picks the waiting state for the side to move, or ends the game.
func (c *Controller) advance() {
	if !c.pos.HasLegalMoves() {
		c.finish(c.pos.SideToMove.Other(), ErrNoLegalMoves)
		return
	}
	switch {
	case c.players[c.pos.SideToMove] == Computer:
		c.state = AwaitingAIMove
	case c.pos.InChain():
		c.state = AwaitingChainContinuation
	default:
		c.state = AwaitingHumanMove
	}
}

func (c *Controller) finish(winner board.Side, reason error) {
	c.state = GameOver
	c.result = &Result{Winner: winner, Reason: reason, Plies: len(c.history)}
	c.logger.Info().
		Str("winner", winner.String()).
		Int("plies", len(c.history)).
		Str("reason", reason.Error()).
		Msg("game over")

	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordGame(c.gameResult()); err != nil {
		c.logger.Warn().Err(err).Msg("failed to record game")
	}
}

// gameResult maps the result onto the stored statistics: from the human's
// side when exactly one side is human, from Black otherwise.
func (c *Controller) gameResult() storage.GameResult {
	mode := storage.ModeHumanVsHuman
	perspective := board.Black
	switch {
	case c.players[board.Black] == Computer && c.players[board.White] == Computer:
		mode = storage.ModeComputerVsComputer
	case c.players[board.Black] == Computer:
		mode = storage.ModeHumanVsComputer
		perspective = board.White
	case c.players[board.White] == Computer:
		mode = storage.ModeHumanVsComputer
	}

	return storage.GameResult{
		Won:        c.result.Winner == perspective,
		Abandoned:  errors.Is(c.result.Reason, ErrAbandoned),
		Mode:       mode,
		Difficulty: c.difficulty,
		Plies:      c.result.Plies,
		Duration:   time.Since(c.started),
	}
}

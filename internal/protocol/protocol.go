// Package protocol implements a line-oriented text protocol for driving the
// engine and games from a host program (a GUI, a script, a terminal).
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/michalgawin/checkers/internal/board"
	"github.com/michalgawin/checkers/internal/engine"
	"github.com/michalgawin/checkers/internal/game"
	"github.com/michalgawin/checkers/internal/storage"
)

// Protocol handles commands for one host connection.
type Protocol struct {
	engine  *engine.Engine
	games   *game.Manager
	current *game.Controller
	players [2]game.PlayerKind
	depth   int // negative: difficulty preset
	out     io.Writer
}

// New creates a protocol handler writing responses to out. depth overrides
// the difficulty preset for "go" when non-negative.
func New(eng *engine.Engine, games *game.Manager, depth int, out io.Writer) *Protocol {
	p := &Protocol{
		engine:  eng,
		games:   games,
		players: [2]game.PlayerKind{game.Human, game.Computer},
		depth:   depth,
		out:     out,
	}
	return p
}

// SetPlayers sets who controls each side in games started afterwards.
func (p *Protocol) SetPlayers(players [2]game.PlayerKind) {
	p.players = players
}

// Run reads commands from in until "quit", EOF or ctx ends.
func (p *Protocol) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := p.Handle(ctx, scanner.Text()); quit {
			return nil
		}
	}
	return scanner.Err()
}

// Handle executes one command line and reports whether the host asked to
// quit.
func (p *Protocol) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]

	var err error
	switch cmd {
	case "isready":
		p.println("readyok")
	case "newgame":
		err = p.handleNewGame(args)
	case "position":
		err = p.handlePosition(args)
	case "move":
		err = p.handleMove(args)
	case "go":
		err = p.handleGo(ctx, args)
	case "play":
		err = p.handlePlay(ctx)
	case "difficulty":
		err = p.handleDifficulty(args)
	case "eval":
		p.printf("eval %d\n", p.engine.Evaluate(p.game().Position()))
	case "legal":
		p.handleLegal()
	case "status":
		p.handleStatus()
	case "history":
		p.handleHistory()
	case "fen":
		p.println(p.game().Position().FEN())
	case "d":
		pos := p.game().Position()
		p.println(pos.String())
		p.println("fen " + pos.FEN())
	case "perft":
		err = p.handlePerft(args)
	case "games":
		p.handleGames()
	case "use":
		err = p.handleUse(args)
	case "quit":
		return true
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		log.Debug().Str("command", line).Err(err).Msg("command failed")
		p.printf("error %v\n", err)
	}
	return false
}

// handleNewGame starts a game. Format: newgame [hvh|hvc|cvc] [b|w]
// where the side is the human's in hvc (default w).
func (p *Protocol) handleNewGame(args []string) error {
	players := p.players
	if len(args) > 0 {
		human := board.White
		if len(args) > 1 {
			side, ok := board.ParseSide(args[1])
			if !ok {
				return fmt.Errorf("invalid side: %s", args[1])
			}
			human = side
		}
		switch args[0] {
		case "hvh":
			players = [2]game.PlayerKind{game.Human, game.Human}
		case "cvc":
			players = [2]game.PlayerKind{game.Computer, game.Computer}
		case "hvc":
			players[human] = game.Human
			players[human.Other()] = game.Computer
		default:
			return fmt.Errorf("invalid mode: %s", args[0])
		}
	}
	p.players = players
	p.engine.Clear()
	p.newGame(nil)
	p.printf("game %s\n", p.current.ID())
	return nil
}

// handlePosition replaces the current game with a new one. Formats:
//   - position start [moves b3a4 ...]
//   - position fen <fen> [moves b3a4 ...]
func (p *Protocol) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing argument")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "start", "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("position: unknown form %q", args[0])
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			from, to, err := board.ParseMoveSquares(s)
			if err != nil {
				return err
			}
			out := board.ProposeMove(pos, from, to)
			if !out.Applied {
				return out.Err
			}
			pos = out.Position
		}
	}

	p.newGame(pos)
	p.printf("game %s\n", p.current.ID())
	return nil
}

// handleMove plays a human move: move b3a4
func (p *Protocol) handleMove(args []string) error {
	if len(args) != 1 {
		return errors.New("move: expected one move")
	}
	from, to, err := board.ParseMoveSquares(args[0])
	if err != nil {
		return err
	}
	out, err := p.game().ProposeMove(from, to)
	if err != nil {
		return err
	}
	p.printOutcome(out)
	p.handleStatus()
	return nil
}

// handlePlay lets the computer play its turn.
func (p *Protocol) handlePlay(ctx context.Context) error {
	outcomes, err := p.game().PlayAI(ctx)
	for _, out := range outcomes {
		p.printOutcome(out)
	}
	if err != nil {
		return err
	}
	p.handleStatus()
	return nil
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
	Minimax  bool
}

// handleGo searches the current position without playing the move:
// go [depth N] [movetime MS] [minimax]
func (p *Protocol) handleGo(ctx context.Context, args []string) error {
	opts, err := p.parseGoOptions(args)
	if err != nil {
		return err
	}

	p.engine.OnInfo = p.sendInfo
	defer func() { p.engine.OnInfo = nil }()

	choice, ok, err := p.engine.SearchWithLimits(ctx, p.game().Position(), engine.SearchLimits{
		Depth:    opts.Depth,
		MoveTime: opts.MoveTime,
		Minimax:  opts.Minimax,
	})
	if err != nil {
		return err
	}
	if !ok {
		p.println("bestmove none")
		return nil
	}
	p.printf("bestmove %s score %d\n", choice.Move, choice.Score)
	return nil
}

// parseGoOptions parses "go" command arguments.
func (p *Protocol) parseGoOptions(args []string) (GoOptions, error) {
	opts := GoOptions{Depth: p.depth}
	if opts.Depth < 0 {
		opts.Depth = engine.DifficultySettings[p.engine.Difficulty()].Depth
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 >= len(args) {
				return opts, errors.New("go: depth needs a value")
			}
			d, err := strconv.Atoi(args[i+1])
			if err != nil || d < 0 || d > engine.MaxDepth {
				return opts, fmt.Errorf("go: invalid depth %q", args[i+1])
			}
			opts.Depth = d
			i++
		case "movetime":
			if i+1 >= len(args) {
				return opts, errors.New("go: movetime needs a value")
			}
			ms, err := strconv.Atoi(args[i+1])
			if err != nil || ms < 0 {
				return opts, fmt.Errorf("go: invalid movetime %q", args[i+1])
			}
			opts.MoveTime = time.Duration(ms) * time.Millisecond
			i++
		case "minimax":
			opts.Minimax = true
		default:
			return opts, fmt.Errorf("go: unknown option %q", args[i])
		}
	}
	return opts, nil
}

// sendInfo outputs search info.
func (p *Protocol) sendInfo(info engine.SearchInfo) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		fmt.Sprintf("score %d", info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("visited %d", info.Visited),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		nps := uint64(float64(info.Visited) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	parts = append(parts, fmt.Sprintf("cache %.1f", info.CacheRate), "pv "+info.Move.String())
	p.printf("info %s\n", strings.Join(parts, " "))
}

func (p *Protocol) handleDifficulty(args []string) error {
	if len(args) == 0 {
		p.printf("difficulty %s\n", p.engine.Difficulty())
		return nil
	}
	d, err := engine.ParseDifficulty(args[0])
	if err != nil {
		return err
	}
	p.engine.SetDifficulty(d)
	p.printf("difficulty %s\n", d)
	return nil
}

func (p *Protocol) handleLegal() {
	moves := p.game().Position().LegalMoves()
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	p.printf("legal %s\n", strings.TrimSpace(strings.Join(names, " ")))
}

func (p *Protocol) handleStatus() {
	if res, over := p.game().Result(); over {
		p.printf("gameover winner %s reason %v\n", res.Winner, res.Reason)
		return
	}
	pos := p.game().Position()
	s := fmt.Sprintf("state %s side %s", p.game().State(), pos.SideToMove)
	if pos.InChain() {
		s += " continue " + pos.Chain.String()
	}
	p.println(s)
}

func (p *Protocol) handleHistory() {
	moves := p.game().History()
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	p.printf("history %s\n", strings.TrimSpace(strings.Join(names, " ")))
}

// handlePerft prints the divided perft: perft N
func (p *Protocol) handlePerft(args []string) error {
	depth := 1
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			return fmt.Errorf("perft: invalid depth %q", args[0])
		}
		depth = d
	}

	start := time.Now()
	moves, counts := p.engine.PerftDivide(p.game().Position(), depth)
	var total uint64
	for i, m := range moves {
		p.printf("%s: %d\n", m, counts[i])
		total += counts[i]
	}
	p.printf("nodes %d time %d\n", total, time.Since(start).Milliseconds())
	return nil
}

func (p *Protocol) handleGames() {
	for _, id := range p.games.IDs() {
		marker := " "
		if id == p.game().ID() {
			marker = "*"
		}
		p.printf("%s %s\n", marker, id)
	}
}

func (p *Protocol) handleUse(args []string) error {
	if len(args) != 1 {
		return errors.New("use: expected a game id")
	}
	c, err := p.games.Get(args[0])
	if err != nil {
		return err
	}
	p.current = c
	p.printf("game %s\n", c.ID())
	return nil
}

// game returns the current game, starting one if needed.
func (p *Protocol) game() *game.Controller {
	if p.current == nil {
		p.newGame(nil)
	}
	return p.current
}

func (p *Protocol) newGame(pos *board.Position) {
	p.current = p.games.NewGame(pos, p.players, storage.Difficulty(p.engine.Difficulty()))
}

func (p *Protocol) printOutcome(out board.Outcome) {
	s := "moved " + out.Move.String()
	if out.Promoted {
		s += " promoted"
	}
	if !out.MustContinue.IsNone() {
		s += " continue " + out.MustContinue.String()
	}
	p.println(s)
}

func (p *Protocol) println(s string) {
	fmt.Fprintln(p.out, s)
}

func (p *Protocol) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

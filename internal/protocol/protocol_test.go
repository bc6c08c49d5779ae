package protocol

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalgawin/checkers/internal/engine"
	"github.com/michalgawin/checkers/internal/game"
	"github.com/michalgawin/checkers/internal/pool"
)

func newProtocol(out *bytes.Buffer) *Protocol {
	eng := engine.NewEngine(pool.New(2), 1)
	eng.SetDifficulty(engine.Easy)
	return New(eng, game.NewManager(eng, nil), -1, out)
}

// transcript runs the script and returns the response lines.
func transcript(t *testing.T, script ...string) []string {
	t.Helper()
	var out bytes.Buffer
	p := newProtocol(&out)
	require.NoError(t, p.Run(context.Background(), strings.NewReader(strings.Join(script, "\n"))))
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestHumanGameTranscript(t *testing.T) {
	lines := transcript(t,
		"isready",
		"newgame hvh",
		"move b3a4",
		"fen",
		"history",
		"quit",
		"isready",
	)
	require.Len(t, lines, 6)
	assert.Equal(t, "readyok", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "game "))
	assert.Equal(t, "moved b3a4", lines[2])
	assert.Equal(t, "state AwaitingHumanMove side White", lines[3])
	assert.Equal(t, "1b1b1b1b/b1b1b1b1/3b1b1b/b7/8/w1w1w1w1/1w1w1w1w/w1w1w1w1 w", lines[4])
	assert.Equal(t, "history b3a4", lines[5])
}

func TestChainTranscript(t *testing.T) {
	lines := transcript(t,
		"newgame hvh",
		"position fen 8/8/1b6/2w5/8/4w3/8/8 b",
		"move b3xd5",
		"move d5e6",
		"move d5xf7",
	)
	require.Len(t, lines, 7)
	assert.Equal(t, "moved b3xd5 continue d5", lines[2])
	assert.Equal(t, "state AwaitingChainContinuation side Black continue d5", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "error invalid move"), lines[4])
	assert.Equal(t, "moved d5xf7", lines[5])
	assert.Equal(t, "gameover winner Black reason no legal moves", lines[6])
}

func TestPositionWithMoves(t *testing.T) {
	lines := transcript(t,
		"position start moves b3a4 a6b5",
		"fen",
		"position start moves b3b4",
	)
	require.Len(t, lines, 3)
	assert.Equal(t, "1b1b1b1b/b1b1b1b1/3b1b1b/b7/1w6/2w1w1w1/1w1w1w1w/w1w1w1w1 b", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "error "), lines[2])
}

func TestGoTranscript(t *testing.T) {
	lines := transcript(t, "go depth 3")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "info depth 3 score -6 nodes 358 "), lines[0])
	assert.Equal(t, "bestmove b3a4 score -6", lines[1])

	lines = transcript(t, "go depth 3 minimax")
	assert.Equal(t, "bestmove b3a4 score -6", lines[len(lines)-1])

	lines = transcript(t, "position fen 1w6/8/8/8/8/8/8/8 w", "go")
	assert.Equal(t, "bestmove none", lines[len(lines)-1])
}

func TestPlayTranscript(t *testing.T) {
	lines := transcript(t, "newgame hvc w", "play", "status")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "moved "), lines[1])
	assert.Equal(t, "state AwaitingHumanMove side White", lines[2])
	assert.Equal(t, lines[2], lines[3])

	lines = transcript(t, "newgame hvc b", "play")
	assert.Equal(t, "error not your turn", lines[1])
}

func TestPerftAndLegal(t *testing.T) {
	lines := transcript(t, "perft 2", "legal")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[7], "nodes 49 "), lines[7])
	assert.Equal(t, "legal b3a4 b3c4 d3c4 d3e4 f3e4 f3g4 h3g4", lines[8])
}

func TestEvalAndDifficulty(t *testing.T) {
	lines := transcript(t, "eval", "difficulty hard", "difficulty", "difficulty impossible")
	require.Len(t, lines, 4)
	assert.Equal(t, "eval 0", lines[0])
	assert.Equal(t, "difficulty hard", lines[1])
	assert.Equal(t, "difficulty hard", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "error "), lines[3])
}

func TestGames(t *testing.T) {
	var out bytes.Buffer
	p := newProtocol(&out)
	first := p.game().ID()

	p.Handle(context.Background(), "newgame hvh")
	require.NotEqual(t, first, p.current.ID())

	out.Reset()
	p.Handle(context.Background(), "games")
	assert.Contains(t, out.String(), "  "+first+"\n")
	assert.Contains(t, out.String(), "* "+p.current.ID()+"\n")

	out.Reset()
	p.Handle(context.Background(), "use "+first)
	assert.Equal(t, "game "+first+"\n", out.String())
	assert.Equal(t, first, p.current.ID())

	out.Reset()
	p.Handle(context.Background(), "use nope")
	assert.Equal(t, "error game not found\n", out.String())
}

func TestErrors(t *testing.T) {
	lines := transcript(t, "bogus", "move", "go depth x", "perft 0", "newgame xyz")
	require.Len(t, lines, 5)
	assert.Equal(t, "error unknown command: bogus", lines[0])
	assert.Equal(t, "error move: expected one move", lines[1])
	assert.Equal(t, `error go: invalid depth "x"`, lines[2])
	assert.Equal(t, `error perft: invalid depth "0"`, lines[3])
	assert.Equal(t, "error invalid mode: xyz", lines[4])
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := newProtocol(&out).Run(ctx, strings.NewReader("isready\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

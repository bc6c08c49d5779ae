package board

import (
	"context"
	"testing"

	"github.com/michalgawin/checkers/internal/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveStrings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

func TestInitialLegalMoves(t *testing.T) {
	pos := NewPosition()
	assert.Equal(t,
		[]string{"b3a4", "b3c4", "d3c4", "d3e4", "f3e4", "f3g4", "h3g4"},
		moveStrings(pos.LegalMoves()))

	pos.SideToMove = White
	assert.Equal(t,
		[]string{"a6b5", "c6b5", "c6d5", "e6d5", "e6f5", "g6f5", "g6h5"},
		moveStrings(pos.LegalMoves()))
}

func TestForcedCapture(t *testing.T) {
	b := boardWith(t, map[string]Piece{
		"b3": BlackMan,
		"c4": WhiteMan,
		"h3": BlackMan,
	})
	pos := NewPositionFromBoard(b, Black)

	moves := pos.LegalMoves()
	require.Len(t, moves, 1)
	assert.Equal(t, "b3xd5", moves[0].String())
	assert.True(t, pos.HasAnyCapture())
}

func TestManCapturesBackward(t *testing.T) {
	b := boardWith(t, map[string]Piece{
		"d5": BlackMan,
		"c4": WhiteMan,
		"b1": WhiteMan,
	})
	pos := NewPositionFromBoard(b, Black)
	assert.Equal(t, []string{"d5xb3"}, moveStrings(pos.LegalMoves()))
}

func TestKingSlidesNearestFirst(t *testing.T) {
	b := boardWith(t, map[string]Piece{"b1": BlackKing})
	pos := NewPositionFromBoard(b, Black)
	assert.Equal(t,
		[]string{"b1a2", "b1c2", "b1d3", "b1e4", "b1f5", "b1g6", "b1h7"},
		moveStrings(pos.LegalMoves()))
}

func TestKingCaptureLandsBehindVictim(t *testing.T) {
	b := boardWith(t, map[string]Piece{
		"b1": BlackKing,
		"e4": WhiteMan,
	})
	pos := NewPositionFromBoard(b, Black)
	moves := pos.LegalMoves()
	require.Len(t, moves, 1)
	assert.Equal(t, "b1xf5", moves[0].String())
	assert.Equal(t, NewSquare(3, 4), moves[0].Captured)
}

func TestChainRestrictsMovers(t *testing.T) {
	b := boardWith(t, map[string]Piece{
		"b3": BlackMan,
		"c4": WhiteMan,
		"e6": WhiteMan,
		"h3": BlackMan,
		"g4": WhiteMan,
	})
	pos := NewPositionFromBoard(b, Black)
	require.Equal(t, []string{"b3xd5", "h3xf5"}, moveStrings(pos.LegalMoves()))

	next := pos.Apply(pos.LegalMoves()[0])
	require.True(t, next.InChain())
	assert.Equal(t, Black, next.SideToMove)
	assert.Equal(t, []string{"d5xf7"}, moveStrings(next.LegalMoves()))
}

func TestPromotionMidChainContinuesAsKing(t *testing.T) {
	b := boardWith(t, map[string]Piece{
		"c6": BlackMan,
		"d7": WhiteMan,
		"g6": WhiteMan,
	})
	pos := NewPositionFromBoard(b, Black)
	moves := pos.LegalMoves()
	require.Equal(t, []string{"c6xe8"}, moveStrings(moves))
	require.True(t, moves[0].Promotes)

	next := pos.Apply(moves[0])
	assert.Equal(t, BlackKing, next.Board.PieceAt(NewSquare(7, 4)))
	assert.Equal(t, NewSquare(7, 4), next.Chain)
	assert.Equal(t, []string{"e8xh5"}, moveStrings(next.LegalMoves()))
}

func TestBlockedPieceContributesNothing(t *testing.T) {
	b := boardWith(t, map[string]Piece{
		"a8": WhiteMan, // boxed in by b7
		"b7": WhiteMan,
		"c6": WhiteMan,
	})
	pos := NewPositionFromBoard(b, White)
	for _, m := range pos.LegalMoves() {
		assert.NotEqual(t, NewSquare(7, 0), m.From)
	}
}

func TestNoLegalMoves(t *testing.T) {
	b := boardWith(t, map[string]Piece{"b1": WhiteMan})
	pos := NewPositionFromBoard(b, White)
	assert.Empty(t, pos.LegalMoves())
	assert.True(t, pos.IsOver())

	empty := NewPositionFromBoard(emptyBoard(t, 8, 8), Black)
	assert.True(t, empty.IsOver())
}

// checkGeneratedMoves walks the move tree of pos and requires every
// generated move to be accepted by Classify and ValidateMove with the same
// classification. Down to completeDepth plies it also requires the reverse:
// every (from, to) pair ValidateMove accepts is generated.
func checkGeneratedMoves(t *testing.T, pos *Position, depth, completeDepth int) int {
	t.Helper()
	moves := pos.LegalMoves()
	generated := make(map[[2]Square]bool, len(moves))
	for _, m := range moves {
		generated[[2]Square{m.From, m.To}] = true

		got, err := pos.Board.Classify(m.From, m.To)
		require.NoError(t, err, "%s in %s", m, pos.FEN())
		require.Equal(t, m, got, "Classify %s in %s", m, pos.FEN())

		got, err = pos.ValidateMove(m.From, m.To)
		require.NoError(t, err, "%s in %s", m, pos.FEN())
		require.Equal(t, m.Kind, got.Kind, "%s in %s", m, pos.FEN())
		require.Equal(t, m.Captured, got.Captured, "%s in %s", m, pos.FEN())
	}

	if completeDepth > 0 {
		for _, from := range pos.movers() {
			for row := 0; row < pos.Board.Height(); row++ {
				for col := 0; col < pos.Board.Width(); col++ {
					to := NewSquare(row, col)
					_, err := pos.ValidateMove(from, to)
					require.Equal(t, generated[[2]Square{from, to}], err == nil,
						"%s-%s in %s: %v", from, to, pos.FEN(), err)
				}
			}
		}
	}

	if depth <= 1 {
		return len(moves)
	}
	nodes := 0
	for _, m := range moves {
		nodes += checkGeneratedMoves(t, pos.Apply(m), depth-1, completeDepth-1)
	}
	return nodes
}

func TestGeneratedMovesPassValidation(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{"start", StartFEN, 5},
		{"kings", "8/8/5W2/8/8/2W5/8/B7 b", 5},
		{"kings and men", "8/8/1b5b/2w3w1/8/4W3/8/B7 b", 5},
		{"lone king", "7B/8/8/8/8/2w5/8/8 w", 6},
		{"chain", "8/8/1b6/2w5/8/4w3/8/8 b", 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			require.NoError(t, err)
			leaves := checkGeneratedMoves(t, pos, tc.depth, 3)
			if tc.fen == StartFEN {
				assert.Equal(t, 7350, leaves)
			}
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	positions := []*Position{NewPosition()}
	// Walk a few plies to get varied positions.
	pos := NewPosition()
	for i := 0; i < 12; i++ {
		moves := pos.LegalMoves()
		if len(moves) == 0 {
			break
		}
		pos = pos.Apply(moves[len(moves)/2])
		positions = append(positions, pos)
	}

	for _, workers := range []int{1, 3, 8} {
		fj := pool.New(workers)
		for _, p := range positions {
			par, err := p.LegalMovesParallel(context.Background(), fj)
			require.NoError(t, err)
			assert.Equal(t, p.LegalMoves(), par, "workers=%d fen=%s", workers, p.FEN())
		}
	}
}

func TestParallelHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPosition().LegalMovesParallel(ctx, pool.New(1))
	assert.ErrorIs(t, err, context.Canceled)
}

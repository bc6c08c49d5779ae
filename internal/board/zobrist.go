package board

// Zobrist keys for position hashing, generated from a fixed seed so hashes
// are stable across runs.
var (
	zobristPiece      [MaxDimension * MaxDimension][4]uint64 // [square index][Piece]
	zobristChain      [MaxDimension * MaxDimension]uint64
	zobristSideToMove uint64 // XOR when White to move
)

func init() {
	initZobrist()
}

// prng is a xorshift64* generator.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x6A09E667F3BCC909)

	for sq := range zobristPiece {
		for p := range zobristPiece[sq] {
			zobristPiece[sq][p] = rng.next()
		}
	}
	for sq := range zobristChain {
		zobristChain[sq] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// zobristIndex maps a square to a key slot independent of board width, so
// equal placements on equal-sized boards hash equally.
func zobristIndex(sq Square) int {
	return sq.Row*MaxDimension + sq.Col
}

// Hash computes the Zobrist hash of the board contents.
func (b *Board) Hash() uint64 {
	var h uint64
	for i, p := range b.cells {
		if p == NoPiece {
			continue
		}
		h ^= zobristPiece[zobristIndex(NewSquare(i/b.width, i%b.width))][p]
	}
	return h
}

// Hash computes the Zobrist hash of the position, including the side to
// move and the pending chain square.
func (p *Position) Hash() uint64 {
	h := p.Board.Hash()
	if p.SideToMove == White {
		h ^= zobristSideToMove
	}
	if p.InChain() {
		h ^= zobristChain[zobristIndex(p.Chain)]
	}
	return h
}

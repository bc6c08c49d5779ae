package board

import (
	"strconv"
	"strings"
)

// Standard board dimensions.
const (
	DefaultWidth  = 8
	DefaultHeight = 8
)

// Board is a width x height checkers grid. Each cell holds at most one piece;
// only playable squares can hold pieces. A Board carries no history: undo is
// done by discarding a copy.
type Board struct {
	width  int
	height int
	cells  []Piece
}

// NewBoard creates an empty board. Both dimensions must lie in
// [2, MaxDimension]; anything else yields a *DimensionError.
func NewBoard(width, height int) (*Board, error) {
	if err := ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	cells := make([]Piece, width*height)
	for i := range cells {
		cells[i] = NoPiece
	}
	return &Board{width: width, height: height, cells: cells}, nil
}

// ValidateDimensions checks that a board of the given size can be built.
func ValidateDimensions(width, height int) error {
	if width < 2 || width > MaxDimension || height < 2 || height > MaxDimension {
		return &DimensionError{Width: width, Height: height}
	}
	return nil
}

// InitialBoard creates the starting setup: three rows of men per side on
// the playable squares, Black on the top rows and White on the bottom rows.
// Smaller boards get fewer rows so the two armies never touch.
func InitialBoard(width, height int) (*Board, error) {
	b, err := NewBoard(width, height)
	if err != nil {
		return nil, err
	}
	rows := (height - 2) / 2
	if rows > 3 {
		rows = 3
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			sq := NewSquare(row, col)
			if !sq.Playable() {
				continue
			}
			switch {
			case row < rows:
				b.cells[b.index(sq)] = BlackMan
			case row >= height-rows:
				b.cells[b.index(sq)] = WhiteMan
			}
		}
	}
	return b, nil
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// OnBoard returns true if the square lies inside the grid.
func (b *Board) OnBoard(sq Square) bool {
	return sq.Row >= 0 && sq.Row < b.height && sq.Col >= 0 && sq.Col < b.width
}

func (b *Board) index(sq Square) int {
	return sq.Row*b.width + sq.Col
}

func (b *Board) bounds(sq Square) error {
	if !b.OnBoard(sq) {
		return &BoundsError{Square: sq, Width: b.width, Height: b.height}
	}
	return nil
}

// Get returns the piece on a square, NoPiece if empty.
func (b *Board) Get(sq Square) (Piece, error) {
	if err := b.bounds(sq); err != nil {
		return NoPiece, err
	}
	return b.cells[b.index(sq)], nil
}

// Set places a piece on a square, or clears it when p is NoPiece.
func (b *Board) Set(sq Square, p Piece) error {
	if err := b.bounds(sq); err != nil {
		return err
	}
	if p != NoPiece && !sq.Playable() {
		return ErrUnplayableSquare
	}
	b.cells[b.index(sq)] = p
	return nil
}

// PieceAt returns the piece on a square; off-board squares read as empty.
func (b *Board) PieceAt(sq Square) Piece {
	if !b.OnBoard(sq) {
		return NoPiece
	}
	return b.cells[b.index(sq)]
}

// IsOccupied returns true if a piece stands on the square.
func (b *Board) IsOccupied(sq Square) bool {
	return b.PieceAt(sq) != NoPiece
}

// Copy creates a deep, independent copy of the board.
func (b *Board) Copy() *Board {
	cells := make([]Piece, len(b.cells))
	copy(cells, b.cells)
	return &Board{width: b.width, height: b.height, cells: cells}
}

// Equal reports whether two boards have the same size and contents.
func (b *Board) Equal(o *Board) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Pieces lists the pieces of a side in row-major order. NoSide lists both.
func (b *Board) Pieces(side Side) []Placed {
	var out []Placed
	for i, p := range b.cells {
		if p == NoPiece {
			continue
		}
		if side != NoSide && p.Side() != side {
			continue
		}
		out = append(out, Placed{Square: NewSquare(i/b.width, i%b.width), Piece: p})
	}
	return out
}

// Count returns the number of pieces a side owns.
func (b *Board) Count(side Side) int {
	n := 0
	for _, p := range b.cells {
		if p != NoPiece && p.Side() == side {
			n++
		}
	}
	return n
}

// Move relocates the piece on from to to, crowning a man that lands on its
// promotion row. Returns true if the piece was promoted. No legality checks.
func (b *Board) Move(from, to Square) bool {
	p := b.cells[b.index(from)]
	b.cells[b.index(from)] = NoPiece
	promoted := false
	if p.Kind() == Man && to.Row == p.Side().PromotionRow(b.height) {
		p = p.Crowned()
		promoted = true
	}
	b.cells[b.index(to)] = p
	return promoted
}

// Capture removes the victim, then moves the piece from from to to.
func (b *Board) Capture(from, victim, to Square) bool {
	b.cells[b.index(victim)] = NoPiece
	return b.Move(from, to)
}

// String returns a text diagram, row 0 first.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for col := 0; col < b.width; col++ {
		sb.WriteByte(' ')
		sb.WriteByte(byte('a' + col))
	}
	sb.WriteByte('\n')
	for row := 0; row < b.height; row++ {
		if row+1 < 10 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(row + 1))
		sb.WriteByte(' ')
		for col := 0; col < b.width; col++ {
			sb.WriteByte(' ')
			sq := NewSquare(row, col)
			p := b.cells[b.index(sq)]
			switch {
			case p != NoPiece:
				sb.WriteString(p.String())
			case sq.Playable():
				sb.WriteByte('.')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

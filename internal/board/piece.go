package board

// Side represents one of the two players.
type Side uint8

const (
	Black Side = iota
	White
	NoSide Side = 2
)

// Other returns the opposite side.
func (s Side) Other() Side {
	return s ^ 1
}

// Direction returns the row delta of the side's forward move.
// Black starts on row 0 and moves down the rows, White moves up.
func (s Side) Direction() int {
	switch s {
	case Black:
		return 1
	case White:
		return -1
	}
	return 0
}

// PromotionRow returns the row on which a man of this side is crowned.
func (s Side) PromotionRow(height int) int {
	if s == Black {
		return height - 1
	}
	return 0
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "NoSide"
	}
}

// ParseSide parses "b"/"black" or "w"/"white".
func ParseSide(s string) (Side, bool) {
	switch s {
	case "b", "black", "Black", "B":
		return Black, true
	case "w", "white", "White", "W":
		return White, true
	}
	return NoSide, false
}

// Kind distinguishes men from kings.
type Kind uint8

const (
	Man Kind = iota
	King
	NoKind Kind = 2
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Man:
		return "Man"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Piece combines Kind and Side into a single value.
// Encoded as: kind + side*2
type Piece uint8

const (
	BlackMan  Piece = Piece(Man) + Piece(Black)*2
	BlackKing Piece = Piece(King) + Piece(Black)*2
	WhiteMan  Piece = Piece(Man) + Piece(White)*2
	WhiteKing Piece = Piece(King) + Piece(White)*2
	NoPiece   Piece = 4
)

// NewPiece creates a Piece from Kind and Side.
func NewPiece(k Kind, s Side) Piece {
	if k >= NoKind || s >= NoSide {
		return NoPiece
	}
	return Piece(k) + Piece(s)*2
}

// Kind returns the kind of the piece.
func (p Piece) Kind() Kind {
	if p >= NoPiece {
		return NoKind
	}
	return Kind(p % 2)
}

// Side returns the owner of the piece.
func (p Piece) Side() Side {
	if p >= NoPiece {
		return NoSide
	}
	return Side(p / 2)
}

// IsKing returns true for crowned pieces.
func (p Piece) IsKing() bool {
	return p.Kind() == King
}

// Crowned returns the king of the same side.
func (p Piece) Crowned() Piece {
	if p >= NoPiece {
		return NoPiece
	}
	return NewPiece(King, p.Side())
}

// String returns the notation character: b/B for Black man/king, w/W for White.
func (p Piece) String() string {
	if p >= NoPiece {
		return "."
	}
	return string("bBwW"[p])
}

// PieceFromChar converts a notation character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'b':
		return BlackMan
	case 'B':
		return BlackKing
	case 'w':
		return WhiteMan
	case 'W':
		return WhiteKing
	default:
		return NoPiece
	}
}

// Placed is a piece together with the square it stands on.
type Placed struct {
	Square Square
	Piece  Piece
}

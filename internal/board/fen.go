package board

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDimension bounds board width and height; columns are named a..z.
const MaxDimension = 26

// StartFEN is the standard 8x8 starting position, Black to move.
// Rows are listed from row 0 (Black's home row).
const StartFEN = "1b1b1b1b/b1b1b1b1/1b1b1b1b/8/8/w1w1w1w1/1w1w1w1w/w1w1w1w1 b"

// ParseFEN parses the position notation: rows separated by '/', starting at
// row 0, with b/B/w/W for pieces and digit runs for empty squares; then the
// side to move (b|w) and an optional chain square.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid FEN: need 2 or 3 fields, got %d", len(parts))
	}

	b, err := parsePlacement(parts[0])
	if err != nil {
		return nil, err
	}

	side, ok := ParseSide(parts[1])
	if !ok {
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	pos := NewPositionFromBoard(b, side)
	if len(parts) == 3 && parts[2] != "-" {
		sq, err := ParseSquare(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid chain square: %s", parts[2])
		}
		pc := b.PieceAt(sq)
		if pc == NoPiece || pc.Side() != side {
			return nil, fmt.Errorf("invalid chain square: %s holds no %s piece", parts[2], side)
		}
		if !b.HasCapture(sq) {
			return nil, fmt.Errorf("invalid chain square: %s has no capture", parts[2])
		}
		pos.Chain = sq
	}
	return pos, nil
}

// parsePlacement parses the rows field into a board.
func parsePlacement(placement string) (*Board, error) {
	rows := strings.Split(placement, "/")
	height := len(rows)
	if height < 2 || height > MaxDimension {
		return nil, fmt.Errorf("invalid piece placement: %d rows", height)
	}

	type cell struct {
		sq Square
		p  Piece
	}
	var cells []cell
	width := -1
	for row, rowStr := range rows {
		col := 0
		for i := 0; i < len(rowStr); i++ {
			c := rowStr[i]
			if c >= '0' && c <= '9' {
				j := i
				for j < len(rowStr) && rowStr[j] >= '0' && rowStr[j] <= '9' {
					j++
				}
				n, _ := strconv.Atoi(rowStr[i:j])
				if n == 0 {
					return nil, fmt.Errorf("invalid empty run in row %d", row+1)
				}
				col += n
				i = j - 1
				continue
			}
			p := PieceFromChar(c)
			if p == NoPiece {
				return nil, fmt.Errorf("invalid piece character: %c", c)
			}
			sq := NewSquare(row, col)
			if !sq.Playable() {
				return nil, fmt.Errorf("piece on unplayable square %s", sq)
			}
			cells = append(cells, cell{sq: sq, p: p})
			col++
		}
		if width == -1 {
			width = col
		}
		if col != width {
			return nil, fmt.Errorf("invalid number of squares in row %d: got %d, want %d", row+1, col, width)
		}
	}
	if width < 2 || width > MaxDimension {
		return nil, fmt.Errorf("invalid board width: %d", width)
	}

	b, err := NewBoard(width, height)
	if err != nil {
		return nil, err
	}
	for _, c := range cells {
		if err := b.Set(c.sq, c.p); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// FEN returns the notation of the position. The chain square is written
// only while a chain is pending.
func (p *Position) FEN() string {
	var sb strings.Builder
	b := p.Board
	for row := 0; row < b.height; row++ {
		empty := 0
		for col := 0; col < b.width; col++ {
			pc := b.PieceAt(NewSquare(row, col))
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < b.height-1 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	if p.InChain() {
		sb.WriteByte(' ')
		sb.WriteString(p.Chain.String())
	}
	return sb.String()
}

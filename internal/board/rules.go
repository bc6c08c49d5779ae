package board

// moveCheck carries the facts the legality rules inspect. Path fields are
// filled by the path rule and read by the movement rules after it.
type moveCheck struct {
	b     *Board
	from  Square
	to    Square
	piece Piece

	dr, dc int // unit step from -> to
	length int // diagonal distance
	own    int // own pieces strictly between from and to
	opp    int // opposing pieces strictly between from and to
	victim Square
}

// legalityRule is one predicate of the rule table. failure names the rule in
// rejection errors.
type legalityRule struct {
	failure string
	holds   func(c *moveCheck) bool
}

// legalityRules are evaluated in order and short-circuit on the first
// failure. The last entry dispatches on the piece kind.
var legalityRules = []legalityRule{
	{failure: "destination off board", holds: func(c *moveCheck) bool {
		return c.b.OnBoard(c.to)
	}},
	{failure: "destination not playable", holds: func(c *moveCheck) bool {
		return c.to.Playable()
	}},
	{failure: "not a diagonal move", holds: func(c *moveCheck) bool {
		dRow, dCol := c.to.Row-c.from.Row, c.to.Col-c.from.Col
		if dRow == 0 || abs(dRow) != abs(dCol) {
			return false
		}
		c.dr, c.dc, c.length = sign(dRow), sign(dCol), abs(dRow)
		return true
	}},
	{failure: "destination occupied", holds: func(c *moveCheck) bool {
		return !c.b.IsOccupied(c.to)
	}},
	{failure: "path blocked", holds: scanPath},
	{failure: "not allowed for this piece", holds: func(c *moveCheck) bool {
		return movementRules[c.piece.Kind()](c)
	}},
}

// scanPath counts the pieces strictly between from and to. Own pieces block
// the move; a move may cross at most one opposing piece, so a multi-capture
// has to be played as a chain of single jumps.
func scanPath(c *moveCheck) bool {
	side := c.piece.Side()
	c.victim = NoSquare
	for sq := c.from.Step(c.dr, c.dc); sq != c.to; sq = sq.Step(c.dr, c.dc) {
		p := c.b.PieceAt(sq)
		if p == NoPiece {
			continue
		}
		if p.Side() == side {
			c.own++
		} else {
			c.opp++
			c.victim = sq
		}
	}
	return c.own == 0 && c.opp <= 1
}

// movementRules holds the kind-specific part of legality.
var movementRules = [NoKind]func(c *moveCheck) bool{
	Man:  manMoveAllowed,
	King: kingMoveAllowed,
}

// manMoveAllowed: one step forward, or a two-step jump over exactly one
// opposing piece in any direction.
func manMoveAllowed(c *moveCheck) bool {
	switch c.length {
	case 1:
		return c.dr == c.piece.Side().Direction()
	case 2:
		return c.opp == 1
	}
	return false
}

// kingMoveAllowed: any distance along a clear diagonal; a capturing king
// lands on the square immediately past its victim.
func kingMoveAllowed(c *moveCheck) bool {
	if c.opp == 0 {
		return true
	}
	return c.victim == c.to.Step(-c.dr, -c.dc)
}

// Classify checks a single move of the piece on from against the rule table
// and classifies it. It does not apply the forced-capture rule or chain
// restrictions; those belong to Position. Rejections return an Invalid move
// and an error wrapping ErrInvalidMove (or ErrNoPiece / a BoundsError).
func (b *Board) Classify(from, to Square) (Move, error) {
	p, err := b.Get(from)
	if err != nil {
		return Move{From: from, To: to, Captured: NoSquare, Victim: NoPiece}, err
	}
	if p == NoPiece {
		return Move{From: from, To: to, Captured: NoSquare, Victim: NoPiece}, ErrNoPiece
	}

	c := &moveCheck{b: b, from: from, to: to, piece: p}
	for _, rule := range legalityRules {
		if !rule.holds(c) {
			return Move{From: from, To: to, Piece: p, Captured: NoSquare, Victim: NoPiece}, invalid(rule.failure, from, to)
		}
	}

	m := Move{
		From:     from,
		To:       to,
		Kind:     Simple,
		Piece:    p,
		Captured: NoSquare,
		Victim:   NoPiece,
		Promotes: p.Kind() == Man && to.Row == p.Side().PromotionRow(b.height),
	}
	if c.opp == 1 {
		m.Kind = Capture
		m.Captured = c.victim
		m.Victim = b.PieceAt(c.victim)
	}
	return m, nil
}

// IsLegal returns true if the single-move rules accept the move.
func (b *Board) IsLegal(from, to Square) bool {
	_, err := b.Classify(from, to)
	return err == nil
}

package model

// canCastle reports whether the king on from may castle by moving two
// squares to to. Both the king and the corner rook on that side must be
// unmoved, the squares between them empty, and none of the squares the king
// stands on or crosses may be threatened.
func (p *Piece) canCastle(b *Board, from, to Position) bool {
	if p.Type != King || p.HasMoved || p.InCheck || from.Y != to.Y || abs(to.X-from.X) != 2 {
		return false
	}
	step := sign(to.X - from.X)
	rookSquare := Position{X: 0, Y: from.Y}
	if step > 0 {
		rookSquare.X = 7
	}
	rook := b.Get(rookSquare)
	if rook == nil || rook.Type != Rook || rook.Color != p.Color || rook.HasMoved {
		return false
	}
	if !b.ClearHorizontalPath(from.X, from.Y, rookSquare.X, rookSquare.Y) {
		return false
	}
	opponent := p.Color.Opposite()
	for x := from.X; x != to.X+step; x += step {
		if b.IsThreatened(Position{X: x, Y: from.Y}, opponent) {
			return false
		}
	}
	return true
}

// castleRookMove returns where the rook goes when the king castles from
// from to to.
func castleRookMove(from, to Position) CastleRookMove {
	if to.X > from.X {
		return CastleRookMove{From: Position{X: 7, Y: from.Y}, To: Position{X: to.X - 1, Y: from.Y}}
	}
	return CastleRookMove{From: Position{X: 0, Y: from.Y}, To: Position{X: to.X + 1, Y: from.Y}}
}

func (p *Piece) castle(b *Board, from, to Position) error {
	rookMove := castleRookMove(from, to)
	rook := b.Get(rookMove.From)
	if err := b.MovePiece(from, to); err != nil {
		return err
	}
	if err := b.MovePiece(rookMove.From, rookMove.To); err != nil {
		return err
	}
	p.HasMoved = true
	rook.HasMoved = true
	return nil
}

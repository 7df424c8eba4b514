package model

func startRank(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

func lastRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// canAdvance covers the single step and, for a pawn that has never moved or
// captured, the double step from its start rank.
func (p *Piece) canAdvance(b *Board, from, to Position) bool {
	if from.X != to.X || b.Get(to) != nil {
		return false
	}
	dir := p.Color.forward()
	if to.Y == from.Y+dir {
		return true
	}
	return to.Y == from.Y+2*dir &&
		!p.HasMoved &&
		from.Y == startRank(p.Color) &&
		b.Get(from.offset(0, dir)) == nil
}

// isEnPassant reports whether the pawn on from can capture en passant by
// moving to the empty square to. The victim sits beside the attacker on
// (to.X, from.Y) and must have double-stepped there on the previous move.
func (p *Piece) isEnPassant(b *Board, from, to Position, last LastMove) bool {
	if !boundaryCheck(to) || b.Get(to) != nil {
		return false
	}
	dir := p.Color.forward()
	if abs(to.X-from.X) != 1 || to.Y != from.Y+dir {
		return false
	}
	victimSquare := Position{X: to.X, Y: from.Y}
	victim := b.Get(victimSquare)
	if victim == nil || victim.Color == p.Color || victim.Type != Pawn {
		return false
	}
	if !last.DoubleStep || last.PieceID != victim.ID || last.To != victimSquare {
		return false
	}
	// From the attacker's side, the victim started two of the attacker's
	// steps ahead of where it stands now.
	return last.From.Y == last.To.Y+2*dir
}

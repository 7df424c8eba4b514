package model

import "fmt"

// probe plays from -> to on the shadow board and reports whether color's
// king survives it. A rejected probe leaves the shadow board synchronized
// with the live board; an accepted one leaves the move played, and the
// caller must resynchronize.
func (g *Game) probe(from, to Position, color Color) (bool, error) {
	piece := g.shadow.Get(from)
	if piece == nil || piece.Color != color {
		return false, nil
	}
	if !piece.CanMove(g.shadow, from, to, g.lastMove) && !piece.CanCapture(g.shadow, from, to, g.lastMove) {
		return false, nil
	}
	if _, err := execute(g.shadow, from, to, g.lastMove); err != nil {
		g.shadow.SyncFrom(g.board)
		return false, fmt.Errorf("%w: shadow probe %s -> %s: %v", ErrInvariantViolation, from, to, err)
	}
	kingPos, _, err := g.shadow.FindKing(color)
	if err != nil {
		g.shadow.SyncFrom(g.board)
		return false, err
	}
	if g.shadow.IsThreatened(kingPos, color.Opposite()) {
		g.shadow.SyncFrom(g.board)
		return false, nil
	}
	return true, nil
}

// isLegal probes a single move and always leaves the shadow board in sync.
func (g *Game) isLegal(from, to Position, color Color) (bool, error) {
	ok, err := g.probe(from, to, color)
	if ok {
		g.shadow.SyncFrom(g.board)
	}
	return ok, err
}

// hasLegalMove reports whether color has at least one move that does not
// leave its king threatened. It stops at the first one found.
func (g *Game) hasLegalMove(color Color) (bool, error) {
	for i, piece := range g.board.squares {
		if piece == nil || piece.Color != color {
			continue
		}
		from := positionOf(i)
		for _, to := range piece.CandidateDestinations(g.board, from, g.lastMove) {
			ok, err := g.isLegal(from, to, color)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// LegalMovesFrom lists the legal destinations of the piece on from. It is
// empty when the square is empty, holds the wrong color, or no move can be
// played right now.
func (g *Game) LegalMovesFrom(from Position) []SimpleMove {
	moves := []SimpleMove{}
	if g.err != nil || g.IsGameOver() || g.promotion != nil {
		return moves
	}
	piece := g.board.Get(from)
	if piece == nil || piece.Color != g.toMove {
		return moves
	}
	for _, to := range piece.CandidateDestinations(g.board, from, g.lastMove) {
		ok, err := g.isLegal(from, to, g.toMove)
		if err != nil {
			g.fail(err)
			return []SimpleMove{}
		}
		if ok {
			moves = append(moves, SimpleMove{From: from, To: to})
		}
	}
	return moves
}

// LegalMoves lists every legal move of the side to move.
func (g *Game) LegalMoves() []SimpleMove {
	legalMoves := []SimpleMove{}
	for i, piece := range g.board.squares {
		if piece != nil && piece.Color == g.toMove {
			legalMoves = append(legalMoves, g.LegalMovesFrom(positionOf(i))...)
		}
	}
	return legalMoves
}

// newPly describes from -> to before it is played on the live board.
func (g *Game) newPly(piece *Piece, from, to Position) (Ply, error) {
	ply := Ply{Color: piece.Color, Piece: piece.Type, From: from, To: to}
	if target := g.board.Get(to); target != nil {
		ply.Captured = target.Type
	} else if piece.Type == Pawn && from.X != to.X {
		ply.Captured = Pawn
		ply.EnPassant = true
	}
	if piece.Type == King && abs(to.X-from.X) == 2 {
		rookMove := castleRookMove(from, to)
		ply.CastleRookMove = &rookMove
	}
	notation, err := g.getNotation(ply)
	if err != nil {
		return Ply{}, err
	}
	ply.Notation = notation
	return ply, nil
}

// getNotation renders a ply in short algebraic notation without the check
// suffix, which is only known once the turn completes.
func (g *Game) getNotation(ply Ply) (string, error) {
	if ply.CastleRookMove != nil {
		if ply.To.X > ply.From.X {
			return "O-O", nil
		}
		return "O-O-O", nil
	}
	capture := ""
	if ply.Captured != "" {
		capture = "x"
	}
	if ply.Piece == Pawn {
		if capture != "" {
			return ply.From.fileNotation() + capture + ply.To.String(), nil
		}
		return ply.To.String(), nil
	}
	prefix, err := g.disambiguation(ply)
	if err != nil {
		return "", err
	}
	return ply.Piece.getPieceNotation() + prefix + capture + ply.To.String(), nil
}

// disambiguation returns the file, rank or square needed to tell the moving
// piece apart from another of the same type that could legally reach the
// same square.
func (g *Game) disambiguation(ply Ply) (string, error) {
	sameFile, sameRank, ambiguous := false, false, false
	for i, other := range g.board.squares {
		from := positionOf(i)
		if other == nil || from == ply.From || other.Type != ply.Piece || other.Color != ply.Color {
			continue
		}
		ok, err := g.isLegal(from, ply.To, ply.Color)
		if err != nil {
			return "", g.fail(err)
		}
		if !ok {
			continue
		}
		ambiguous = true
		if from.X == ply.From.X {
			sameFile = true
		}
		if from.Y == ply.From.Y {
			sameRank = true
		}
	}
	switch {
	case !ambiguous:
		return "", nil
	case !sameFile:
		return ply.From.fileNotation(), nil
	case !sameRank:
		return fmt.Sprintf("%d", ply.From.Y+1), nil
	}
	return ply.From.String(), nil
}

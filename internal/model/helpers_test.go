package model

import "testing"

func mustPos(t *testing.T, square string) Position {
	t.Helper()
	p, err := ParsePosition(square)
	if err != nil {
		t.Fatalf("ParsePosition(%q) error: %v", square, err)
	}
	return p
}

// play proposes each move ("e2e4") and fails the test if any is rejected.
func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		ok, err := g.ProposeMove(mustPos(t, mv[:2]), mustPos(t, mv[2:]))
		if err != nil {
			t.Fatalf("ProposeMove(%s) error: %v\n%s", mv, err, g)
		}
		if !ok {
			t.Fatalf("ProposeMove(%s) rejected\n%s", mv, g)
		}
		assertSynced(t, g)
	}
}

func propose(t *testing.T, g *Game, mv string) bool {
	t.Helper()
	ok, err := g.ProposeMove(mustPos(t, mv[:2]), mustPos(t, mv[2:]))
	if err != nil {
		t.Fatalf("ProposeMove(%s) error: %v", mv, err)
	}
	return ok
}

func assertSynced(t *testing.T, g *Game) {
	t.Helper()
	if !g.shadow.Equal(g.board) {
		t.Fatalf("shadow board out of sync with live board\nlive:\n%s\nshadow:\n%s", g.board, g.shadow)
	}
}

type placement struct {
	square string
	kind   PieceType
	color  Color
}

// boardWith builds a board holding only the given pieces. Pieces are marked
// as moved unless they stand on their color's home squares for castling.
func boardWith(t *testing.T, placements ...placement) *Board {
	t.Helper()
	b := &Board{}
	for i, pl := range placements {
		p := mustPos(t, pl.square)
		if b.Get(p) != nil {
			t.Fatalf("square %s placed twice", pl.square)
		}
		b.Set(p, &Piece{ID: i + 1, Type: pl.kind, Color: pl.color, HasMoved: !homeSquare(pl, p)})
	}
	return b
}

func homeSquare(pl placement, p Position) bool {
	back := 0
	if pl.color == Black {
		back = 7
	}
	switch pl.kind {
	case Pawn:
		return p.Y == startRank(pl.color)
	case King:
		return p == Position{X: 4, Y: back}
	case Rook:
		return p == Position{X: 0, Y: back} || p == Position{X: 7, Y: back}
	}
	return false
}

package model

import "fmt"

// LastMove records the most recently committed move. The game threads it
// into the piece rules so en passant is only available on the very next
// turn.
type LastMove struct {
	PieceID    int       `json:"pieceId"`
	Piece      PieceType `json:"piece"`
	From       Position  `json:"from"`
	To         Position  `json:"to"`
	DoubleStep bool      `json:"doubleStep"`
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is one half-move in the game history.
type Ply struct {
	Color          Color           `json:"color"`
	Piece          PieceType       `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	Captured       PieceType       `json:"captured,omitempty"`
	EnPassant      bool            `json:"enPassant,omitempty"`
	CastleRookMove *CastleRookMove `json:"castleRookMove,omitempty"`
	Promotion      PieceType       `json:"promotion,omitempty"`
	Notation       string          `json:"notation"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// execute plays from -> to on b for whatever stands on from, choosing a
// quiet move or a capture, and returns the resulting last-move record.
func execute(b *Board, from, to Position, last LastMove) (LastMove, error) {
	piece := b.Get(from)
	if piece == nil {
		return LastMove{}, fmt.Errorf("%w: no piece on %s", ErrInvalidSquare, from)
	}
	var err error
	switch {
	case piece.CanMove(b, from, to, last):
		err = piece.Move(b, from, to, last)
	case piece.CanCapture(b, from, to, last):
		err = piece.Capture(b, from, to, last)
	default:
		err = fmt.Errorf("%w: %s %s %s -> %s", ErrIllegalMove, piece.Color, piece.Type, from, to)
	}
	if err != nil {
		return LastMove{}, err
	}
	return LastMove{
		PieceID:    piece.ID,
		Piece:      piece.Type,
		From:       from,
		To:         to,
		DoubleStep: piece.Type == Pawn && abs(to.Y-from.Y) == 2,
	}, nil
}

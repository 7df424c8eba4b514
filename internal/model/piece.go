package model

import "fmt"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

// Value is the material value of the piece type. Kings are worth nothing.
func (p PieceType) Value() int {
	switch p {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	}
	return 0
}

var (
	rookDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightDirs = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// Piece is one chess man. Its square is owned by the Board that holds it.
type Piece struct {
	ID    int       `json:"id"`
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
	// HasMoved is set by the first move or capture; it gates the pawn double
	// step and castling.
	HasMoved bool `json:"hasMoved"`
	InCheck  bool `json:"inCheck"`
	Captured bool `json:"captured"`
}

func (p *Piece) clone() *Piece {
	c := *p
	return &c
}

func samePiece(a, b *Piece) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CanMove reports whether the piece standing on from could move to the empty
// square to, ignoring whether its own king would be left in check.
func (p *Piece) CanMove(b *Board, from, to Position, last LastMove) bool {
	if !boundaryCheck(from) || !boundaryCheck(to) || from == to || b.Get(to) != nil {
		return false
	}
	switch p.Type {
	case Pawn:
		return p.canAdvance(b, from, to)
	case King:
		return p.reaches(b, from, to) || p.canCastle(b, from, to)
	case Knight, Bishop, Rook, Queen:
		return p.reaches(b, from, to)
	}
	return false
}

// CanCapture reports whether the piece standing on from could capture on
// to, ignoring whether its own king would be left in check. For en passant
// to is the empty square behind the victim.
func (p *Piece) CanCapture(b *Board, from, to Position, last LastMove) bool {
	if !boundaryCheck(from) || !boundaryCheck(to) || from == to {
		return false
	}
	target := b.Get(to)
	if target == nil {
		return p.Type == Pawn && p.isEnPassant(b, from, to, last)
	}
	if target.Color == p.Color {
		return false
	}
	return p.attacks(b, from, to)
}

// attacks reports whether the piece on from bears on to, whatever stands
// there. Castling and en passant never attack.
func (p *Piece) attacks(b *Board, from, to Position) bool {
	if from == to {
		return false
	}
	if p.Type == Pawn {
		return to.Y-from.Y == p.Color.forward() && abs(to.X-from.X) == 1
	}
	return p.reaches(b, from, to)
}

// reaches is the move geometry shared by captures and quiet moves for every
// type but the pawn.
func (p *Piece) reaches(b *Board, from, to Position) bool {
	dx, dy := abs(to.X-from.X), abs(to.Y-from.Y)
	switch p.Type {
	case Knight:
		return (dx == 1 && dy == 2) || (dx == 2 && dy == 1)
	case Bishop:
		return b.ClearDiagonalPath(from.X, from.Y, to.X, to.Y)
	case Rook:
		return b.ClearHorizontalPath(from.X, from.Y, to.X, to.Y) ||
			b.ClearVerticalPath(from.X, from.Y, to.X, to.Y)
	case Queen:
		return b.ClearDiagonalPath(from.X, from.Y, to.X, to.Y) ||
			b.ClearHorizontalPath(from.X, from.Y, to.X, to.Y) ||
			b.ClearVerticalPath(from.X, from.Y, to.X, to.Y)
	case King:
		return dx <= 1 && dy <= 1 && dx+dy > 0
	case Pawn:
		return false
	}
	return false
}

// Move executes a quiet move (including castling) on b.
func (p *Piece) Move(b *Board, from, to Position, last LastMove) error {
	if !p.CanMove(b, from, to, last) {
		return fmt.Errorf("%w: %s %s cannot move %s -> %s", ErrIllegalMove, p.Color, p.Type, from, to)
	}
	if p.Type == King && abs(to.X-from.X) == 2 {
		return p.castle(b, from, to)
	}
	if err := b.MovePiece(from, to); err != nil {
		return err
	}
	p.HasMoved = true
	return nil
}

// Capture executes a capture (including en passant) on b.
func (p *Piece) Capture(b *Board, from, to Position, last LastMove) error {
	if !p.CanCapture(b, from, to, last) {
		return fmt.Errorf("%w: %s %s cannot capture %s -> %s", ErrIllegalMove, p.Color, p.Type, from, to)
	}
	captured := to
	if p.Type == Pawn && b.Get(to) == nil {
		captured = Position{X: to.X, Y: from.Y}
	}
	if err := b.Capture(from, to, captured); err != nil {
		return err
	}
	p.HasMoved = true
	return nil
}

// CandidateDestinations lists every square the piece on from could move or
// capture to, ignoring check.
func (p *Piece) CandidateDestinations(b *Board, from Position, last LastMove) []Position {
	var targets []Position
	switch p.Type {
	case Pawn:
		dir := p.Color.forward()
		targets = []Position{from.offset(0, dir), from.offset(0, 2*dir), from.offset(-1, dir), from.offset(1, dir)}
	case Knight:
		targets = offsets(from, knightDirs)
	case King:
		targets = append(offsets(from, kingDirs), from.offset(-2, 0), from.offset(2, 0))
	case Bishop:
		targets = p.rays(b, from, bishopDirs)
	case Rook:
		targets = p.rays(b, from, rookDirs)
	case Queen:
		targets = append(p.rays(b, from, bishopDirs), p.rays(b, from, rookDirs)...)
	}

	destinations := []Position{}
	for _, to := range targets {
		if p.CanMove(b, from, to, last) || p.CanCapture(b, from, to, last) {
			destinations = append(destinations, to)
		}
	}
	return destinations
}

func offsets(from Position, dirs []Position) []Position {
	targets := make([]Position, 0, len(dirs))
	for _, dir := range dirs {
		targets = append(targets, from.offset(dir.X, dir.Y))
	}
	return targets
}

// rays walks each direction up to and including the first occupied square.
func (p *Piece) rays(b *Board, from Position, dirs []Position) []Position {
	targets := []Position{}
	for _, dir := range dirs {
		targetPos := from.offset(dir.X, dir.Y)
		for boundaryCheck(targetPos) {
			targets = append(targets, targetPos)
			if b.Get(targetPos) != nil {
				break
			}
			targetPos = targetPos.offset(dir.X, dir.Y)
		}
	}
	return targets
}

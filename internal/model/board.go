package model

import "fmt"

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// forward is the rank delta of a pawn move for this color.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// Position is a board coordinate. X is the file (0 = a) and Y the rank
// (0 = rank 1).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("%c%d", p.X+'a', p.Y+1)
}

func (p Position) fileNotation() string {
	return fmt.Sprintf("%c", p.X+'a')
}

func (p Position) offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func boundaryCheck(position Position) bool {
	return position.X >= 0 && position.X < 8 && position.Y >= 0 && position.Y < 8
}

func index(p Position) int {
	return p.Y*8 + p.X
}

func positionOf(i int) Position {
	return Position{X: i % 8, Y: i / 8}
}

// Board is the positional truth of a game. It stores pieces by coordinate
// and knows nothing about turns or legality; pieces never cache their own
// coordinate.
type Board struct {
	squares [64]*Piece
}

// NewBoard returns a board set up in the standard initial position. Piece
// IDs run from 1 to 32.
func NewBoard() *Board {
	board := &Board{}
	back := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	id := 0
	place := func(x, y int, t PieceType, c Color) {
		id++
		board.Set(Position{X: x, Y: y}, &Piece{ID: id, Type: t, Color: c})
	}
	for x, t := range back {
		place(x, 0, t, White)
	}
	for x := 0; x < 8; x++ {
		place(x, 1, Pawn, White)
	}
	for x := 0; x < 8; x++ {
		place(x, 6, Pawn, Black)
	}
	for x, t := range back {
		place(x, 7, t, Black)
	}
	return board
}

func (b *Board) IsOnBoard(p Position) bool {
	return boundaryCheck(p)
}

// Get returns the occupant of p, or nil for an empty or off-board square.
func (b *Board) Get(p Position) *Piece {
	if !boundaryCheck(p) {
		return nil
	}
	return b.squares[index(p)]
}

// Set places piece (or nil) on p. Off-board coordinates are ignored.
func (b *Board) Set(p Position, piece *Piece) {
	if !boundaryCheck(p) {
		return
	}
	b.squares[index(p)] = piece
}

// MovePiece relocates the occupant of src to the empty square dst.
func (b *Board) MovePiece(src, dst Position) error {
	if !boundaryCheck(src) || !boundaryCheck(dst) {
		return fmt.Errorf("%w: move %v -> %v is off the board", ErrInvalidSquare, src, dst)
	}
	piece := b.Get(src)
	if piece == nil {
		return fmt.Errorf("%w: no piece on %s", ErrInvalidSquare, src)
	}
	if b.Get(dst) != nil {
		return fmt.Errorf("%w: %s is occupied", ErrInvalidSquare, dst)
	}
	b.Set(src, nil)
	b.Set(dst, piece)
	return nil
}

// Capture moves the occupant of src to dst and removes the piece standing
// on captured, which differs from dst only for en passant. The victim is
// marked captured.
func (b *Board) Capture(src, dst, captured Position) error {
	if !boundaryCheck(src) || !boundaryCheck(dst) || !boundaryCheck(captured) {
		return fmt.Errorf("%w: capture %v -> %v (%v) is off the board", ErrInvalidSquare, src, dst, captured)
	}
	piece := b.Get(src)
	if piece == nil {
		return fmt.Errorf("%w: no piece on %s", ErrInvalidSquare, src)
	}
	victim := b.Get(captured)
	if victim == nil {
		return fmt.Errorf("%w: nothing to capture on %s", ErrInvalidSquare, captured)
	}
	if captured != dst && b.Get(dst) != nil {
		return fmt.Errorf("%w: %s is occupied", ErrInvalidSquare, dst)
	}
	victim.Captured = true
	b.Set(captured, nil)
	b.Set(src, nil)
	b.Set(dst, piece)
	return nil
}

// ClearHorizontalPath reports whether the two squares share a rank, are
// distinct, and every square strictly between them is empty.
func (b *Board) ClearHorizontalPath(x1, y1, x2, y2 int) bool {
	if y1 != y2 || x1 == x2 {
		return false
	}
	return b.clearPath(x1, y1, x2, y2)
}

// ClearVerticalPath is ClearHorizontalPath along a file.
func (b *Board) ClearVerticalPath(x1, y1, x2, y2 int) bool {
	if x1 != x2 || y1 == y2 {
		return false
	}
	return b.clearPath(x1, y1, x2, y2)
}

// ClearDiagonalPath is ClearHorizontalPath along a diagonal.
func (b *Board) ClearDiagonalPath(x1, y1, x2, y2 int) bool {
	if abs(x2-x1) != abs(y2-y1) || x1 == x2 {
		return false
	}
	return b.clearPath(x1, y1, x2, y2)
}

func (b *Board) clearPath(x1, y1, x2, y2 int) bool {
	from := Position{X: x1, Y: y1}
	to := Position{X: x2, Y: y2}
	if !boundaryCheck(from) || !boundaryCheck(to) {
		return false
	}
	dx, dy := sign(x2-x1), sign(y2-y1)
	for p := from.offset(dx, dy); p != to; p = p.offset(dx, dy) {
		if b.Get(p) != nil {
			return false
		}
	}
	return true
}

// IsThreatened reports whether any non-captured piece of byColor attacks
// the square. Pinned pieces still count.
func (b *Board) IsThreatened(square Position, byColor Color) bool {
	for i, piece := range b.squares {
		if piece == nil || piece.Captured || piece.Color != byColor {
			continue
		}
		if piece.attacks(b, positionOf(i), square) {
			return true
		}
	}
	return false
}

func (b *Board) FindKing(color Color) (Position, *Piece, error) {
	for i, piece := range b.squares {
		if piece != nil && piece.Type == King && piece.Color == color {
			return positionOf(i), piece, nil
		}
	}
	return Position{}, nil, fmt.Errorf("%w: no %s king on the board", ErrInvariantViolation, color)
}

// Clone returns a deep copy: every piece is copied, so mutating the clone
// never reaches the original.
func (b *Board) Clone() *Board {
	clone := &Board{}
	for i, piece := range b.squares {
		if piece != nil {
			clone.squares[i] = piece.clone()
		}
	}
	return clone
}

// Equal reports whether both boards hold structurally identical pieces on
// every square.
func (b *Board) Equal(other *Board) bool {
	for i := range b.squares {
		if !samePiece(b.squares[i], other.squares[i]) {
			return false
		}
	}
	return true
}

// SyncFrom makes b structurally equal to live by replacing only the squares
// that differ, and returns how many were replaced.
func (b *Board) SyncFrom(live *Board) int {
	replaced := 0
	for i, piece := range live.squares {
		if samePiece(b.squares[i], piece) {
			continue
		}
		if piece == nil {
			b.squares[i] = nil
		} else {
			b.squares[i] = piece.clone()
		}
		replaced++
	}
	return replaced
}

func (b *Board) snapshot() Snapshot {
	var s Snapshot
	for i, piece := range b.squares {
		if piece == nil {
			continue
		}
		p := positionOf(i)
		s[p.Y][p.X] = &PieceView{Color: piece.Color, Type: piece.Type}
	}
	return s
}

func (b *Board) String() string {
	return b.snapshot().String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

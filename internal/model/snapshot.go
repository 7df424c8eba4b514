package model

import "strings"

type PieceView struct {
	Color Color     `json:"color"`
	Type  PieceType `json:"type"`
}

// Snapshot is a copy of the board for rendering, indexed [Y][X]; empty
// squares are nil.
type Snapshot [8][8]*PieceView

var glyphs = map[Color]map[PieceType]string{
	White: {King: "♔", Queen: "♕", Rook: "♖", Bishop: "♗", Knight: "♘", Pawn: "♙"},
	Black: {King: "♚", Queen: "♛", Rook: "♜", Bishop: "♝", Knight: "♞", Pawn: "♟"},
}

func (v PieceView) String() string {
	return glyphs[v.Color][v.Type]
}

// String draws the board with rank 8 on top and file labels underneath.
func (s Snapshot) String() string {
	var sb strings.Builder
	for y := 7; y >= 0; y-- {
		sb.WriteByte(ranks[y])
		for x := 0; x < 8; x++ {
			sb.WriteByte(' ')
			if s[y][x] == nil {
				sb.WriteString("·")
			} else {
				sb.WriteString(s[y][x].String())
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}

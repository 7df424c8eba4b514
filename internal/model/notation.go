package model

import (
	"fmt"
	"strings"
)

const (
	files = "ABCDEFGH"
	ranks = "12345678"
)

// ParsePosition maps two-character algebraic notation ("e4", "E4") to a
// board coordinate. File A is X 0 and rank 1 is Y 0.
func ParsePosition(square string) (Position, error) {
	if len(square) != 2 {
		return Position{}, fmt.Errorf("%w: %q must be 2 characters", ErrInvalidNotation, square)
	}
	x := strings.IndexByte(files, strings.ToUpper(square[:1])[0])
	if x == -1 {
		return Position{}, fmt.Errorf("%w: file of %q must be between A and H", ErrInvalidNotation, square)
	}
	y := strings.IndexByte(ranks, square[1])
	if y == -1 {
		return Position{}, fmt.Errorf("%w: rank of %q must be between 1 and 8", ErrInvalidNotation, square)
	}
	return Position{X: x, Y: y}, nil
}

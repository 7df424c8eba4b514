package model

import "errors"

// Contract violations. Expected rejections (illegal moves, wrong piece
// color, bad promotion codes) are reported as false results instead.
var (
	ErrInvalidSquare      = errors.New("invalid square")
	ErrIllegalMove        = errors.New("illegal move")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrGameAlreadyOver    = errors.New("game already over")
	ErrPromotionPending   = errors.New("promotion pending")
	ErrNoPendingPromotion = errors.New("no pending promotion")
	ErrWrongColor         = errors.New("wrong color")
	ErrInvalidNotation    = errors.New("invalid notation")
)

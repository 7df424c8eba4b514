package service

import "errors"

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrGameFull      = errors.New("game is full")
	ErrNotInGame     = errors.New("player is not in this game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrAlreadyQueued = errors.New("player already in queue")
	ErrNotQueued     = errors.New("player is not in matchmaking")
)

package model

import (
	"errors"
	"fmt"
)

// Game is the move protocol for one chess game. It owns the live board and
// a shadow board used to probe candidate moves. A Game is not safe for
// concurrent use.
type Game struct {
	white     *Player
	black     *Player
	board     *Board
	shadow    *Board
	toMove    Color
	winner    *Color
	stalemate bool
	promotion *Position
	lastMove  LastMove
	history   []Ply
	nextID    int
	// err is set once an invariant breaks; the game is unusable after that.
	err error
}

// NewGame starts a game in the standard initial position with white to move.
func NewGame(whiteName, blackName string) *Game {
	return newGameFromBoard(whiteName, blackName, NewBoard(), White)
}

// newGameFromBoard starts a game from an arbitrary live board and hands every
// piece on it to its owner.
func newGameFromBoard(whiteName, blackName string, board *Board, toMove Color) *Game {
	g := &Game{
		white:  NewPlayer(whiteName, White),
		black:  NewPlayer(blackName, Black),
		board:  board,
		toMove: toMove,
	}
	for _, piece := range board.squares {
		if piece == nil {
			continue
		}
		g.player(piece.Color).giveMaterial(piece)
		if piece.ID > g.nextID {
			g.nextID = piece.ID
		}
	}
	if pos, king, err := board.FindKing(toMove); err == nil {
		king.InCheck = board.IsThreatened(pos, toMove.Opposite())
	}
	g.shadow = board.Clone()
	return g
}

func (g *Game) player(c Color) *Player {
	if c == White {
		return g.white
	}
	return g.black
}

func (g *Game) White() *Player { return g.white }
func (g *Game) Black() *Player { return g.black }

func (g *Game) WhoseTurn() Color {
	return g.toMove
}

func (g *Game) IsGameOver() bool {
	return g.winner != nil || g.stalemate
}

func (g *Game) Winner() (Color, bool) {
	if g.winner == nil {
		return "", false
	}
	return *g.winner, true
}

func (g *Game) IsStalemate() bool {
	return g.stalemate
}

// IsInCheck returns the stored in-check flag of color's king.
func (g *Game) IsInCheck(color Color) bool {
	_, king, err := g.board.FindKing(color)
	if err != nil {
		return false
	}
	return king.InCheck
}

// PendingPromotion returns the square of a pawn waiting to be promoted.
func (g *Game) PendingPromotion() (Position, bool) {
	if g.promotion == nil {
		return Position{}, false
	}
	return *g.promotion, true
}

func (g *Game) LastMove() LastMove {
	return g.lastMove
}

// History returns a copy of the plies played so far.
func (g *Game) History() []Ply {
	history := make([]Ply, len(g.history))
	copy(history, g.history)
	return history
}

// Snapshot returns a read-only view of the live board.
func (g *Game) Snapshot() Snapshot {
	return g.board.snapshot()
}

// Err returns the invariant violation that stopped the game, if any.
func (g *Game) Err() error {
	return g.err
}

func (g *Game) String() string {
	return g.board.String()
}

// ProposeMove tries to play from -> to for the side to move. It returns
// false without changing anything when the move is not legal. Errors are
// reserved for contract violations: off-board squares, a finished game, an
// unresolved promotion, or a broken invariant.
func (g *Game) ProposeMove(from, to Position) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.IsGameOver() {
		return false, ErrGameAlreadyOver
	}
	if !boundaryCheck(from) || !boundaryCheck(to) {
		return false, fmt.Errorf("%w: %v -> %v", ErrInvalidSquare, from, to)
	}
	if g.promotion != nil {
		return false, fmt.Errorf("%w: pawn on %s", ErrPromotionPending, *g.promotion)
	}

	piece := g.board.Get(from)
	if piece == nil || piece.Color != g.toMove {
		return false, nil
	}

	ok, err := g.probe(from, to, g.toMove)
	if err != nil {
		return false, g.fail(err)
	}
	if !ok {
		return false, nil
	}
	// The probe left the shadow board one move ahead. Bring it back so the
	// notation below can probe other pieces against the current position.
	g.shadow.SyncFrom(g.board)
	ply, err := g.newPly(piece, from, to)
	if err != nil {
		return false, g.fail(err)
	}

	if _, king, err := g.board.FindKing(g.toMove); err == nil {
		king.InCheck = false
	}
	last, err := execute(g.board, from, to, g.lastMove)
	if err != nil {
		return false, g.fail(fmt.Errorf("%w: live board rejected %s -> %s after the shadow probe accepted it: %v",
			ErrInvariantViolation, from, to, err))
	}
	g.lastMove = last
	g.shadow.SyncFrom(g.board)
	g.history = append(g.history, ply)

	if piece.Type == Pawn && to.Y == lastRank(piece.Color) {
		g.promotion = &to
		return true, nil
	}
	if err := g.completeTurn(); err != nil {
		return true, g.fail(err)
	}
	return true, nil
}

// ParsePromotion maps a promotion code (Q, R, B or N, any case) to a piece
// type.
func ParsePromotion(code string) (PieceType, bool) {
	switch code {
	case "Q", "q":
		return Queen, true
	case "R", "r":
		return Rook, true
	case "B", "b":
		return Bishop, true
	case "N", "n":
		return Knight, true
	}
	return "", false
}

// ResolvePromotion replaces the pending pawn with a new piece of kind and
// completes the turn. Kinds other than queen, rook, bishop and knight are
// rejected with false.
func (g *Game) ResolvePromotion(by Color, kind PieceType) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.promotion == nil {
		return false, ErrNoPendingPromotion
	}
	square := *g.promotion
	pawn := g.board.Get(square)
	if pawn == nil || pawn.Type != Pawn {
		return false, g.fail(fmt.Errorf("%w: no pawn on promotion square %s", ErrInvariantViolation, square))
	}
	if by != pawn.Color {
		return false, fmt.Errorf("%w: %s cannot promote the %s pawn on %s", ErrWrongColor, by, pawn.Color, square)
	}
	switch kind {
	case Queen, Rook, Bishop, Knight:
	default:
		return false, nil
	}

	g.nextID++
	promoted := &Piece{ID: g.nextID, Type: kind, Color: pawn.Color, HasMoved: true}
	g.board.Set(square, promoted)
	g.shadow.Set(square, promoted.clone())
	if !g.player(pawn.Color).replaceMaterial(pawn, promoted) {
		return false, g.fail(fmt.Errorf("%w: promoted pawn on %s is not in %s's material", ErrInvariantViolation, square, pawn.Color))
	}
	g.promotion = nil

	ply := &g.history[len(g.history)-1]
	ply.Promotion = kind
	ply.Notation += "=" + kind.getPieceNotation()

	if err := g.completeTurn(); err != nil {
		return true, g.fail(err)
	}
	return true, nil
}

// completeTurn hands the move to the other side, refreshes its king's check
// flag and decides checkmate or stalemate when it has no legal move.
func (g *Game) completeTurn() error {
	mover := g.toMove
	g.toMove = mover.Opposite()

	pos, king, err := g.board.FindKing(g.toMove)
	if err != nil {
		return err
	}
	king.InCheck = g.board.IsThreatened(pos, mover)
	g.shadow.SyncFrom(g.board)

	hasMove, err := g.hasLegalMove(g.toMove)
	if err != nil {
		return err
	}

	ply := &g.history[len(g.history)-1]
	switch {
	case !hasMove && king.InCheck:
		g.winner = &mover
		ply.Notation += "#"
	case !hasMove:
		g.stalemate = true
	case king.InCheck:
		ply.Notation += "+"
	}
	return nil
}

func (g *Game) fail(err error) error {
	if errors.Is(err, ErrInvariantViolation) {
		g.err = err
	}
	return err
}

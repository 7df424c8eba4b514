package service

import "github.com/benbeisheim/shadowchess/internal/model"

// GameState is the client-facing view of a session, sent over REST and
// broadcast to every socket after a change.
type GameState struct {
	ID      string         `json:"id"`
	Board   model.Snapshot `json:"board"`
	ToMove  model.Color    `json:"toMove"`
	Players struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	IsCheck         bool               `json:"isCheck"`
	LegalMoves      []model.SimpleMove `json:"legalMoves"`
	MoveHistory     []model.Ply        `json:"moveHistory"`
	LastMove        *model.SimpleMove  `json:"lastMove"`
	PromotionSquare *model.Position    `json:"promotionSquare"`
	GameOver        bool               `json:"gameOver"`
	Winner          *model.Color       `json:"winner"`
	Stalemate       bool               `json:"stalemate"`
}

type ClientPlayer struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    model.Color `json:"color"`
	Material int         `json:"material"`
}

func newGameState(s *Session) GameState {
	g := s.game
	state := GameState{
		ID:          s.ID,
		Board:       g.Snapshot(),
		ToMove:      g.WhoseTurn(),
		IsCheck:     g.IsInCheck(g.WhoseTurn()),
		LegalMoves:  g.LegalMoves(),
		MoveHistory: g.History(),
		GameOver:    g.IsGameOver(),
		Stalemate:   g.IsStalemate(),
	}
	state.Players.White = clientPlayer(s.whiteID, g.White())
	state.Players.Black = clientPlayer(s.blackID, g.Black())

	if len(state.MoveHistory) > 0 {
		last := g.LastMove()
		state.LastMove = &model.SimpleMove{From: last.From, To: last.To}
	}
	if square, ok := g.PendingPromotion(); ok {
		state.PromotionSquare = &square
	}
	if winner, ok := g.Winner(); ok {
		state.Winner = &winner
	}
	return state
}

func clientPlayer(id string, p *model.Player) ClientPlayer {
	return ClientPlayer{
		ID:       id,
		Name:     p.Name,
		Color:    p.Color,
		Material: p.TotalMaterial(),
	}
}

package service

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/shadowchess/internal/model"
	"github.com/benbeisheim/shadowchess/internal/ws"
	"github.com/google/uuid"
)

// GameService translates client requests (algebraic squares, promotion
// codes, optional names) into GameManager calls.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame hosts a new game. Blank names fall back to the manager's
// defaults.
func (gs *GameService) CreateGame(whiteName, blackName string) (string, error) {
	if strings.TrimSpace(whiteName) == "" {
		whiteName = gs.gameManager.whiteName
	}
	if strings.TrimSpace(blackName) == "" {
		blackName = gs.gameManager.blackName
	}
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID, whiteName, blackName); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinGame(gameID, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) MatchStatus(playerID string) (ws.MatchFoundEvent, bool, error) {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

// HandleMove plays a move given in algebraic squares ("e2", "e4").
func (gs *GameService) HandleMove(gameID, playerID, from, to string) (bool, error) {
	src, err := model.ParsePosition(from)
	if err != nil {
		return false, err
	}
	dst, err := model.ParsePosition(to)
	if err != nil {
		return false, err
	}
	return gs.gameManager.MakeMove(gameID, playerID, src, dst)
}

// HandlePromotion resolves a pending promotion with a Q, R, B or N code.
func (gs *GameService) HandlePromotion(gameID, playerID, code string) (bool, error) {
	kind, ok := model.ParsePromotion(strings.TrimSpace(code))
	if !ok {
		return false, fmt.Errorf("%w: promotion code %q", model.ErrInvalidNotation, code)
	}
	return gs.gameManager.Promote(gameID, playerID, kind)
}

func (gs *GameService) RegisterConnection(gameID, playerID string, conn Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID, playerID string, conn Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) SendTo(gameID, playerID string, msg ws.Message) error {
	return gs.gameManager.SendTo(gameID, playerID, msg)
}

// RegisterMatchmakingChannel reports true when playerID was already matched
// and the event is waiting on ch.
func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) bool {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

package service

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/shadowchess/internal/model"
	"github.com/benbeisheim/shadowchess/internal/ws"
	"github.com/google/uuid"
)

// GameManager owns every hosted game and the matchmaking queue.
type GameManager struct {
	sessions         map[string]*Session
	queue            *Queue
	matchingChannels map[string]chan string
	// matches holds events no socket could take. They stay until a socket
	// registers for the player or it queues again.
	matches          map[string]ws.MatchFoundEvent
	whiteName        string
	blackName        string
	mu               sync.RWMutex
	stop             chan struct{}
	stopOnce         sync.Once
}

// NewGameManager returns a manager whose matched games use the given
// default player names. Call Start to run matchmaking.
func NewGameManager(whiteName, blackName string) *GameManager {
	return &GameManager{
		sessions:         make(map[string]*Session),
		queue:            NewQueue(),
		matchingChannels: make(map[string]chan string),
		matches:          make(map[string]ws.MatchFoundEvent),
		whiteName:        whiteName,
		blackName:        blackName,
		stop:             make(chan struct{}),
	}
}

// Start pairs queued players every interval until Stop is called.
func (gm *GameManager) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gm.processMatchmaking()
			case <-gm.stop:
				return
			}
		}
	}()
}

func (gm *GameManager) Stop() {
	gm.stopOnce.Do(func() { close(gm.stop) })
}

func (gm *GameManager) CreateGame(gameID, whiteName, blackName string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.sessions[gameID]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}

	gm.sessions[gameID] = newSession(gameID, model.NewGame(whiteName, blackName))
	log.Printf("game %s created (%s vs %s)", gameID, whiteName, blackName)
	return nil
}

func (gm *GameManager) session(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.sessions[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return s, nil
}

func (gm *GameManager) AddPlayerToGame(gameID, playerID string) (model.Color, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return "", err
	}
	color, err := s.join(playerID)
	if err != nil {
		return "", err
	}
	log.Printf("game %s: player %s plays %s", gameID, playerID, color)
	return color, nil
}

func (gm *GameManager) GetGameState(gameID string) (GameState, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return GameState{}, err
	}
	return s.state(), nil
}

// MakeMove plays from -> to for playerID and broadcasts the new state when
// the move is accepted.
func (gm *GameManager) MakeMove(gameID, playerID string, from, to model.Position) (bool, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return false, err
	}
	accepted, state, err := s.move(playerID, from, to)
	if err != nil {
		return false, err
	}
	if state != nil {
		log.Printf("game %s: %s played %s -> %s", gameID, playerID, from, to)
		s.broadcast(*state)
	}
	return accepted, nil
}

func (gm *GameManager) Promote(gameID, playerID string, kind model.PieceType) (bool, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return false, err
	}
	accepted, state, err := s.promote(playerID, kind)
	if err != nil {
		return false, err
	}
	if state != nil {
		log.Printf("game %s: %s promoted to %s", gameID, playerID, kind)
		s.broadcast(*state)
	}
	return accepted, nil
}

// RegisterConnection attaches conn to the game and sends it the current
// state.
func (gm *GameManager) RegisterConnection(gameID, playerID string, conn Conn) error {
	s, err := gm.session(gameID)
	if err != nil {
		return err
	}
	if err := s.registerConnection(playerID, conn); err != nil {
		return err
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, s.state())
	if err != nil {
		return err
	}
	return s.send(playerID, msg)
}

func (gm *GameManager) UnregisterConnection(gameID, playerID string, conn Conn) {
	s, err := gm.session(gameID)
	if err != nil {
		return
	}
	s.unregisterConnection(playerID, conn)
}

// SendTo writes msg to playerID's connection in the game, if it has one.
func (gm *GameManager) SendTo(gameID, playerID string, msg ws.Message) error {
	s, err := gm.session(gameID)
	if err != nil {
		return err
	}
	return s.send(playerID, msg)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	delete(gm.matches, playerID)
	gm.mu.Unlock()

	if err := gm.queue.AddPlayer(playerID); err != nil {
		return fmt.Errorf("%w: %s", err, playerID)
	}
	log.Printf("player %s joined matchmaking (%d waiting)", playerID, gm.queue.Size())
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

// MatchStatus returns the game playerID was matched into. matched is false
// while the player is still waiting; ErrNotQueued means it is neither
// waiting nor matched.
func (gm *GameManager) MatchStatus(playerID string) (event ws.MatchFoundEvent, matched bool, err error) {
	gm.mu.RLock()
	event, matched = gm.matches[playerID]
	gm.mu.RUnlock()
	if matched {
		return event, true, nil
	}
	if !gm.queue.Contains(playerID) {
		return ws.MatchFoundEvent{}, false, fmt.Errorf("%w: %s", ErrNotQueued, playerID)
	}
	return ws.MatchFoundEvent{}, false, nil
}

// RegisterMatchmakingChannel sets the channel that receives playerID's
// matchFound event. A previously registered channel is closed. When the
// player was already matched the event is delivered at once and true is
// returned.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists && existing != ch {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
	if event, matched := gm.matches[playerID]; matched {
		return gm.notifyMatch(playerID, event)
	}
	return false
}

// UnregisterMatchmakingChannel forgets ch without closing it; the caller
// owns the channel.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.matchingChannels[playerID] == ch {
		delete(gm.matchingChannels, playerID)
	}
}

// processMatchmaking pairs every two waiting players into a new game, the
// longest-waiting one playing white, and notifies both.
func (gm *GameManager) processMatchmaking() {
	for {
		white, black, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		s := newSession(gameID, model.NewGame(gm.whiteName, gm.blackName))
		s.whiteID, s.blackID = white, black

		gm.mu.Lock()
		gm.sessions[gameID] = s
		gm.notifyMatch(white, ws.MatchFoundEvent{GameID: gameID, Color: string(model.White)})
		gm.notifyMatch(black, ws.MatchFoundEvent{GameID: gameID, Color: string(model.Black)})
		gm.mu.Unlock()
		log.Printf("matched %s (white) and %s (black) in game %s", white, black, gameID)
	}
}

// notifyMatch must be called with gm.mu held. It hands the event to the
// player's channel, which is then removed from the registry, or keeps it
// for MatchStatus when no channel can take it. It reports whether a
// channel took the event.
func (gm *GameManager) notifyMatch(playerID string, event ws.MatchFoundEvent) bool {
	gm.matches[playerID] = event
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Printf("player %s has no matchmaking socket, holding game %s", playerID, event.GameID)
		return false
	}
	msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
	if err != nil {
		log.Printf("failed to marshal match event: %v", err)
		return false
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal match event: %v", err)
		return false
	}
	select {
	case ch <- string(raw):
	default:
		log.Printf("matchmaking channel of player %s is full, holding game %s", playerID, event.GameID)
		return false
	}
	delete(gm.matchingChannels, playerID)
	delete(gm.matches, playerID)
	return true
}

package service

import (
	"fmt"
	"log"
	"sync"

	"github.com/benbeisheim/shadowchess/internal/model"
	"github.com/benbeisheim/shadowchess/internal/ws"
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Session is one hosted game with its two seats and its observers.
type Session struct {
	ID string

	mu      sync.Mutex
	game    *model.Game
	whiteID string
	blackID string

	connMu      sync.Mutex
	connections map[string]Conn // playerID -> connection
}

func newSession(id string, game *model.Game) *Session {
	return &Session{
		ID:          id,
		game:        game,
		connections: make(map[string]Conn),
	}
}

// join seats playerID as white, then black. A player already seated gets
// their color back.
func (s *Session) join(playerID string) (model.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if color, ok := s.colorOf(playerID); ok {
		return color, nil
	}
	if s.whiteID == "" {
		s.whiteID = playerID
		return model.White, nil
	}
	if s.blackID == "" {
		s.blackID = playerID
		return model.Black, nil
	}
	return "", ErrGameFull
}

func (s *Session) colorOf(playerID string) (model.Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case playerID == s.whiteID:
		return model.White, true
	case playerID == s.blackID:
		return model.Black, true
	}
	return "", false
}

func (s *Session) canSpectate() bool {
	return s.whiteID == "" || s.blackID == ""
}

// move plays from -> to for playerID. The returned state is only set when
// the board changed.
func (s *Session) move(playerID string, from, to model.Position) (bool, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	color, ok := s.colorOf(playerID)
	if !ok {
		return false, nil, ErrNotInGame
	}
	if color != s.game.WhoseTurn() {
		return false, nil, fmt.Errorf("%w: %s to move", ErrNotYourTurn, s.game.WhoseTurn())
	}
	accepted, err := s.game.ProposeMove(from, to)
	if err != nil || !accepted {
		return accepted, nil, err
	}
	state := newGameState(s)
	return true, &state, nil
}

func (s *Session) promote(playerID string, kind model.PieceType) (bool, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	color, ok := s.colorOf(playerID)
	if !ok {
		return false, nil, ErrNotInGame
	}
	accepted, err := s.game.ResolvePromotion(color, kind)
	if err != nil || !accepted {
		return accepted, nil, err
	}
	state := newGameState(s)
	return true, &state, nil
}

func (s *Session) state() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newGameState(s)
}

func (s *Session) registerConnection(playerID string, conn Conn) error {
	s.mu.Lock()
	_, seated := s.colorOf(playerID)
	authorized := seated || s.canSpectate()
	s.mu.Unlock()

	if !authorized {
		return fmt.Errorf("%w: %s", ErrNotInGame, playerID)
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if old, exists := s.connections[playerID]; exists && old != conn {
		log.Printf("game %s: replacing connection of player %s", s.ID, playerID)
		old.Close()
	}
	s.connections[playerID] = conn
	return nil
}

// unregisterConnection forgets conn unless the player has already
// reconnected on a newer one.
func (s *Session) unregisterConnection(playerID string, conn Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if current, exists := s.connections[playerID]; exists && current == conn {
		delete(s.connections, playerID)
	}
}

// broadcast writes state to every connection. Writes are serialized so a
// socket never sees two concurrent writers; failed sockets are dropped.
func (s *Session) broadcast(state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Printf("game %s: failed to marshal state: %v", s.ID, err)
		return
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	for playerID, conn := range s.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("game %s: failed to send state to player %s: %v", s.ID, playerID, err)
			delete(s.connections, playerID)
		}
	}
}

// send writes a single message to one player's connection, if any.
func (s *Session) send(playerID string, msg ws.Message) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	conn, ok := s.connections[playerID]
	if !ok {
		return nil
	}
	return conn.WriteJSON(msg)
}

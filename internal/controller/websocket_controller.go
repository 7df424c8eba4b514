package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/benbeisheim/shadowchess/internal/middleware"
	"github.com/benbeisheim/shadowchess/internal/service"
	"github.com/benbeisheim/shadowchess/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves one player's game socket until it closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Printf("Failed to register connection: %v", err)
		wsc.sendError(c, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("read error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		wsc.dispatch(gameID, playerID, message)
	}
}

// dispatch handles one text frame and answers the sender with an error or
// a rejection. Accepted moves are answered by the state broadcast.
func (wsc *WebSocketController) dispatch(gameID, playerID string, raw []byte) {
	var msg ws.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("parse error: %v", err)
		wsc.reply(gameID, playerID, ws.MessageTypeError, ws.ErrorPayload{Error: "malformed message: " + err.Error()})
		return
	}

	accepted, err := wsc.handleMessage(gameID, playerID, msg)
	if err != nil {
		wsc.reply(gameID, playerID, ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
		return
	}
	if !accepted {
		wsc.reply(gameID, playerID, ws.MessageTypeRejected, msg.Payload)
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) (bool, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return false, err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move.From, move.To)

	case ws.MessageTypePromote:
		var promote ws.PromotePayload
		if err := json.Unmarshal(msg.Payload, &promote); err != nil {
			return false, err
		}
		return wsc.gameService.HandlePromotion(gameID, playerID, promote.Piece)

	default:
		return false, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player and holds the socket open until a
// match is found or the client leaves.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)

	events := make(chan string, 1)
	matched := wsc.gameService.RegisterMatchmakingChannel(playerID, events)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, events)

	// A player already waiting keeps its place; this socket takes over its
	// notification.
	if !matched {
		if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, service.ErrAlreadyQueued) {
			wsc.sendError(c, err)
			return
		}
	}

	left := make(chan struct{})
	go func() {
		defer close(left)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-events:
		if !ok {
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
			log.Printf("Failed to send match to player %s: %v", playerID, err)
		}
	case <-left:
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

// reply writes to a registered game socket through its session, which
// serializes it with state broadcasts.
func (wsc *WebSocketController) reply(gameID, playerID string, t ws.MessageType, payload any) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", t, err)
		return
	}
	if err := wsc.gameService.SendTo(gameID, playerID, msg); err != nil {
		log.Printf("Failed to write %s message to player %s: %v", t, playerID, err)
	}
}

func (wsc *WebSocketController) send(c *websocket.Conn, t ws.MessageType, payload any) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", t, err)
		return
	}
	if err := c.WriteJSON(msg); err != nil {
		log.Printf("Failed to write %s message: %v", t, err)
	}
}

func (wsc *WebSocketController) sendError(c *websocket.Conn, err error) {
	wsc.send(c, ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
}

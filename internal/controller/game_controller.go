package controller

import (
	"errors"
	"log"

	"github.com/benbeisheim/shadowchess/internal/middleware"
	"github.com/benbeisheim/shadowchess/internal/model"
	"github.com/benbeisheim/shadowchess/internal/service"
	"github.com/benbeisheim/shadowchess/internal/ws"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	White string `json:"white"`
	Black string `json:"black"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(req.White, req.Black)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	color, err := gc.gameService.JoinGame(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(gameState)
}

// MakeMove answers 200 for legal and illegal moves alike; "accepted" tells
// them apart.
func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move ws.MovePayload
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	gameID := c.Params("gameId")
	accepted, err := gc.gameService.HandleMove(gameID, middleware.PlayerID(c), move.From, move.To)
	if err != nil {
		return errorResponse(c, err)
	}
	return gc.stateResponse(c, gameID, accepted)
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var promote ws.PromotePayload
	if err := c.BodyParser(&promote); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	gameID := c.Params("gameId")
	accepted, err := gc.gameService.HandlePromotion(gameID, middleware.PlayerID(c), promote.Piece)
	if err != nil {
		return errorResponse(c, err)
	}
	return gc.stateResponse(c, gameID, accepted)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

// MatchmakingStatus tells a player queued over REST whether it has been
// matched yet, and into which game.
func (gc *GameController) MatchmakingStatus(c *fiber.Ctx) error {
	event, matched, err := gc.gameService.MatchStatus(middleware.PlayerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	if !matched {
		return c.JSON(fiber.Map{
			"status": "queued",
		})
	}
	return c.JSON(fiber.Map{
		"status": "matched",
		"gameId": event.GameID,
		"color":  event.Color,
	})
}

func (gc *GameController) stateResponse(c *fiber.Ctx, gameID string, accepted bool) error {
	state, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"accepted": accepted,
		"state":    state,
	})
}

// errorStatus maps service and engine errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrNotQueued):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrInvalidNotation), errors.Is(err, model.ErrInvalidSquare):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrGameExists),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrAlreadyQueued),
		errors.Is(err, model.ErrGameAlreadyOver),
		errors.Is(err, model.ErrPromotionPending),
		errors.Is(err, model.ErrNoPendingPromotion),
		errors.Is(err, model.ErrWrongColor):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/threadly/threadly-api/internal/core/ports"
)

// GameHandler handles HTTP requests for the embedded games. Moves travel
// over the realtime channel, not HTTP; this surface only creates, joins, and
// reads games.
type GameHandler struct {
	service ports.GameService
}

func NewGameHandler(service ports.GameService) *GameHandler {
	return &GameHandler{service: service}
}

type createGameRequest struct {
	Objects int `json:"objects" validate:"omitempty,gt=0"`
}

// Create handles POST /games/create.
//
// @Summary      Create a Nim game
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGameRequest  false  "Optional starting pile size"
// @Success      201   {object}  domain.NimGame
// @Failure      400   {object}  errorResponse
// @Router       /games/create [post]
func (h *GameHandler) Create(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req createGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	game, err := h.service.CreateGame(c.Request().Context(), username, req.Objects)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, game)
}

// Join handles POST /games/:gameID/join.
//
// @Summary      Join a waiting game as the second player
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        gameID  path      string  true  "Game id"
// @Success      200     {object}  domain.NimGame
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /games/{gameID}/join [post]
func (h *GameHandler) Join(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	game, err := h.service.JoinGame(c.Request().Context(), c.Param("gameID"), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, game)
}

// Get handles GET /games/:gameID.
//
// @Summary      Fetch a game's current state
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        gameID  path      string  true  "Game id"
// @Success      200     {object}  domain.NimGame
// @Failure      404     {object}  errorResponse
// @Router       /games/{gameID} [get]
func (h *GameHandler) Get(c echo.Context) error {
	game, err := h.service.GetGame(c.Request().Context(), c.Param("gameID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, game)
}

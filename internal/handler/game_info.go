package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/repository"
)

// GameInfoHandler serves the game metadata singleton.
type GameInfoHandler struct {
	GameInfoRepo *repository.GameInfoRepo
}

// NewGameInfoHandler constructs a GameInfoHandler.
func NewGameInfoHandler(repo *repository.GameInfoRepo) *GameInfoHandler {
	return &GameInfoHandler{GameInfoRepo: repo}
}

// Get handles GET /api/game-info. The rules column is stored JSON-encoded
// and returned as an ordered array of strings. The row is seeded at
// startup, so a miss here is a 500, not a 404: the game cannot run without
// its metadata.
func (h *GameInfoHandler) Get(c echo.Context) error {
	gi, err := h.GameInfoRepo.Get(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrGameInfoMissing) {
			log.Printf("game info row missing")
		} else {
			log.Printf("error getting game info: %v", err)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get game info"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"gameName":        gi.Name,
		"gameDescription": gi.Description,
		"gameRules":       gi.Rules,
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports the state of the raffle engine's dependencies.
type HealthHandler struct {
	raffleService   services.RaffleService
	settingsService services.SettingsService
	cacheEnabled    bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(raffleService services.RaffleService, settingsService services.SettingsService, cacheEnabled bool) *HealthHandler {
	return &HealthHandler{
		raffleService:   raffleService,
		settingsService: settingsService,
		cacheEnabled:    cacheEnabled,
	}
}

// Health handles GET /health. Missing settings degrade the status because no
// new raffle can open without them.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := "ok"

	settingsStatus := "ok"
	if _, err := h.settingsService.GetSettings(ctx); err != nil {
		if errors.Is(err, models.ErrNoActiveSettings) {
			settingsStatus = "missing"
		} else {
			settingsStatus = "error"
		}
		status = "degraded"
	}

	raffleStatus := "none"
	raffle, err := h.raffleService.GetCurrentRaffle(ctx)
	switch {
	case err != nil:
		raffleStatus = "error"
		status = "degraded"
	case raffle != nil:
		raffleStatus = "active"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"settings": settingsStatus,
		"raffle":   raffleStatus,
		"cache":    h.cacheEnabled,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/VictorFortuna/telegram-raffle-game/internal/middleware"
	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RaffleHandler handles player-facing raffle HTTP requests
type RaffleHandler struct {
	raffleService services.RaffleService
}

// NewRaffleHandler creates a new RaffleHandler
func NewRaffleHandler(raffleService services.RaffleService) *RaffleHandler {
	return &RaffleHandler{
		raffleService: raffleService,
	}
}

// GetCurrentRaffle handles GET /raffle/current
func (h *RaffleHandler) GetCurrentRaffle(c *gin.Context) {
	raffle, err := h.raffleService.GetCurrentRaffle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve current raffle"})
		return
	}
	if raffle == nil {
		c.JSON(http.StatusOK, gin.H{"raffle": nil})
		return
	}

	resp := gin.H{
		"raffle":   raffle,
		"progress": raffle.ProgressPercentage(),
	}
	if userID, ok := middleware.TelegramID(c); ok {
		check, err := h.raffleService.CanParticipate(c.Request.Context(), userID)
		if err == nil {
			resp["can_participate"] = check.CanParticipate
			resp["reason"] = check.Reason
		}
	}
	c.JSON(http.StatusOK, resp)
}

// PlaceBet handles POST /raffle/bet
func (h *RaffleHandler) PlaceBet(c *gin.Context) {
	userID, ok := middleware.TelegramID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	result, err := h.raffleService.PlaceBet(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyParticipated):
			c.JSON(http.StatusConflict, gin.H{"error": "You are already participating in this raffle"})
		case errors.Is(err, models.ErrRaffleFull):
			c.JSON(http.StatusConflict, gin.H{"error": "The raffle is already full, try again"})
		case errors.Is(err, models.ErrRaffleNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "The raffle just finished, try again"})
		case errors.Is(err, models.ErrNoActiveSettings):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Betting is temporarily unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place bet"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistory handles GET /raffle/history
func (h *RaffleHandler) GetHistory(c *gin.Context) {
	limit, offset := paginationParams(c, 20)
	raffles, err := h.raffleService.GetHistory(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"raffles": raffles})
}

// GetStats handles GET /raffle/stats
func (h *RaffleHandler) GetStats(c *gin.Context) {
	stats, err := h.raffleService.GetStatistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetRaffleByID handles GET /raffle/:id
func (h *RaffleHandler) GetRaffleByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	raffle, err := h.raffleService.GetRaffle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrRaffleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve raffle"})
		}
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// GetParticipants handles GET /raffle/:id/participants
func (h *RaffleHandler) GetParticipants(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	participants, err := h.raffleService.GetParticipants(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve participants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

func paginationParams(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

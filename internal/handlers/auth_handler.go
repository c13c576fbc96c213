package handlers

import (
	"errors"
	"net/http"

	"github.com/VictorFortuna/telegram-raffle-game/internal/middleware"
	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/services"
	"github.com/VictorFortuna/telegram-raffle-game/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService services.AuthService
	userService services.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService, userService services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// TelegramLogin handles POST /auth/login. It exchanges verified WebApp init
// data for a bearer token.
func (h *AuthHandler) TelegramLogin(c *gin.Context) {
	var req models.TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.authService.TelegramLogin(c.Request.Context(), req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInitDataInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid init data"})
		case errors.Is(err, utils.ErrInitDataExpired):
			c.JSON(http.StatusForbidden, gin.H{"error": "Init data expired, reopen the app"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetMe handles GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.userService.GetByTelegramID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetMyStats handles GET /auth/stats
func (h *AuthHandler) GetMyStats(c *gin.Context) {
	userID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	stats, err := h.userService.GetStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

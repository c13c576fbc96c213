package handlers

import (
	"errors"
	"net/http"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"github.com/VictorFortuna/telegram-raffle-game/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler handles operator HTTP requests
type AdminHandler struct {
	authService     services.AuthService
	raffleService   services.RaffleService
	settingsService services.SettingsService
	userService     services.UserService
	ledgerRepo      repositories.LedgerRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	authService services.AuthService,
	raffleService services.RaffleService,
	settingsService services.SettingsService,
	userService services.UserService,
	ledgerRepo repositories.LedgerRepository,
) *AdminHandler {
	return &AdminHandler{
		authService:     authService,
		raffleService:   raffleService,
		settingsService: settingsService,
		userService:     userService,
		ledgerRepo:      ledgerRepo,
	}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, admin, err := h.authService.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "admin": admin})
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.raffleService.GetStatistics(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
		return
	}

	current, err := h.raffleService.GetCurrentRaffle(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve current raffle"})
		return
	}

	totalUsers, err := h.userService.CountTotal(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	activeUsers, err := h.userService.CountActive(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count active users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":          stats,
		"current_raffle": current,
		"total_users":    totalUsers,
		"active_users":   activeUsers,
	})
}

// ListRaffles handles GET /admin/raffles
func (h *AdminHandler) ListRaffles(c *gin.Context) {
	limit, offset := paginationParams(c, 20)
	raffles, err := h.raffleService.GetHistory(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve raffles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"raffles": raffles})
}

// CancelRaffleRequest is the body for POST /admin/raffles/:id/cancel
type CancelRaffleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelRaffle handles POST /admin/raffles/:id/cancel
func (h *AdminHandler) CancelRaffle(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req CancelRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.raffleService.CancelRaffle(c.Request.Context(), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRaffleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
		case errors.Is(err, models.ErrRaffleTerminal):
			c.JSON(http.StatusConflict, gin.H{"error": "Raffle is already completed or cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel raffle"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSettings handles GET /admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrNoActiveSettings) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active settings"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settings"})
		}
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var settings models.RaffleSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.settingsService.UpdateSettings(c.Request.Context(), &settings)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListTransactions handles GET /admin/transactions. With a raffle_id query
// parameter it returns that raffle's ledger plus its signed sum, which is
// zero for every completed raffle.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	if raffleIDHex := c.Query("raffle_id"); raffleIDHex != "" {
		raffleID, err := primitive.ObjectIDFromHex(raffleIDHex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid raffle_id format"})
			return
		}
		entries, err := h.ledgerRepo.FindByRaffleID(ctx, raffleID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
			return
		}
		sum, err := h.ledgerRepo.SumByRaffleID(ctx, raffleID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum transactions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": entries, "sum": sum})
		return
	}

	limit, offset := paginationParams(c, 50)
	entries, err := h.ledgerRepo.FindAll(ctx, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := paginationParams(c, 50)
	users, err := h.userService.FindAll(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

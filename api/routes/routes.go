package routes

import (
	"github.com/VictorFortuna/telegram-raffle-game/internal/config"
	"github.com/VictorFortuna/telegram-raffle-game/internal/handlers"
	"github.com/VictorFortuna/telegram-raffle-game/internal/middleware"
	"github.com/VictorFortuna/telegram-raffle-game/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// HandlerDependencies carries the handlers the router wires up.
type HandlerDependencies struct {
	RaffleHandler *handlers.RaffleHandler
	AuthHandler   *handlers.AuthHandler
	AdminHandler  *handlers.AdminHandler
	HealthHandler *handlers.HealthHandler
	UserService   services.UserService
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, logger *slog.Logger, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))

	router.GET("/health", deps.HealthHandler.Health)

	api := router.Group("/api")

	// Auth routes: login is public, the rest requires a player token.
	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.AuthHandler.TelegramLogin)

		authed := auth.Group("")
		authed.Use(middleware.JWTAuthMiddleware(cfg))
		{
			authed.GET("/me", deps.AuthHandler.GetMe)
			authed.GET("/stats", deps.AuthHandler.GetMyStats)
		}
	}

	// Raffle routes: authenticated by raw WebApp init data per request.
	raffle := api.Group("/raffle")
	raffle.Use(middleware.TelegramAuthMiddleware(cfg, deps.UserService))
	{
		raffle.GET("/current", deps.RaffleHandler.GetCurrentRaffle)
		raffle.POST("/bet", deps.RaffleHandler.PlaceBet)
		raffle.GET("/history", deps.RaffleHandler.GetHistory)
		raffle.GET("/stats", deps.RaffleHandler.GetStats)
		raffle.GET("/:id", deps.RaffleHandler.GetRaffleByID)
		raffle.GET("/:id/participants", deps.RaffleHandler.GetParticipants)
	}

	// Admin routes: login is public, the rest requires an admin token.
	admin := api.Group("/admin")
	{
		admin.POST("/login", deps.AdminHandler.Login)

		protected := admin.Group("")
		protected.Use(middleware.JWTAuthMiddleware(cfg))
		protected.Use(middleware.RequireRole(services.RoleAdmin))
		{
			protected.GET("/dashboard", deps.AdminHandler.Dashboard)
			protected.GET("/raffles", deps.AdminHandler.ListRaffles)
			protected.POST("/raffles/:id/cancel", deps.AdminHandler.CancelRaffle)
			protected.GET("/settings", deps.AdminHandler.GetSettings)
			protected.PUT("/settings", deps.AdminHandler.UpdateSettings)
			protected.GET("/transactions", deps.AdminHandler.ListTransactions)
			protected.GET("/users", deps.AdminHandler.ListUsers)
		}
	}

	return router
}

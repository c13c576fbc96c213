package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/api/routes"
	"github.com/VictorFortuna/telegram-raffle-game/internal/cache"
	"github.com/VictorFortuna/telegram-raffle-game/internal/config"
	"github.com/VictorFortuna/telegram-raffle-game/internal/handlers"
	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	mongorepo "github.com/VictorFortuna/telegram-raffle-game/internal/repositories/mongodb"
	"github.com/VictorFortuna/telegram-raffle-game/internal/services"
	"github.com/VictorFortuna/telegram-raffle-game/pkg/mongodb"
	"github.com/VictorFortuna/telegram-raffle-game/pkg/telegram"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	cancel()
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect from mongodb", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(context.Background(), db); err != nil {
		logger.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	raffleRepo := mongorepo.NewRaffleRepository(db.Client(), db)
	ledgerRepo := mongorepo.NewLedgerRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	settingsRepo := mongorepo.NewSettingsRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)

	if err := bootstrapSettings(context.Background(), settingsRepo, cfg, logger); err != nil {
		logger.Error("failed to bootstrap settings", "error", err)
		os.Exit(1)
	}

	var raffleCache cache.RaffleCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		raffleCache = cache.NewRedisRaffleCache(redisClient, cfg.CacheTTL())
	}

	var kafkaWriter *kafka.Writer
	if cfg.Kafka.Enabled {
		kafkaWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
		defer kafkaWriter.Close()
	}

	telegramClient := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.MockBot)

	notifier := services.NewNotificationService(kafkaWriter, telegramClient, logger)
	raffleService := services.NewRaffleService(raffleRepo, settingsRepo, raffleCache, notifier, logger)
	settingsService := services.NewSettingsService(settingsRepo, logger)
	userService := services.NewUserService(userRepo, ledgerRepo, logger)
	authService := services.NewAuthService(adminRepo, userRepo, cfg.JWT.Secret, cfg.JWTExpiry(), cfg.Telegram.BotToken, logger)

	deps := routes.HandlerDependencies{
		RaffleHandler: handlers.NewRaffleHandler(raffleService),
		AuthHandler:   handlers.NewAuthHandler(authService, userService),
		AdminHandler:  handlers.NewAdminHandler(authService, raffleService, settingsService, userService, ledgerRepo),
		HealthHandler: handlers.NewHealthHandler(raffleService, settingsService, cfg.Redis.Enabled),
		UserService:   userService,
	}

	router := routes.SetupRouter(cfg, logger, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// bootstrapSettings installs the default settings row on first boot. After
// that the admin endpoints own the settings.
func bootstrapSettings(ctx context.Context, settingsRepo repositories.SettingsRepository, cfg *config.Config, logger *slog.Logger) error {
	_, err := settingsRepo.GetActive(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNoActiveSettings) {
		return err
	}

	defaults := &models.RaffleSettings{
		ParticipantsLimit:      cfg.Raffle.DefaultParticipantsLimit,
		BetAmount:              cfg.Raffle.DefaultBetAmount,
		WinnerPercent:          cfg.Raffle.DefaultWinnerPercent,
		OrganizerPercent:       cfg.Raffle.DefaultOrganizerPercent,
		MaxRaffleDurationHours: cfg.Raffle.DefaultMaxDurationHours,
	}
	if _, err := settingsRepo.Update(ctx, defaults); err != nil {
		return err
	}
	logger.Info("default settings installed",
		"participantsLimit", defaults.ParticipantsLimit,
		"betAmount", defaults.BetAmount)
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

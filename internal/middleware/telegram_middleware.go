package middleware

import (
	"errors"
	"net/http"

	"github.com/VictorFortuna/telegram-raffle-game/internal/config"
	"github.com/VictorFortuna/telegram-raffle-game/internal/services"
	"github.com/VictorFortuna/telegram-raffle-game/internal/utils"
	"github.com/gin-gonic/gin"
)

// TelegramAuthMiddleware authenticates WebApp requests by their raw init
// data, sent in the X-Telegram-Init-Data header. The player row is upserted
// on every verified request, which doubles as the activity heartbeat.
func TelegramAuthMiddleware(cfg *config.Config, userService services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		initData := c.GetHeader("X-Telegram-Init-Data")
		if initData == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "X-Telegram-Init-Data header is required"})
			c.Abort()
			return
		}

		tu, err := utils.VerifyInitData(initData, cfg.Telegram.BotToken)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, utils.ErrInitDataExpired) {
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		user, err := userService.UpsertFromTelegram(c.Request.Context(), tu)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			c.Abort()
			return
		}

		c.Set("telegramUser", user)
		c.Set("telegramId", user.TelegramID)
		c.Next()
	}
}

// TelegramID extracts the authenticated player's Telegram ID from the
// context.
func TelegramID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("telegramId")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

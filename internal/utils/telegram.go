package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
)

// Verification errors for Telegram WebApp init data.
var (
	ErrInitDataInvalid = errors.New("invalid telegram init data")
	ErrInitDataExpired = errors.New("telegram init data expired")
)

// initDataMaxAge bounds how old a signed init data payload may be.
const initDataMaxAge = 24 * time.Hour

// VerifyInitData validates the HMAC signature of Telegram WebApp init data
// against the bot token and returns the embedded user. The data-check string
// is the sorted key=value pairs joined with newlines, excluding the hash
// itself; the signing key is HMAC-SHA256 of the bot token keyed with the
// literal "WebAppData".
func VerifyInitData(initData, botToken string) (*models.TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed query string", ErrInitDataInvalid)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, fmt.Errorf("%w: missing hash", ErrInitDataInvalid)
	}

	pairs := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secretKey := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	wantHash := hex.EncodeToString(hmacSHA256(secretKey, []byte(dataCheckString)))
	if !hmac.Equal([]byte(gotHash), []byte(wantHash)) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInitDataInvalid)
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad auth_date", ErrInitDataInvalid)
	}
	if time.Since(time.Unix(authDate, 0)) > initDataMaxAge {
		return nil, ErrInitDataExpired
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInitDataInvalid)
	}
	var user models.TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("%w: bad user payload", ErrInitDataInvalid)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrInitDataInvalid)
	}
	return &user, nil
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

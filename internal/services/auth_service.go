package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"github.com/VictorFortuna/telegram-raffle-game/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// ErrInvalidCredentials is returned on failed logins. Deliberately the same
// for unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Token roles carried in the "role" claim.
const (
	RoleAdmin  = "admin"
	RolePlayer = "player"
)

// authService implements AuthService.
type authService struct {
	adminRepo repositories.AdminUserRepository
	userRepo  repositories.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
	botToken  string
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	adminRepo repositories.AdminUserRepository,
	userRepo repositories.UserRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
	botToken string,
	logger *slog.Logger,
) AuthService {
	return &authService{
		adminRepo: adminRepo,
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		botToken:  botToken,
		logger:    logger,
	}
}

// AdminLogin checks the email/password pair against the stored bcrypt hash
// and issues an admin token.
func (s *authService) AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (string, *models.AdminUser, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, err
	}
	if admin == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(admin.ID.Hex(), RoleAdmin)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("admin logged in", "email", admin.Email)
	return token, admin, nil
}

// TelegramLogin verifies WebApp init data, upserts the player row and issues
// a player token.
func (s *authService) TelegramLogin(ctx context.Context, initData string) (string, *models.User, error) {
	tu, err := utils.VerifyInitData(initData, s.botToken)
	if err != nil {
		return "", nil, err
	}

	user, err := s.userRepo.Upsert(ctx, tu)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(strconv.FormatInt(user.TelegramID, 10), RolePlayer)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *authService) generateToken(subject, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.jwtExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type fakeAdminRepo struct {
	admins map[string]*models.AdminUser
}

func (f *fakeAdminRepo) Create(ctx context.Context, adminUser *models.AdminUser) error {
	f.admins[adminUser.Email] = adminUser
	return nil
}

func (f *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	admin, ok := f.admins[email]
	if !ok {
		return nil, nil
	}
	copied := *admin
	return &copied, nil
}

func newTestAuthService(t *testing.T, adminRepo *fakeAdminRepo) AuthService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	userRepo := &fakeUserRepo{users: map[int64]*models.User{}}
	return NewAuthService(adminRepo, userRepo, "test-secret", time.Hour, "test-bot-token", logger)
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	adminRepo := &fakeAdminRepo{admins: map[string]*models.AdminUser{
		"admin@example.com": {Email: "admin@example.com", Password: string(hash), Role: "admin"},
	}}
	svc := newTestAuthService(t, adminRepo)

	token, admin, err := svc.AdminLogin(context.Background(), &models.AdminLoginRequest{
		Email:    "admin@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, RoleAdmin, claims["role"])
}

func TestAdminLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	adminRepo := &fakeAdminRepo{admins: map[string]*models.AdminUser{
		"admin@example.com": {Email: "admin@example.com", Password: string(hash)},
	}}
	svc := newTestAuthService(t, adminRepo)

	_, _, err = svc.AdminLogin(context.Background(), &models.AdminLoginRequest{
		Email:    "admin@example.com",
		Password: "battery staple",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(t, &fakeAdminRepo{admins: map[string]*models.AdminUser{}})

	_, _, err := svc.AdminLogin(context.Background(), &models.AdminLoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

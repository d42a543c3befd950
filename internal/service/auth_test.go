package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository/memory"
	redisrepo "github.com/shestoi/linkmarket/internal/repository/redis"
	"github.com/shestoi/linkmarket/internal/service"
)

// newAuthService собирает AuthService поверх in-memory users и miniredis сессий
func newAuthService(t *testing.T, ttl time.Duration) (*service.AuthService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sessions := redisrepo.NewSessionRepository(client, zap.NewNop())
	users := memory.NewUserRepository()

	return service.NewAuthService(zap.NewNop(), users, sessions, ttl), mr
}

func TestAuthService_RegisterLoginFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, time.Hour)

	reg, err := svc.Register(ctx, service.RegisterInput{
		Email:    "buyer@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.UserID)

	login, err := svc.Login(ctx, "buyer@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	user, err := svc.ResolveToken(ctx, login.Token)
	require.NoError(t, err)
	require.Equal(t, reg.UserID, user.ID)
	require.Equal(t, "buyer@example.com", user.Email)
	require.False(t, user.IsAdmin)
}

func TestAuthService_Register_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, time.Hour)

	_, err := svc.Register(ctx, service.RegisterInput{Email: "not-an-email", Password: "secret123"})
	require.Error(t, err)

	_, err = svc.Register(ctx, service.RegisterInput{Email: "buyer@example.com", Password: "short"})
	require.Error(t, err)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, time.Hour)

	_, err := svc.Register(ctx, service.RegisterInput{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, service.RegisterInput{Email: "buyer@example.com", Password: "another1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, time.Hour)

	_, err := svc.Register(ctx, service.RegisterInput{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)

	// Одинаковый ответ для неизвестного email и неверного пароля
	_, err = svc.Login(ctx, "unknown@example.com", "secret123")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "buyer@example.com", "wrong-password")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, time.Hour)

	_, err := svc.Register(ctx, service.RegisterInput{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, "buyer@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.Token))

	_, err = svc.ResolveToken(ctx, login.Token)
	require.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestAuthService_SessionExpiry(t *testing.T) {
	ctx := context.Background()
	svc, mr := newAuthService(t, time.Minute)

	_, err := svc.Register(ctx, service.RegisterInput{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, "buyer@example.com", "secret123")
	require.NoError(t, err)

	// Проматываем время за TTL сессии
	mr.FastForward(2 * time.Minute)

	_, err = svc.ResolveToken(ctx, login.Token)
	require.ErrorIs(t, err, service.ErrUnauthenticated)
}

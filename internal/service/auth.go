package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shestoi/linkmarket/internal/repository"
)

// AuthService содержит бизнес-логику работы с профилями и bearer-сессиями
type AuthService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	sessions   repository.SessionRepository
	sessionTTL time.Duration
}

// NewAuthService создаёт новый экземпляр AuthService
func NewAuthService(logger *zap.Logger, users repository.UserRepository, sessions repository.SessionRepository, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		logger:     logger,
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// RegisterInput содержит входные данные для регистрации
type RegisterInput struct {
	Email    string
	Password string
}

// RegisterOutput содержит результат регистрации
type RegisterOutput struct {
	UserID string
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := repository.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if err == repository.ErrAlreadyExists {
			return nil, fmt.Errorf("user with email %s already exists", input.Email)
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return &RegisterOutput{UserID: user.ID}, nil
}

// LoginOutput содержит bearer token созданной сессии
type LoginOutput struct {
	Token string
}

// Login проверяет пару email/пароль и создаёт сессию
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginOutput, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			// Одинаковый ответ для неизвестного email и неверного пароля
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.CreateSession(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &LoginOutput{Token: token}, nil
}

// Logout удаляет сессию по токену
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// ResolveToken возвращает пользователя по bearer токену
// Возвращает ErrUnauthenticated для неизвестного/истёкшего токена
func (s *AuthService) ResolveToken(ctx context.Context, token string) (repository.User, error) {
	userID, err := s.sessions.GetUserIDBySession(ctx, token)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return repository.User{}, ErrUnauthenticated
		}
		return repository.User{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return repository.User{}, ErrUnauthenticated
		}
		return repository.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

package repository

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound возвращается при невалидном или истёкшем токене сессии
var ErrSessionNotFound = errors.New("session not found")

// User представляет профиль покупателя или администратора
type User struct {
	ID           string
	Email        string
	PasswordHash string
	// IsAdmin открывает доступ к бэк-офису (/admin/*)
	IsAdmin   bool
	CreatedAt time.Time
}

// UserRepository определяет интерфейс для работы с профилями
type UserRepository interface {
	// CreateUser сохраняет нового пользователя
	// Возвращает ErrAlreadyExists, если email уже занят
	CreateUser(ctx context.Context, user User) error

	// GetByEmail получает пользователя по email
	// Возвращает ErrNotFound, если пользователь не найден
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, id string) (User, error)
}

// SessionRepository определяет интерфейс для работы с bearer-сессиями
type SessionRepository interface {
	// CreateSession создаёт сессию для пользователя и возвращает её токен
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error)

	// GetUserIDBySession возвращает user_id по токену сессии
	// Возвращает ErrSessionNotFound для неизвестного/истёкшего токена
	GetUserIDBySession(ctx context.Context, token string) (string, error)

	// DeleteSession удаляет сессию
	DeleteSession(ctx context.Context, token string) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/linkmarket/internal/repository"
)

// код PostgreSQL для нарушения уникального индекса
const uniqueViolationCode = "23505"

// UserRepository реализует repository.UserRepository используя PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository создаёт новый PostgreSQL репозиторий профилей
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool: pool,
	}
}

// CreateUser сохраняет нового пользователя
// Возвращает ErrAlreadyExists при занятом email
func (r *UserRepository) CreateUser(ctx context.Context, user repository.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.IsAdmin)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	var user repository.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, is_admin, created_at
		 FROM users
		 WHERE email = $1`,
		email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.User{}, repository.ErrNotFound
		}
		return repository.User{}, err
	}
	return user, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (repository.User, error) {
	var user repository.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, is_admin, created_at
		 FROM users
		 WHERE id = $1`,
		id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.User{}, repository.ErrNotFound
		}
		return repository.User{}, err
	}
	return user, nil
}

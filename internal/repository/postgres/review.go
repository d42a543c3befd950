package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/linkmarket/internal/repository"
)

// ReviewRepository реализует repository.ReviewRepository используя PostgreSQL
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository создаёт новый PostgreSQL репозиторий отзывов
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{
		pool: pool,
	}
}

// Create сохраняет отзыв
// Уникальный индекс (product_id, user_id) не даёт оставить второй отзыв
func (r *ReviewRepository) Create(ctx context.Context, review repository.Review) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reviews (id, product_id, user_id, rating, comment)
		 VALUES ($1, $2, $3, $4, $5)`,
		review.ID, review.ProductID, review.UserID, review.Rating, review.Comment)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ListByProduct возвращает отзывы позиции, новые первыми
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]repository.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, user_id, rating, comment, created_at
		 FROM reviews
		 WHERE product_id = $1
		 ORDER BY created_at DESC`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]repository.Review, 0)
	for rows.Next() {
		var review repository.Review
		if err := rows.Scan(&review.ID, &review.ProductID, &review.UserID,
			&review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

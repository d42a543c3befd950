package repository

import (
	"context"
	"time"
)

// Review представляет отзыв покупателя о площадке
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int32 // 1..5
	Comment   string
	CreatedAt time.Time
}

// ReviewRepository определяет интерфейс для работы с отзывами
type ReviewRepository interface {
	// Create сохраняет отзыв
	// Возвращает ErrAlreadyExists, если пользователь уже оставлял отзыв на эту позицию
	Create(ctx context.Context, review Review) error

	// ListByProduct возвращает отзывы позиции, новые первыми
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
}

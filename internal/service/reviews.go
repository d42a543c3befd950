package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository"
)

// ReviewService содержит бизнес-логику отзывов о площадках
type ReviewService struct {
	logger   *zap.Logger
	products repository.ProductRepository
	reviews  repository.ReviewRepository
}

// NewReviewService создаёт новый экземпляр ReviewService
func NewReviewService(logger *zap.Logger, products repository.ProductRepository, reviews repository.ReviewRepository) *ReviewService {
	return &ReviewService{
		logger:   logger,
		products: products,
		reviews:  reviews,
	}
}

// AddReviewInput содержит входные данные отзыва
type AddReviewInput struct {
	ProductID string
	UserID    string
	Rating    int32
	Comment   string
}

// AddReview сохраняет отзыв покупателя о площадке
func (s *ReviewService) AddReview(ctx context.Context, input AddReviewInput) (repository.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return repository.Review{}, fmt.Errorf("rating must be between 1 and 5")
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		if err == repository.ErrNotFound {
			return repository.Review{}, fmt.Errorf("product %s not found", input.ProductID)
		}
		return repository.Review{}, fmt.Errorf("failed to load product: %w", err)
	}

	review := repository.Review{
		ID:        uuid.NewString(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if err == repository.ErrAlreadyExists {
			return repository.Review{}, fmt.Errorf("review already exists for this product")
		}
		s.logger.Error("failed to create review", zap.Error(err))
		return repository.Review{}, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// ListByProduct возвращает отзывы позиции, новые первыми
func (s *ReviewService) ListByProduct(ctx context.Context, productID string) ([]repository.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository"
)

// CatalogService содержит бизнес-логику работы с каталогом площадок
type CatalogService struct {
	logger   *zap.Logger
	products repository.ProductRepository
}

// NewCatalogService создаёт новый экземпляр CatalogService
func NewCatalogService(logger *zap.Logger, products repository.ProductRepository) *CatalogService {
	return &CatalogService{
		logger:   logger,
		products: products,
	}
}

// ProductInput содержит входные данные позиции каталога (бэк-офис)
type ProductInput struct {
	Title           string
	SiteURL         string
	Description     string
	Category        string
	Price           int64
	DomainAuthority int32
	DomainRating    int32
	MonthlyTraffic  int64
	Active          bool
}

func (in ProductInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required")
	}
	if in.SiteURL == "" {
		return fmt.Errorf("site_url is required")
	}
	if in.Price <= 0 {
		return fmt.Errorf("price must be greater than 0")
	}
	return nil
}

// ListProducts возвращает позиции каталога
// includeInactive=true доступно только бэк-офису
func (s *CatalogService) ListProducts(ctx context.Context, includeInactive bool) ([]repository.Product, error) {
	return s.products.List(ctx, !includeInactive)
}

// GetProduct возвращает позицию каталога по ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (repository.Product, error) {
	return s.products.GetByID(ctx, id)
}

// CreateProduct создаёт позицию каталога (бэк-офис)
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (repository.Product, error) {
	if err := input.validate(); err != nil {
		return repository.Product{}, err
	}

	product := repository.Product{
		ID:              uuid.NewString(),
		Title:           input.Title,
		SiteURL:         input.SiteURL,
		Description:     input.Description,
		Category:        input.Category,
		Price:           input.Price,
		DomainAuthority: input.DomainAuthority,
		DomainRating:    input.DomainRating,
		MonthlyTraffic:  input.MonthlyTraffic,
		Active:          input.Active,
		CreatedAt:       time.Now(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product", zap.Error(err))
		return repository.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("site_url", product.SiteURL),
	)
	return product, nil
}

// UpdateProduct обновляет позицию каталога (бэк-офис)
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (repository.Product, error) {
	if err := input.validate(); err != nil {
		return repository.Product{}, err
	}

	product := repository.Product{
		ID:              id,
		Title:           input.Title,
		SiteURL:         input.SiteURL,
		Description:     input.Description,
		Category:        input.Category,
		Price:           input.Price,
		DomainAuthority: input.DomainAuthority,
		DomainRating:    input.DomainRating,
		MonthlyTraffic:  input.MonthlyTraffic,
		Active:          input.Active,
	}
	if err := s.products.Update(ctx, product); err != nil {
		return repository.Product{}, err
	}
	return product, nil
}

// DeleteProduct удаляет позицию каталога (бэк-офис)
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

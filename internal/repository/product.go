package repository

import (
	"context"
	"time"
)

// Product представляет позицию каталога - площадку, на которой продаётся размещение ссылки
type Product struct {
	ID          string
	Title       string
	SiteURL     string
	Description string
	Category    string
	Price       int64 // цена в центах
	// SEO-метрики площадки
	DomainAuthority int32
	DomainRating    int32
	MonthlyTraffic  int64
	Active          bool
	CreatedAt       time.Time
}

// ProductRepository определяет интерфейс для работы с каталогом
type ProductRepository interface {
	// Create сохраняет новую позицию каталога
	Create(ctx context.Context, product Product) error

	// Update обновляет позицию каталога
	// Возвращает ErrNotFound, если позиция не найдена
	Update(ctx context.Context, product Product) error

	// Delete удаляет позицию каталога
	Delete(ctx context.Context, id string) error

	// GetByID получает позицию по ID
	GetByID(ctx context.Context, id string) (Product, error)

	// List возвращает позиции каталога
	// onlyActive=true отдаёт только активные (витрина), false - все (бэк-офис)
	List(ctx context.Context, onlyActive bool) ([]Product, error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/linkmarket/internal/repository"
)

// ProductRepository реализует repository.ProductRepository используя PostgreSQL
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository создаёт новый PostgreSQL репозиторий каталога
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{
		pool: pool,
	}
}

// Create сохраняет новую позицию каталога
func (r *ProductRepository) Create(ctx context.Context, product repository.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, title, site_url, description, category, price,
		                       domain_authority, domain_rating, monthly_traffic, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.Title, product.SiteURL, product.Description,
		product.Category, product.Price, product.DomainAuthority,
		product.DomainRating, product.MonthlyTraffic, product.Active)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update обновляет позицию каталога
func (r *ProductRepository) Update(ctx context.Context, product repository.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET title = $2, site_url = $3, description = $4, category = $5, price = $6,
		     domain_authority = $7, domain_rating = $8, monthly_traffic = $9, active = $10
		 WHERE id = $1`,
		product.ID, product.Title, product.SiteURL, product.Description,
		product.Category, product.Price, product.DomainAuthority,
		product.DomainRating, product.MonthlyTraffic, product.Active)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete удаляет позицию каталога
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByID получает позицию каталога по ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (repository.Product, error) {
	var p repository.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, site_url, description, category, price,
		        domain_authority, domain_rating, monthly_traffic, active, created_at
		 FROM products
		 WHERE id = $1`,
		id).Scan(&p.ID, &p.Title, &p.SiteURL, &p.Description, &p.Category, &p.Price,
		&p.DomainAuthority, &p.DomainRating, &p.MonthlyTraffic, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}
	return p, nil
}

// List возвращает позиции каталога
// onlyActive=true отдаёт только активные (витрина), false - все (бэк-офис)
func (r *ProductRepository) List(ctx context.Context, onlyActive bool) ([]repository.Product, error) {
	query := `SELECT id, title, site_url, description, category, price,
	                 domain_authority, domain_rating, monthly_traffic, active, created_at
	          FROM products`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]repository.Product, 0)
	for rows.Next() {
		var p repository.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.SiteURL, &p.Description, &p.Category,
			&p.Price, &p.DomainAuthority, &p.DomainRating, &p.MonthlyTraffic,
			&p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

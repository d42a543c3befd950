package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/linkmarket/internal/repository"
)

// OrderRepository реализует repository.OrderRepository используя PostgreSQL
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository создаёт новый PostgreSQL репозиторий заказов
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool: pool,
	}
}

// sessionIDParam конвертирует пустой correlation token в NULL.
// В БД stripe_session_id nullable с уникальным индексом: NULL-ы не
// конфликтуют между собой, поэтому заказы без токена (созданные до оплаты)
// не мешают инварианту "не больше одного заказа на токен".
func sessionIDParam(sessionID string) any {
	if sessionID == "" {
		return nil
	}
	return sessionID
}

// CreateIfAbsent вставляет заказ с ON CONFLICT DO NOTHING по stripe_session_id.
// Повторная доставка checkout.session.completed для того же токена не создаёт
// второй заказ - идемпотентность обеспечивается самим хранилищем
func (r *OrderRepository) CreateIfAbsent(ctx context.Context, order repository.Order) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, user_id, product_id, amount, status, payment_status,
		                     stripe_session_id, keywords, target_url, attachment_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (stripe_session_id) DO NOTHING`,
		order.ID, order.UserID, order.ProductID, order.Amount,
		string(order.Status), string(order.PaymentStatus),
		sessionIDParam(order.StripeSessionID),
		order.Keywords, order.TargetURL, order.AttachmentURL)
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID получает заказ по ID из PostgreSQL
func (r *OrderRepository) GetByID(ctx context.Context, id string) (repository.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, product_id, amount, status, payment_status,
		        stripe_session_id, keywords, target_url, attachment_url, created_at
		 FROM orders
		 WHERE id = $1`,
		id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Order{}, repository.ErrNotFound
		}
		return repository.Order{}, err
	}
	return order, nil
}

// AttachSession записывает session token на существующий заказ (update по ID)
func (r *OrderRepository) AttachSession(ctx context.Context, orderID, sessionID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET stripe_session_id = $2 WHERE id = $1`,
		orderID, sessionIDParam(sessionID))
	if err != nil {
		return fmt.Errorf("attach session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkPaidByID помечает заказ оплаченным и записывает session token
// Повторное выполнение для того же заказа - безвредная запись того же статуса
func (r *OrderRepository) MarkPaidByID(ctx context.Context, orderID, sessionID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET payment_status = $2, stripe_session_id = $3
		 WHERE id = $1`,
		orderID, string(repository.PaymentCompleted), sessionIDParam(sessionID))
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPaymentStatusBySession обновляет payment_status заказов с данным токеном
// Ноль затронутых строк - не ошибка: заказ для токена мог ещё не появиться
// или событие относится к чужому потоку
func (r *OrderRepository) SetPaymentStatusBySession(ctx context.Context, sessionID string, status repository.PaymentStatus) (int64, error) {
	if sessionID == "" {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $2 WHERE stripe_session_id = $1`,
		sessionID, string(status))
	if err != nil {
		return 0, fmt.Errorf("set payment status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListByUser возвращает заказы покупателя, новые первыми
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]repository.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, product_id, amount, status, payment_status,
		        stripe_session_id, keywords, target_url, attachment_url, created_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// List возвращает все заказы (бэк-офис), новые первыми
func (r *OrderRepository) List(ctx context.Context) ([]repository.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, product_id, amount, status, payment_status,
		        stripe_session_id, keywords, target_url, attachment_url, created_at
		 FROM orders
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// UpdateStatus обновляет fulfillment статус заказа
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status repository.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`,
		orderID, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// scanOrder собирает доменную модель из строки результата
func scanOrder(row pgx.Row) (repository.Order, error) {
	var order repository.Order
	var status, paymentStatus string
	var sessionID sql.NullString
	err := row.Scan(&order.ID, &order.UserID, &order.ProductID, &order.Amount,
		&status, &paymentStatus, &sessionID,
		&order.Keywords, &order.TargetURL, &order.AttachmentURL, &order.CreatedAt)
	if err != nil {
		return repository.Order{}, err
	}
	order.Status = repository.OrderStatus(status)
	order.PaymentStatus = repository.PaymentStatus(paymentStatus)
	order.StripeSessionID = sessionID.String
	return order, nil
}

func collectOrders(rows pgx.Rows) ([]repository.Order, error) {
	orders := make([]repository.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/linkmarket/internal/repository"
)

// ChatRepository реализует repository.ChatRepository используя PostgreSQL
type ChatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository создаёт новый PostgreSQL репозиторий переписки
func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{
		pool: pool,
	}
}

// Append добавляет сообщение в переписку заказа
func (r *ChatRepository) Append(ctx context.Context, msg repository.ChatMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO order_messages (id, order_id, sender_id, from_admin, body)
		 VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.OrderID, msg.SenderID, msg.FromAdmin, msg.Body)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByOrder возвращает сообщения заказа в хронологическом порядке
func (r *ChatRepository) ListByOrder(ctx context.Context, orderID string) ([]repository.ChatMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, sender_id, from_admin, body, created_at
		 FROM order_messages
		 WHERE order_id = $1
		 ORDER BY created_at`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]repository.ChatMessage, 0)
	for rows.Next() {
		var msg repository.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.OrderID, &msg.SenderID, &msg.FromAdmin,
			&msg.Body, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

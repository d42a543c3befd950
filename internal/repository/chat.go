package repository

import (
	"context"
	"time"
)

// ChatMessage представляет сообщение в переписке покупателя и продавца по заказу
type ChatMessage struct {
	ID      string
	OrderID string
	// SenderID - автор сообщения; FromAdmin=true, когда отвечает бэк-офис
	SenderID  string
	FromAdmin bool
	Body      string
	CreatedAt time.Time
}

// ChatRepository определяет интерфейс для работы с перепиской по заказам
type ChatRepository interface {
	// Append добавляет сообщение в переписку заказа
	Append(ctx context.Context, msg ChatMessage) error

	// ListByOrder возвращает сообщения заказа в хронологическом порядке
	ListByOrder(ctx context.Context, orderID string) ([]ChatMessage, error)
}

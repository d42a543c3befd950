package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository"
)

// ChatService содержит бизнес-логику переписки покупателя и продавца по заказу
// Доступ к переписке имеют покупатель заказа и бэк-офис
type ChatService struct {
	logger *zap.Logger
	orders repository.OrderRepository
	chat   repository.ChatRepository
}

// NewChatService создаёт новый экземпляр ChatService
func NewChatService(logger *zap.Logger, orders repository.OrderRepository, chat repository.ChatRepository) *ChatService {
	return &ChatService{
		logger: logger,
		orders: orders,
		chat:   chat,
	}
}

// checkAccess проверяет, что requester - покупатель заказа или админ
func (s *ChatService) checkAccess(ctx context.Context, orderID string, requester repository.User) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != requester.ID && !requester.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// ListMessages возвращает переписку заказа в хронологическом порядке
func (s *ChatService) ListMessages(ctx context.Context, orderID string, requester repository.User) ([]repository.ChatMessage, error) {
	if err := s.checkAccess(ctx, orderID, requester); err != nil {
		return nil, err
	}
	return s.chat.ListByOrder(ctx, orderID)
}

// PostMessage добавляет сообщение в переписку заказа
func (s *ChatService) PostMessage(ctx context.Context, orderID string, requester repository.User, body string) (repository.ChatMessage, error) {
	if body == "" {
		return repository.ChatMessage{}, fmt.Errorf("message body is required")
	}
	if err := s.checkAccess(ctx, orderID, requester); err != nil {
		return repository.ChatMessage{}, err
	}

	msg := repository.ChatMessage{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		SenderID:  requester.ID,
		FromAdmin: requester.IsAdmin,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.chat.Append(ctx, msg); err != nil {
		s.logger.Error("failed to append chat message",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return repository.ChatMessage{}, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository"
)

// OrderService содержит бизнес-логику просмотра заказов и бэк-офисных
// операций над fulfillment статусом.
// payment_status заказов здесь не трогается - им владеет ReconcilerService.
type OrderService struct {
	logger    *zap.Logger
	orders    repository.OrderRepository
	publisher EventPublisher
}

// NewOrderService создаёт новый экземпляр OrderService
// publisher может быть nil - тогда события смены статуса не публикуются
func NewOrderService(logger *zap.Logger, orders repository.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		logger:    logger,
		orders:    orders,
		publisher: publisher,
	}
}

// ListMine возвращает заказы покупателя
func (s *OrderService) ListMine(ctx context.Context, userID string) ([]repository.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Get возвращает заказ, проверяя право доступа:
// покупатель видит только свои заказы, админ - любые
func (s *OrderService) Get(ctx context.Context, orderID string, requester repository.User) (repository.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return repository.Order{}, err
	}
	if order.UserID != requester.ID && !requester.IsAdmin {
		return repository.Order{}, ErrForbidden
	}
	return order, nil
}

// ListAll возвращает все заказы (бэк-офис)
func (s *OrderService) ListAll(ctx context.Context) ([]repository.Order, error) {
	return s.orders.List(ctx)
}

// допустимые переходы fulfillment статуса
var statusTransitions = map[repository.OrderStatus][]repository.OrderStatus{
	repository.OrderPending:    {repository.OrderProcessing, repository.OrderCancelled},
	repository.OrderProcessing: {repository.OrderCompleted, repository.OrderCancelled},
}

// UpdateStatus меняет fulfillment статус заказа (бэк-офис)
// Допускаются только переходы pending -> processing -> completed/cancelled
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status repository.OrderStatus) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range statusTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("invalid status transition: %s -> %s", order.Status, status)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)),
	)

	// Best effort: статус уже записан, ошибка публикации только логируется
	if s.publisher != nil {
		err := s.publisher.PublishOrderStatusChanged(ctx, OrderStatusEvent{
			OrderID: orderID,
			Status:  string(status),
		})
		if err != nil {
			s.logger.Error("failed to publish order status event",
				zap.Error(err),
				zap.String("order_id", orderID),
			)
		}
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/metrics"
	"github.com/shestoi/linkmarket/internal/repository"
)

// Нормализованные типы событий платёжного процессора
// (маппинг из типов Stripe делает internal/payment/stripe)
const (
	// EventCheckoutCompleted - checkout-сессия завершена, оплата подтверждена
	EventCheckoutCompleted = "checkout.completed"
	// EventPaymentSucceeded - платёж прошёл (payment_intent.succeeded / charge.succeeded)
	EventPaymentSucceeded = "payment.succeeded"
	// EventPaymentFailed - платёж не прошёл
	EventPaymentFailed = "payment.failed"
)

// PaymentEvent - проверенное (подпись уже сверена) событие процессора,
// приведённое к доменному виду
type PaymentEvent struct {
	// ID события у процессора (для логов)
	ID string
	// Type - один из Event* constants; нераспознанные типы приходят как есть
	Type string
	// SessionID - correlation token события: для checkout.completed это ID
	// сессии, для payment.* - ID payment intent
	SessionID string
	// Amount - сумма в центах (заполнена для checkout.completed)
	Amount int64
	// Поля из metadata checkout-сессии
	OrderID   string
	UserID    string
	ProductID string
	Keywords  string
	TargetURL string
}

// ReconcilerService сводит асинхронные, возможно дублированные и приходящие
// не по порядку события процессора в durable состояние заказа.
// Единственный писатель существования заказа и payment_status.
//
// Каждое событие обрабатывается независимо и безопасно при повторной
// доставке: вставка заказа идёт через conflict-ignore по correlation token,
// обновления статуса - повторяемая запись того же значения.
type ReconcilerService struct {
	logger    *zap.Logger
	orders    repository.OrderRepository
	publisher EventPublisher
}

// NewReconcilerService создаёт новый ReconcilerService
// publisher может быть nil - тогда события в поток уведомлений не публикуются
func NewReconcilerService(logger *zap.Logger, orders repository.OrderRepository, publisher EventPublisher) *ReconcilerService {
	return &ReconcilerService{
		logger:    logger,
		orders:    orders,
		publisher: publisher,
	}
}

// HandleEvent диспетчеризует событие по типу.
// Ошибка означает "не подтверждать доставку": HTTP handler ответит 400 и
// процессор передоставит событие сам - внутренних retry здесь нет.
func (s *ReconcilerService) HandleEvent(ctx context.Context, event PaymentEvent) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case EventPaymentSucceeded:
		return s.setPaymentStatus(ctx, event, repository.PaymentCompleted)
	case EventPaymentFailed:
		return s.setPaymentStatus(ctx, event, repository.PaymentFailed)
	default:
		// Неизвестные типы подтверждаем: процессор может добавлять новые
		// события, на которые сервис пока не реагирует
		metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeIgnored).Inc()
		s.logger.Debug("ignoring webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		return nil
	}
}

// handleCheckoutCompleted материализует заказ по завершённой checkout-сессии
func (s *ReconcilerService) handleCheckoutCompleted(ctx context.Context, event PaymentEvent) error {
	// Путь повторной оплаты: заказ уже существует, metadata несёт его ID -
	// обновляем по ID, а не вставляем
	if event.OrderID != "" {
		if err := s.orders.MarkPaidByID(ctx, event.OrderID, event.SessionID); err != nil {
			metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeError).Inc()
			return fmt.Errorf("mark order %s paid: %w", event.OrderID, err)
		}
		metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeProcessed).Inc()
		s.logger.Info("existing order marked paid",
			zap.String("order_id", event.OrderID),
			zap.String("session_id", event.SessionID),
		)
		s.publishOrderPaid(ctx, event.OrderID, event)
		return nil
	}

	// Без user_id/product_id в metadata сверять не с чем - это битое событие
	// от процессора; возвращаем ошибку, чтобы он передоставил
	if event.UserID == "" || event.ProductID == "" {
		metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeError).Inc()
		return fmt.Errorf("event %s: missing user_id or product_id in session metadata", event.ID)
	}

	order := repository.Order{
		ID:              uuid.NewString(),
		UserID:          event.UserID,
		ProductID:       event.ProductID,
		Amount:          event.Amount,
		Status:          repository.OrderPending,
		PaymentStatus:   repository.PaymentCompleted,
		StripeSessionID: event.SessionID,
		Keywords:        event.Keywords,
		TargetURL:       event.TargetURL,
		CreatedAt:       time.Now(),
	}

	created, err := s.orders.CreateIfAbsent(ctx, order)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeError).Inc()
		return fmt.Errorf("create order for session %s: %w", event.SessionID, err)
	}
	if !created {
		// Повторная доставка: заказ для этого токена уже есть
		metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeDuplicate).Inc()
		s.logger.Info("duplicate checkout.completed delivery, order already exists",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.SessionID),
		)
		return nil
	}

	metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeProcessed).Inc()
	s.logger.Info("order created from checkout session",
		zap.String("order_id", order.ID),
		zap.String("session_id", event.SessionID),
		zap.String("user_id", event.UserID),
		zap.String("product_id", event.ProductID),
		zap.Int64("amount", event.Amount),
	)

	s.publishOrderPaid(ctx, order.ID, event)
	return nil
}

// setPaymentStatus обновляет payment_status заказов по correlation token.
// Отсутствие совпадений - не ошибка: событие могло прийти раньше
// checkout.completed или относиться к чужому потоку. Подтверждаем доставку,
// чтобы не устроить шторм передоставок.
func (s *ReconcilerService) setPaymentStatus(ctx context.Context, event PaymentEvent, status repository.PaymentStatus) error {
	matched, err := s.orders.SetPaymentStatusBySession(ctx, event.SessionID, status)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeError).Inc()
		return fmt.Errorf("set payment status for session %s: %w", event.SessionID, err)
	}
	if matched == 0 {
		metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeNoMatch).Inc()
		s.logger.Info("no order matches payment event, skipping",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("session_id", event.SessionID),
		)
		return nil
	}

	metrics.WebhookEvents.WithLabelValues(event.Type, metrics.OutcomeProcessed).Inc()
	s.logger.Info("payment status updated",
		zap.String("event_type", event.Type),
		zap.String("session_id", event.SessionID),
		zap.String("payment_status", string(status)),
		zap.Int64("matched", matched),
	)
	return nil
}

// publishOrderPaid отправляет событие оплаты в поток уведомлений.
// Best effort: заказ уже записан, ack процессору важнее доставки
// уведомления, поэтому ошибка публикации только логируется.
func (s *ReconcilerService) publishOrderPaid(ctx context.Context, orderID string, event PaymentEvent) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishOrderPaid(ctx, OrderPaidEvent{
		OrderID:   orderID,
		UserID:    event.UserID,
		ProductID: event.ProductID,
		Amount:    event.Amount,
	})
	if err != nil {
		s.logger.Error("failed to publish order paid event",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
	}
}

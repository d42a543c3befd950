package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/service"
)

// OrderEventPublisher реализует service.EventPublisher используя Kafka
// Публикация всегда best effort: заказ к этому моменту уже durable в Postgres,
// потеря события не должна ломать обработку вебхука
type OrderEventPublisher struct {
	logger *zap.Logger
	writer *kafka.Writer
	topic  string
}

// NewOrderEventPublisher создаёт новый Kafka publisher для событий заказа
func NewOrderEventPublisher(logger *zap.Logger, brokers []string, topic string) *OrderEventPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &OrderEventPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Close закрывает Kafka writer
func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

// PublishOrderPaid публикует событие успешной оплаты заказа в Kafka
func (p *OrderEventPublisher) PublishOrderPaid(ctx context.Context, event service.OrderPaidEvent) error {
	payload := map[string]interface{}{
		"event_id":      uuid.New().String(),
		"event_type":    "order.payment.completed",
		"event_version": 1,
		"occurred_at":   time.Now().UTC().Format(time.RFC3339),
		"order_id":      event.OrderID,
		"user_id":       event.UserID,
		"product_id":    event.ProductID,
		"amount":        event.Amount,
	}

	if err := p.publish(ctx, event.OrderID, payload); err != nil {
		p.logger.Error("failed to publish order paid event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("order_id", event.OrderID),
			zap.String("user_id", event.UserID),
		)
		return err
	}

	p.logger.Info("order paid event published",
		zap.String("topic", p.topic),
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Int64("amount", event.Amount),
	)

	return nil
}

// PublishOrderStatusChanged публикует событие смены fulfillment статуса заказа
func (p *OrderEventPublisher) PublishOrderStatusChanged(ctx context.Context, event service.OrderStatusEvent) error {
	payload := map[string]interface{}{
		"event_id":      uuid.New().String(),
		"event_type":    "order.status.changed",
		"event_version": 1,
		"occurred_at":   time.Now().UTC().Format(time.RFC3339),
		"order_id":      event.OrderID,
		"status":        event.Status,
	}

	if err := p.publish(ctx, event.OrderID, payload); err != nil {
		p.logger.Error("failed to publish order status event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status),
		)
		return err
	}

	p.logger.Info("order status event published",
		zap.String("topic", p.topic),
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
	)

	return nil
}

// publish сериализует payload и отправляет сообщение в Kafka
// Ключ сообщения - ID заказа, чтобы события одного заказа попадали
// в одну партицию и сохраняли порядок
func (p *OrderEventPublisher) publish(ctx context.Context, orderID string, payload map[string]interface{}) error {
	valueBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(orderID),
		Value: valueBytes,
	}

	return p.writer.WriteMessages(ctx, message)
}

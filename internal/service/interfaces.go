package service

import "context"

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentProvider --dir=. --output=./mocks --outpkg=mocks

// PaymentProvider определяет интерфейс для работы с платёжным процессором
// Использует доменные типы вместо типов SDK - это делает service независимым
// от конкретного процессора (реализация - internal/payment/stripe)
type PaymentProvider interface {
	// CreateCheckoutSession открывает hosted checkout-сессию у процессора
	// и возвращает её идентификатор и redirect URL
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (CheckoutSession, error)

	// ListPaymentMethods возвращает сохранённые карты покупателя
	// Покупатель резолвится у процессора по email; нет клиента - пустой список
	ListPaymentMethods(ctx context.Context, email string) ([]PaymentMethod, error)

	// DetachPaymentMethod отвязывает сохранённую карту
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
}

// CheckoutSessionParams - параметры открываемой checkout-сессии.
// Поля BuyerID/ProductID/OrderID/Keywords/TargetURL уходят в metadata сессии:
// metadata - единственный канал, по которому асинхронный реконсилятор узнаёт,
// кто и за что платил.
type CheckoutSessionParams struct {
	ProductID    string
	ProductTitle string
	Amount       int64 // в центах
	BuyerID      string
	BuyerEmail   string
	// OrderID заполнен только при повторной оплате уже созданного заказа
	OrderID   string
	Keywords  string
	TargetURL string
}

// CheckoutSession - открытая у процессора сессия
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentMethod - сохранённая карта покупателя
type PaymentMethod struct {
	ID       string
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=EventPublisher --dir=. --output=./mocks --outpkg=mocks

// EventPublisher определяет интерфейс публикации событий жизненного цикла
// заказа в поток уведомлений (Kafka), на который подписаны другие потребители
type EventPublisher interface {
	// PublishOrderPaid публикует событие успешной оплаты заказа
	PublishOrderPaid(ctx context.Context, event OrderPaidEvent) error

	// PublishOrderStatusChanged публикует событие смены fulfillment статуса
	PublishOrderStatusChanged(ctx context.Context, event OrderStatusEvent) error
}

// OrderPaidEvent - событие успешной оплаты заказа
type OrderPaidEvent struct {
	OrderID   string
	UserID    string
	ProductID string
	Amount    int64
}

// OrderStatusEvent - событие смены fulfillment статуса заказа
type OrderStatusEvent struct {
	OrderID string
	Status  string
}

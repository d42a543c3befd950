package repository

import (
	"context"
	"errors"
	"time"
)

// PaymentStatus представляет платёжный жизненный цикл заказа
// Меняется только реконсилятором вебхуков, монотонно: pending -> completed | failed
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// OrderStatus представляет fulfillment жизненный цикл заказа
// Меняется только бэк-офисом: pending -> processing -> completed | cancelled
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Order представляет доменную модель заказа
// Это бизнес-сущность, не привязанная к HTTP или БД
type Order struct {
	ID            string
	UserID        string
	ProductID     string
	Amount        int64 // сумма в центах
	Status        OrderStatus
	PaymentStatus PaymentStatus
	// StripeSessionID - correlation token: идентификатор checkout-сессии,
	// по которому реконсилятор сопоставляет события процессора с заказом.
	// На него наложен уникальный индекс в БД - не больше одного заказа на токен.
	StripeSessionID string
	// Keywords и TargetURL - параметры размещения ссылки, заданные покупателем
	Keywords      string
	TargetURL     string
	AttachmentURL string
	CreatedAt     time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderRepository --dir=. --output=./mocks --outpkg=mocks

// OrderRepository определяет интерфейс для работы с хранилищем заказов
// Service слой зависит от этого интерфейса, а не от конкретной реализации
type OrderRepository interface {
	// CreateIfAbsent вставляет заказ, если заказа с таким StripeSessionID ещё нет.
	// Возвращает false без ошибки, если заказ для этого токена уже существует
	// (повторная доставка события процессором)
	CreateIfAbsent(ctx context.Context, order Order) (bool, error)

	// GetByID получает заказ по ID
	// Возвращает ErrNotFound, если заказ не найден
	GetByID(ctx context.Context, id string) (Order, error)

	// AttachSession записывает session token на существующий заказ
	// (повторная попытка оплаты уже созданного заказа)
	AttachSession(ctx context.Context, orderID, sessionID string) error

	// MarkPaidByID помечает заказ оплаченным и записывает session token
	// (путь через order_id в metadata сессии)
	MarkPaidByID(ctx context.Context, orderID, sessionID string) error

	// SetPaymentStatusBySession обновляет payment_status всех заказов
	// с данным correlation token. Возвращает число затронутых заказов;
	// ноль - валидный результат (заказа для токена может не быть)
	SetPaymentStatusBySession(ctx context.Context, sessionID string, status PaymentStatus) (int64, error)

	// ListByUser возвращает заказы покупателя, новые первыми
	ListByUser(ctx context.Context, userID string) ([]Order, error)

	// List возвращает все заказы (бэк-офис), новые первыми
	List(ctx context.Context) ([]Order, error)

	// UpdateStatus обновляет fulfillment статус заказа (бэк-офис)
	UpdateStatus(ctx context.Context, orderID string, status OrderStatus) error
}

// ErrNotFound возвращается, когда сущность не найдена в хранилище
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists возвращается при нарушении уникальности
var ErrAlreadyExists = errors.New("already exists")

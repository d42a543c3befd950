package service

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/metrics"
	"github.com/shestoi/linkmarket/internal/repository"
)

// CheckoutService открывает checkout-сессии у платёжного процессора.
// Заказ здесь НЕ создаётся: durable запись появляется только когда
// реконсилятор увидит подтверждение оплаты (см. ReconcilerService).
// Так брошенные корзины не оставляют вечно-pending заказов.
type CheckoutService struct {
	logger   *zap.Logger
	products repository.ProductRepository
	orders   repository.OrderRepository
	provider PaymentProvider
}

// NewCheckoutService создаёт новый CheckoutService
func NewCheckoutService(
	logger *zap.Logger,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	provider PaymentProvider,
) *CheckoutService {
	return &CheckoutService{
		logger:   logger,
		products: products,
		orders:   orders,
		provider: provider,
	}
}

// CreateSessionInput содержит входные данные для открытия checkout-сессии
type CreateSessionInput struct {
	ProductID string
	// OrderID задаётся при повторной попытке оплаты существующего заказа
	OrderID    string
	Price      float64 // в валюте, не в центах (как приходит от клиента)
	BuyerID    string
	BuyerEmail string
	Keywords   string
	TargetURL  string
}

// CreateSessionOutput содержит redirect URL hosted-страницы оплаты
type CreateSessionOutput struct {
	URL string
}

// CreateSession валидирует вход, открывает сессию у процессора и возвращает
// redirect URL. Вся валидация - до обращения к процессору.
// Retry при недоступности процессора не делается: покупатель просто нажмёт
// "оплатить" ещё раз.
func (s *CheckoutService) CreateSession(ctx context.Context, input CreateSessionInput) (*CreateSessionOutput, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	if input.Price <= 0 {
		return nil, fmt.Errorf("price must be greater than 0")
	}
	if input.BuyerID == "" || input.BuyerEmail == "" {
		return nil, fmt.Errorf("buyer identity is required")
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("product %s not found", input.ProductID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	// Сумма берётся из каталога, а не из запроса: цена в запросе - только
	// sanity check против рассинхронизации витрины
	amount := product.Price
	if amount <= 0 {
		amount = int64(math.Round(input.Price * 100))
	}

	// Повторная оплата существующего заказа: проверяем, что заказ есть
	// и принадлежит покупателю
	if input.OrderID != "" {
		order, err := s.orders.GetByID(ctx, input.OrderID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, fmt.Errorf("order %s not found", input.OrderID)
			}
			return nil, fmt.Errorf("failed to load order: %w", err)
		}
		if order.UserID != input.BuyerID {
			return nil, ErrForbidden
		}
	}

	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutSessionParams{
		ProductID:    input.ProductID,
		ProductTitle: product.Title,
		Amount:       amount,
		BuyerID:      input.BuyerID,
		BuyerEmail:   input.BuyerEmail,
		OrderID:      input.OrderID,
		Keywords:     input.Keywords,
		TargetURL:    input.TargetURL,
	})
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("failed").Inc()
		s.logger.Error("failed to create checkout session",
			zap.Error(err),
			zap.String("product_id", input.ProductID),
			zap.String("user_id", input.BuyerID),
		)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	// Токен сессии привязывается к уже существующему заказу по его ID:
	// correlation token появился только что, поэтому update идёт по order id
	if input.OrderID != "" {
		if err := s.orders.AttachSession(ctx, input.OrderID, session.ID); err != nil {
			s.logger.Error("failed to attach session to order",
				zap.Error(err),
				zap.String("order_id", input.OrderID),
				zap.String("session_id", session.ID),
			)
			return nil, fmt.Errorf("failed to attach session to order: %w", err)
		}
	}

	metrics.CheckoutSessions.WithLabelValues("created").Inc()
	s.logger.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("product_id", input.ProductID),
		zap.String("user_id", input.BuyerID),
		zap.Int64("amount", amount),
	)

	return &CreateSessionOutput{URL: session.URL}, nil
}

// ListPaymentMethods возвращает сохранённые карты покупателя
func (s *CheckoutService) ListPaymentMethods(ctx context.Context, email string) ([]PaymentMethod, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	return s.provider.ListPaymentMethods(ctx, email)
}

// DetachPaymentMethod отвязывает сохранённую карту
func (s *CheckoutService) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	if paymentMethodID == "" {
		return fmt.Errorf("payment_method_id is required")
	}
	return s.provider.DetachPaymentMethod(ctx, paymentMethodID)
}

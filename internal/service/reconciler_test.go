package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository"
	repoMocks "github.com/shestoi/linkmarket/internal/repository/mocks"
	"github.com/shestoi/linkmarket/internal/service"
	"github.com/shestoi/linkmarket/internal/service/mocks"
)

func TestReconcilerService_CheckoutCompleted_CreatesOrder(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)
	mockPublisher := mocks.NewEventPublisher(t)

	mockOrders.On("CreateIfAbsent", ctx, mock.MatchedBy(func(o repository.Order) bool {
		return o.UserID == "user-1" &&
			o.ProductID == "product-1" &&
			o.Amount == int64(15000) &&
			o.Status == repository.OrderPending &&
			o.PaymentStatus == repository.PaymentCompleted &&
			o.StripeSessionID == "cs_test_123" &&
			o.ID != ""
	})).Return(true, nil).Once()
	mockPublisher.On("PublishOrderPaid", ctx, mock.MatchedBy(func(e service.OrderPaidEvent) bool {
		return e.UserID == "user-1" && e.ProductID == "product-1" && e.Amount == int64(15000)
	})).Return(nil).Once()

	svc := service.NewReconcilerService(zap.NewNop(), mockOrders, mockPublisher)

	err := svc.HandleEvent(ctx, service.PaymentEvent{
		ID:        "evt-1",
		Type:      service.EventCheckoutCompleted,
		SessionID: "cs_test_123",
		Amount:    15000,
		UserID:    "user-1",
		ProductID: "product-1",
	})
	require.NoError(t, err)
}

func TestReconcilerService_CheckoutCompleted_DuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)
	mockPublisher := mocks.NewEventPublisher(t)

	// Заказ для этого токена уже существует - вставка схлопывается,
	// публикации и ошибки нет
	mockOrders.On("CreateIfAbsent", ctx, mock.Anything).Return(false, nil).Once()

	svc := service.NewReconcilerService(zap.NewNop(), mockOrders, mockPublisher)

	err := svc.HandleEvent(ctx, service.PaymentEvent{
		ID:        "evt-2",
		Type:      service.EventCheckoutCompleted,
		SessionID: "cs_test_123",
		Amount:    15000,
		UserID:    "user-1",
		ProductID: "product-1",
	})
	require.NoError(t, err)
	mockPublisher.AssertNotCalled(t, "PublishOrderPaid", mock.Anything, mock.Anything)
}

func TestReconcilerService_CheckoutCompleted_RetryPathUpdatesByID(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)
	mockPublisher := mocks.NewEventPublisher(t)

	// metadata несёт order_id - заказ существует, обновляем по ID, не вставляем
	mockOrders.On("MarkPaidByID", ctx, "order-42", "cs_retry_1").Return(nil).Once()
	mockPublisher.On("PublishOrderPaid", ctx, mock.Anything).Return(nil).Once()

	svc := service.NewReconcilerService(zap.NewNop(), mockOrders, mockPublisher)

	err := svc.HandleEvent(ctx, service.PaymentEvent{
		ID:        "evt-3",
		Type:      service.EventCheckoutCompleted,
		SessionID: "cs_retry_1",
		OrderID:   "order-42",
		UserID:    "user-1",
		ProductID: "product-1",
	})
	require.NoError(t, err)
	mockOrders.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestReconcilerService_CheckoutCompleted_MissingMetadata(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)

	svc := service.NewReconcilerService(zap.NewNop(), mockOrders, nil)

	err := svc.HandleEvent(ctx, service.PaymentEvent{
		ID:        "evt-4",
		Type:      service.EventCheckoutCompleted,
		SessionID: "cs_test_456",
		// user_id / product_id отсутствуют
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing user_id or product_id")
	mockOrders.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestReconcilerService_PaymentEvents(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		eventType      string
		expectedStatus repository.PaymentStatus
		matched        int64
		repoError      error
		expectedError  bool
	}{
		{
			name:           "payment.succeeded updates matching order",
			eventType:      service.EventPaymentSucceeded,
			expectedStatus: repository.PaymentCompleted,
			matched:        1,
		},
		{
			name:           "payment.failed updates matching order",
			eventType:      service.EventPaymentFailed,
			expectedStatus: repository.PaymentFailed,
			matched:        1,
		},
		{
			name:           "zero matches is acked as no-op",
			eventType:      service.EventPaymentSucceeded,
			expectedStatus: repository.PaymentCompleted,
			matched:        0,
		},
		{
			name:           "store error is not acked",
			eventType:      service.EventPaymentFailed,
			expectedStatus: repository.PaymentFailed,
			repoError:      errors.New("connection refused"),
			expectedError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOrders := repoMocks.NewOrderRepository(t)
			mockOrders.On("SetPaymentStatusBySession", ctx, "pi_test_1", tt.expectedStatus).
				Return(tt.matched, tt.repoError).Once()

			svc := service.NewReconcilerService(zap.NewNop(), mockOrders, nil)

			err := svc.HandleEvent(ctx, service.PaymentEvent{
				ID:        "evt-5",
				Type:      tt.eventType,
				SessionID: "pi_test_1",
			})
			if tt.expectedError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestReconcilerService_UnknownEventType_Acked(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)

	svc := service.NewReconcilerService(zap.NewNop(), mockOrders, nil)

	err := svc.HandleEvent(ctx, service.PaymentEvent{
		ID:   "evt-6",
		Type: "customer.subscription.updated",
	})
	require.NoError(t, err)
	// Хранилище не трогается
	mockOrders.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	mockOrders.AssertNotCalled(t, "SetPaymentStatusBySession", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilerService_PublisherFailureDoesNotFailAck(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)
	mockPublisher := mocks.NewEventPublisher(t)

	mockOrders.On("CreateIfAbsent", ctx, mock.Anything).Return(true, nil).Once()
	// Заказ уже durable - ошибка публикации не должна заставить процессор
	// передоставлять событие
	mockPublisher.On("PublishOrderPaid", ctx, mock.Anything).
		Return(errors.New("broker unavailable")).Once()

	svc := service.NewReconcilerService(zap.NewNop(), mockOrders, mockPublisher)

	err := svc.HandleEvent(ctx, service.PaymentEvent{
		ID:        "evt-7",
		Type:      service.EventCheckoutCompleted,
		SessionID: "cs_test_789",
		Amount:    5000,
		UserID:    "user-1",
		ProductID: "product-1",
	})
	require.NoError(t, err)
}

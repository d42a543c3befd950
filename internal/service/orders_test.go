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

func TestOrderService_Get_AccessControl(t *testing.T) {
	ctx := context.Background()
	order := repository.Order{ID: "order-1", UserID: "user-1"}

	tests := []struct {
		name        string
		requester   repository.User
		expectedErr error
	}{
		{
			name:      "owner can read own order",
			requester: repository.User{ID: "user-1"},
		},
		{
			name:        "stranger gets forbidden",
			requester:   repository.User{ID: "user-2"},
			expectedErr: service.ErrForbidden,
		},
		{
			name:      "admin can read any order",
			requester: repository.User{ID: "user-2", IsAdmin: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOrders := repoMocks.NewOrderRepository(t)
			mockOrders.On("GetByID", ctx, "order-1").Return(order, nil).Once()

			svc := service.NewOrderService(zap.NewNop(), mockOrders, nil)

			got, err := svc.Get(ctx, "order-1", tt.requester)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "order-1", got.ID)
		})
	}
}

func TestOrderService_UpdateStatus_Transitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    repository.OrderStatus
		to      repository.OrderStatus
		allowed bool
	}{
		{"pending to processing", repository.OrderPending, repository.OrderProcessing, true},
		{"pending to cancelled", repository.OrderPending, repository.OrderCancelled, true},
		{"processing to completed", repository.OrderProcessing, repository.OrderCompleted, true},
		{"processing to cancelled", repository.OrderProcessing, repository.OrderCancelled, true},
		{"pending to completed skips processing", repository.OrderPending, repository.OrderCompleted, false},
		{"completed is terminal", repository.OrderCompleted, repository.OrderProcessing, false},
		{"cancelled is terminal", repository.OrderCancelled, repository.OrderProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOrders := repoMocks.NewOrderRepository(t)
			mockOrders.On("GetByID", ctx, "order-1").
				Return(repository.Order{ID: "order-1", Status: tt.from}, nil).Once()
			if tt.allowed {
				mockOrders.On("UpdateStatus", ctx, "order-1", tt.to).Return(nil).Once()
			}

			svc := service.NewOrderService(zap.NewNop(), mockOrders, nil)

			err := svc.UpdateStatus(ctx, "order-1", tt.to)
			if tt.allowed {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid status transition")
				mockOrders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderService_UpdateStatus_PublishesEvent(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)
	mockPublisher := mocks.NewEventPublisher(t)

	mockOrders.On("GetByID", ctx, "order-1").
		Return(repository.Order{ID: "order-1", Status: repository.OrderPending}, nil).Once()
	mockOrders.On("UpdateStatus", ctx, "order-1", repository.OrderProcessing).Return(nil).Once()
	mockPublisher.On("PublishOrderStatusChanged", ctx, service.OrderStatusEvent{
		OrderID: "order-1",
		Status:  "processing",
	}).Return(nil).Once()

	svc := service.NewOrderService(zap.NewNop(), mockOrders, mockPublisher)

	require.NoError(t, svc.UpdateStatus(ctx, "order-1", repository.OrderProcessing))
}

func TestOrderService_UpdateStatus_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	mockOrders := repoMocks.NewOrderRepository(t)
	mockPublisher := mocks.NewEventPublisher(t)

	mockOrders.On("GetByID", ctx, "order-1").
		Return(repository.Order{ID: "order-1", Status: repository.OrderPending}, nil).Once()
	mockOrders.On("UpdateStatus", ctx, "order-1", repository.OrderProcessing).Return(nil).Once()
	// Статус уже записан - ошибка публикации только логируется
	mockPublisher.On("PublishOrderStatusChanged", ctx, mock.Anything).
		Return(errors.New("broker unavailable")).Once()

	svc := service.NewOrderService(zap.NewNop(), mockOrders, mockPublisher)

	require.NoError(t, svc.UpdateStatus(ctx, "order-1", repository.OrderProcessing))
}

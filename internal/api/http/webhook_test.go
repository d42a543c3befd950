package httpapi_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpapi "github.com/shestoi/linkmarket/internal/api/http"
	stripeprovider "github.com/shestoi/linkmarket/internal/payment/stripe"
	"github.com/shestoi/linkmarket/internal/repository"
	"github.com/shestoi/linkmarket/internal/repository/memory"
	"github.com/shestoi/linkmarket/internal/service"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// newWebhookHandler собирает webhook-ручку поверх реальной проверки подписи
// и in-memory хранилища заказов
func newWebhookHandler(t *testing.T) (*httpapi.Handler, *memory.OrderRepository) {
	t.Helper()

	orders := memory.NewOrderRepository()
	reconciler := service.NewReconcilerService(zap.NewNop(), orders, nil)
	verifier := stripeprovider.NewProvider(zap.NewNop(), stripeprovider.Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
	})

	handler := httpapi.NewHandler(zap.NewNop(), nil, nil, nil, reconciler, nil, nil, nil, verifier)
	return handler, orders
}

func postWebhook(handler *httpapi.Handler, payload []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	rec := httptest.NewRecorder()
	handler.PostStripeWebhook(rec, req)
	return rec
}

func checkoutCompletedPayload(sessionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "%s",
				"amount_total": 15000,
				"metadata": {
					"user_id": "user-1",
					"product_id": "product-1"
				}
			}
		}
	}`, sessionID))
}

func TestPostStripeWebhook_MaterializesOrder(t *testing.T) {
	handler, orders := newWebhookHandler(t)

	payload := checkoutCompletedPayload("cs_test_1")
	rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received": true}`, rec.Body.String())

	list, err := orders.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "product-1", list[0].ProductID)
	require.Equal(t, int64(15000), list[0].Amount)
	require.Equal(t, repository.PaymentCompleted, list[0].PaymentStatus)
	require.Equal(t, repository.OrderPending, list[0].Status)
	require.Equal(t, "cs_test_1", list[0].StripeSessionID)
}

func TestPostStripeWebhook_DuplicateDeliveryCreatesOneOrder(t *testing.T) {
	handler, orders := newWebhookHandler(t)

	payload := checkoutCompletedPayload("cs_test_1")

	for i := 0; i < 3; i++ {
		rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	list, err := orders.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestPostStripeWebhook_InvalidSignature(t *testing.T) {
	handler, orders := newWebhookHandler(t)

	payload := checkoutCompletedPayload("cs_test_1")
	rec := postWebhook(handler, payload, signPayload(payload, "whsec_wrong"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid signature")

	// Хранилище не тронуто
	list, err := orders.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPostStripeWebhook_PaymentEventWithoutOrderIsAcked(t *testing.T) {
	handler, _ := newWebhookHandler(t)

	payload := []byte(`{
		"id": "evt_2",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_unmatched"}}
	}`)
	rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))

	// Нет заказа с таким токеном - no-op, но доставка подтверждается
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostStripeWebhook_PaymentFailedUpdatesOrder(t *testing.T) {
	handler, orders := newWebhookHandler(t)

	// Сначала материализуем заказ из checkout.session.completed
	payload := checkoutCompletedPayload("cs_test_1")
	rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)

	// Затем payment событие с тем же correlation token
	failed := []byte(`{
		"id": "evt_3",
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": "cs_test_1"}}
	}`)
	rec = postWebhook(handler, failed, signPayload(failed, testWebhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)

	list, err := orders.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, repository.PaymentFailed, list[0].PaymentStatus)
}

func TestPostStripeWebhook_UnknownEventTypeAcked(t *testing.T) {
	handler, _ := newWebhookHandler(t)

	payload := []byte(`{
		"id": "evt_4",
		"type": "customer.subscription.updated",
		"data": {"object": {}}
	}`)
	rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, rec.Code)
}

package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/service"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload строит заголовок Stripe-Signature так же, как это делает Stripe:
// HMAC-SHA256 от "<timestamp>.<payload>" ключом подписи
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func testProvider() *Provider {
	return NewProvider(zap.NewNop(), Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
	})
}

func TestVerifyEvent_CheckoutSessionCompleted(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_123",
				"amount_total": 15000,
				"metadata": {
					"user_id": "user-1",
					"product_id": "product-1",
					"keywords": "link building",
					"target_url": "https://buyer.example.com"
				}
			}
		}
	}`)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	event, err := testProvider().VerifyEvent(payload, sig)
	require.NoError(t, err)
	require.Equal(t, service.EventCheckoutCompleted, event.Type)
	require.Equal(t, "evt_1", event.ID)
	require.Equal(t, "cs_test_123", event.SessionID)
	require.Equal(t, int64(15000), event.Amount)
	require.Equal(t, "user-1", event.UserID)
	require.Equal(t, "product-1", event.ProductID)
	require.Equal(t, "link building", event.Keywords)
	require.Equal(t, "https://buyer.example.com", event.TargetURL)
}

func TestVerifyEvent_CheckoutSessionCompleted_OrderIDMetadata(t *testing.T) {
	payload := []byte(`{
		"id": "evt_2",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_retry_1",
				"metadata": {
					"user_id": "user-1",
					"product_id": "product-1",
					"order_id": "order-42"
				}
			}
		}
	}`)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	event, err := testProvider().VerifyEvent(payload, sig)
	require.NoError(t, err)
	require.Equal(t, "order-42", event.OrderID)
}

func TestVerifyEvent_PaymentIntentEvents(t *testing.T) {
	tests := []struct {
		name         string
		stripeType   string
		expectedType string
	}{
		{"payment_intent.succeeded", "payment_intent.succeeded", service.EventPaymentSucceeded},
		{"payment_intent.payment_failed", "payment_intent.payment_failed", service.EventPaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(fmt.Sprintf(`{
				"id": "evt_3",
				"type": "%s",
				"data": {"object": {"id": "pi_test_1"}}
			}`, tt.stripeType))
			sig := signPayload(payload, testWebhookSecret, time.Now())

			event, err := testProvider().VerifyEvent(payload, sig)
			require.NoError(t, err)
			require.Equal(t, tt.expectedType, event.Type)
			require.Equal(t, "pi_test_1", event.SessionID)
		})
	}
}

func TestVerifyEvent_ChargeCorrelatesViaPaymentIntent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_4",
		"type": "charge.succeeded",
		"data": {
			"object": {
				"id": "ch_test_1",
				"payment_intent": "pi_test_1"
			}
		}
	}`)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	event, err := testProvider().VerifyEvent(payload, sig)
	require.NoError(t, err)
	require.Equal(t, service.EventPaymentSucceeded, event.Type)
	require.Equal(t, "pi_test_1", event.SessionID)
}

func TestVerifyEvent_UnknownTypePassedThrough(t *testing.T) {
	payload := []byte(`{
		"id": "evt_5",
		"type": "customer.subscription.updated",
		"data": {"object": {}}
	}`)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	event, err := testProvider().VerifyEvent(payload, sig)
	require.NoError(t, err)
	require.Equal(t, "customer.subscription.updated", event.Type)
	require.Empty(t, event.SessionID)
}

func TestVerifyEvent_InvalidSignature(t *testing.T) {
	payload := []byte(`{"id": "evt_6", "type": "checkout.session.completed", "data": {"object": {}}}`)

	tests := []struct {
		name string
		sig  string
	}{
		{"wrong secret", signPayload(payload, "whsec_wrong", time.Now())},
		{"stale timestamp", signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))},
		{"garbage header", "t=abc,v1=deadbeef"},
		{"empty header", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testProvider().VerifyEvent(payload, tt.sig)
			require.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestVerifyEvent_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id": "evt_7", "type": "checkout.session.completed", "data": {"object": {"amount_total": 100}}}`)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	tampered := []byte(`{"id": "evt_7", "type": "checkout.session.completed", "data": {"object": {"amount_total": 1}}}`)
	_, err := testProvider().VerifyEvent(tampered, sig)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

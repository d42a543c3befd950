package stripe

import (
	"encoding/json"
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/shestoi/linkmarket/internal/service"
)

// ErrInvalidSignature возвращается, когда подпись вебхука не сходится
// с ключом подписи или тело события не разбирается
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifyEvent проверяет подпись сырого тела вебхука и приводит событие
// Stripe к доменному service.PaymentEvent.
// Проверка подписи - единственное место, где событие может быть отвергнуто
// до обращения к хранилищу.
func (p *Provider) VerifyEvent(payload []byte, sigHeader string) (service.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return service.PaymentEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := service.PaymentEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripeapi.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return service.PaymentEvent{}, fmt.Errorf("parse checkout session: %w", err)
		}
		out.Type = service.EventCheckoutCompleted
		out.SessionID = cs.ID
		out.Amount = cs.AmountTotal
		out.OrderID = cs.Metadata[metadataOrderID]
		out.UserID = cs.Metadata[metadataUserID]
		out.ProductID = cs.Metadata[metadataProductID]
		out.Keywords = cs.Metadata[metadataKeywords]
		out.TargetURL = cs.Metadata[metadataTargetURL]

	case "payment_intent.succeeded":
		pi, err := parsePaymentIntent(event.Data.Raw)
		if err != nil {
			return service.PaymentEvent{}, err
		}
		out.Type = service.EventPaymentSucceeded
		out.SessionID = pi.ID

	case "charge.succeeded":
		var ch stripeapi.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return service.PaymentEvent{}, fmt.Errorf("parse charge: %w", err)
		}
		out.Type = service.EventPaymentSucceeded
		// Корреляция charge идёт через его payment intent
		if ch.PaymentIntent != nil {
			out.SessionID = ch.PaymentIntent.ID
		} else {
			out.SessionID = ch.ID
		}

	case "payment_intent.payment_failed":
		pi, err := parsePaymentIntent(event.Data.Raw)
		if err != nil {
			return service.PaymentEvent{}, err
		}
		out.Type = service.EventPaymentFailed
		out.SessionID = pi.ID
	}

	// Нераспознанные типы уходят в реконсилятор как есть - он подтвердит
	// их как no-op
	return out, nil
}

func parsePaymentIntent(raw json.RawMessage) (stripeapi.PaymentIntent, error) {
	var pi stripeapi.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return stripeapi.PaymentIntent{}, fmt.Errorf("parse payment intent: %w", err)
	}
	return pi, nil
}

// Package stripe реализует service.PaymentProvider поверх Stripe API:
// checkout-сессии, сохранённые карты и проверку подписи вебхуков.
package stripe

import (
	"context"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/service"
)

// Ключи metadata checkout-сессии - контракт между Initiator и реконсилятором
const (
	metadataUserID    = "user_id"
	metadataProductID = "product_id"
	metadataOrderID   = "order_id"
	metadataKeywords  = "keywords"
	metadataTargetURL = "target_url"
)

// Config содержит параметры подключения к Stripe
// Все значения инжектируются при создании Provider - из process env
// ничего не читается (см. internal/config)
type Config struct {
	// SecretKey - секретный API ключ (sk_...)
	SecretKey string
	// WebhookSecret - ключ подписи вебхуков (whsec_...)
	WebhookSecret string
	// SuccessURL / CancelURL - куда hosted-страница вернёт покупателя.
	// Сам по себе redirect заказ не создаёт и не финализирует - это только UX
	SuccessURL string
	CancelURL  string
}

// Provider реализует service.PaymentProvider используя Stripe SDK
type Provider struct {
	logger        *zap.Logger
	sc            *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewProvider создаёт новый Stripe provider
func NewProvider(logger *zap.Logger, cfg Config) *Provider {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return &Provider{
		logger:        logger,
		sc:            sc,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCheckoutSession открывает hosted checkout-сессию
// Контекст покупки уходит в metadata - оттуда его прочитает реконсилятор
func (p *Provider) CreateCheckoutSession(ctx context.Context, in service.CheckoutSessionParams) (service.CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{
		Mode:          stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:    stripeapi.String(p.successURL),
		CancelURL:     stripeapi.String(p.cancelURL),
		CustomerEmail: stripeapi.String(in.BuyerEmail),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Quantity: stripeapi.Int64(1),
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(string(stripeapi.CurrencyUSD)),
					UnitAmount: stripeapi.Int64(in.Amount),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(in.ProductTitle),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, in.BuyerID)
	params.AddMetadata(metadataProductID, in.ProductID)
	if in.OrderID != "" {
		params.AddMetadata(metadataOrderID, in.OrderID)
	}
	if in.Keywords != "" {
		params.AddMetadata(metadataKeywords, in.Keywords)
	}
	if in.TargetURL != "" {
		params.AddMetadata(metadataTargetURL, in.TargetURL)
	}

	sess, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return service.CheckoutSession{}, fmt.Errorf("stripe checkout session: %w", err)
	}

	return service.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ListPaymentMethods возвращает сохранённые карты покупателя
// Клиент Stripe резолвится по email; если клиента нет - пустой список
func (p *Provider) ListPaymentMethods(ctx context.Context, email string) ([]service.PaymentMethod, error) {
	custParams := &stripeapi.CustomerListParams{
		Email: stripeapi.String(email),
	}
	custParams.Context = ctx
	custIter := p.sc.Customers.List(custParams)

	var customerID string
	if custIter.Next() {
		customerID = custIter.Customer().ID
	}
	if err := custIter.Err(); err != nil {
		return nil, fmt.Errorf("stripe customers list: %w", err)
	}
	if customerID == "" {
		return []service.PaymentMethod{}, nil
	}

	pmParams := &stripeapi.PaymentMethodListParams{
		Customer: stripeapi.String(customerID),
		Type:     stripeapi.String(string(stripeapi.PaymentMethodTypeCard)),
	}
	pmParams.Context = ctx
	pmIter := p.sc.PaymentMethods.List(pmParams)

	methods := make([]service.PaymentMethod, 0)
	for pmIter.Next() {
		pm := pmIter.PaymentMethod()
		method := service.PaymentMethod{ID: pm.ID}
		if pm.Card != nil {
			method.Brand = string(pm.Card.Brand)
			method.Last4 = pm.Card.Last4
			method.ExpMonth = pm.Card.ExpMonth
			method.ExpYear = pm.Card.ExpYear
		}
		methods = append(methods, method)
	}
	if err := pmIter.Err(); err != nil {
		return nil, fmt.Errorf("stripe payment methods list: %w", err)
	}

	return methods, nil
}

// DetachPaymentMethod отвязывает сохранённую карту
func (p *Provider) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	params := &stripeapi.PaymentMethodDetachParams{}
	params.Context = ctx
	if _, err := p.sc.PaymentMethods.Detach(paymentMethodID, params); err != nil {
		return fmt.Errorf("stripe payment method detach: %w", err)
	}
	return nil
}

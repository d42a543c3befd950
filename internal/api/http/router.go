package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/api/http/middleware"
	platformhealth "github.com/shestoi/linkmarket/platform/health/http"
	platformobservability "github.com/shestoi/linkmarket/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер Storefront Service
// readiness - функция для проверки готовности сервиса (например, проверка БД).
// Если readiness возвращает false, health endpoint вернёт 503 Service Unavailable.
func NewRouter(handler *Handler, authn *middleware.Authenticator, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("storefront", logger))
	}

	// Публичные ручки
	router.Post("/auth/register", handler.PostRegister)
	router.Post("/auth/login", handler.PostLogin)

	// Вебхук процессора: аутентификация - подпись в Stripe-Signature,
	// bearer токенов здесь нет
	router.Post("/webhooks/stripe", handler.PostStripeWebhook)

	// Каталог: публичный, но аутентифицированный бэк-офис видит больше
	router.Group(func(r chi.Router) {
		r.Use(authn.OptionalUser)
		r.Get("/products", handler.GetProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Get("/products/{id}/reviews", handler.GetProductReviews)
	})

	// Ручки покупателя: требуют bearer токен
	router.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)

		r.Post("/auth/logout", handler.PostLogout)
		r.Get("/auth/me", handler.GetMe)

		r.Post("/products/{id}/reviews", handler.PostProductReview)

		r.Post("/checkout/session", handler.PostCheckoutSession)
		r.Get("/payment-methods", handler.GetPaymentMethods)
		r.Delete("/payment-methods/{id}", handler.DeletePaymentMethod)

		r.Get("/orders", handler.GetMyOrders)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Get("/orders/{id}/messages", handler.GetOrderMessages)
		r.Post("/orders/{id}/messages", handler.PostOrderMessage)
	})

	// Бэк-офис
	router.Route("/admin", func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Use(middleware.RequireAdmin)

		r.Post("/products", handler.PostProduct)
		r.Put("/products/{id}", handler.PutProduct)
		r.Delete("/products/{id}", handler.DeleteProduct)

		r.Get("/orders", handler.GetAllOrders)
		r.Patch("/orders/{id}/status", handler.PatchOrderStatus)
	})

	// Health и метрики без middleware (не требуют сессии)
	router.Get("/health", platformhealth.Handler(readiness))
	router.Handle("/metrics", promhttp.Handler())

	return router
}

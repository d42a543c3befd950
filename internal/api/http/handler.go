// Package httpapi содержит HTTP-обработчики Storefront Service.
// Зависит от service слоя, но не знает о деталях реализации (Stripe SDK, БД и т.д.)
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/repository"
	"github.com/shestoi/linkmarket/internal/service"
)

// WebhookVerifier проверяет подпись сырого вебхука и приводит его
// к доменному событию (реализация - internal/payment/stripe)
type WebhookVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (service.PaymentEvent, error)
}

// Handler содержит HTTP-обработчики Storefront Service
type Handler struct {
	logger     *zap.Logger
	auth       *service.AuthService
	catalog    *service.CatalogService
	checkout   *service.CheckoutService
	reconciler *service.ReconcilerService
	orders     *service.OrderService
	chat       *service.ChatService
	reviews    *service.ReviewService
	verifier   WebhookVerifier
}

// NewHandler создаёт новый HTTP handler
func NewHandler(
	logger *zap.Logger,
	auth *service.AuthService,
	catalog *service.CatalogService,
	checkout *service.CheckoutService,
	reconciler *service.ReconcilerService,
	orders *service.OrderService,
	chat *service.ChatService,
	reviews *service.ReviewService,
	verifier WebhookVerifier,
) *Handler {
	return &Handler{
		logger:     logger,
		auth:       auth,
		catalog:    catalog,
		checkout:   checkout,
		reconciler: reconciler,
		orders:     orders,
		chat:       chat,
		reviews:    reviews,
		verifier:   verifier,
	}
}

// writeJSON сериализует ответ с заданным статусом
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError возвращает ошибку в едином формате {"error": "..."}
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError переводит ошибки service слоя в HTTP статусы
// fallback - статус для ошибок без известного sentinel (обычно 400,
// потому что service валидирует вход через fmt.Errorf)
func statusForError(err error, fallback int) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return fallback
	}
}

// writeServiceError логирует и возвращает ошибку service слоя
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback int) {
	status := statusForError(err, fallback)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

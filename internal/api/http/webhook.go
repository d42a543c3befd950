package httpapi

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/linkmarket/internal/metrics"
)

// maxWebhookBody ограничивает размер тела вебхука
const maxWebhookBody = 1 << 20

// PostStripeWebhook обрабатывает POST /webhooks/stripe.
// Подпись проверяется по сырому телу до любого чтения/записи хранилища.
// 200 подтверждает доставку процессору; любой не-2xx заставляет его
// повторить - поэтому ошибка записи заказа отдаётся как 400, а внутренних
// retry здесь нет
func (h *Handler) PostStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	event, err := h.verifier.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", metrics.OutcomeInvalidSignature).Inc()
		h.logger.Warn("webhook rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	if err := h.reconciler.HandleEvent(r.Context(), event); err != nil {
		h.logger.Error("webhook processing failed",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shestoi/linkmarket/internal/authctx"
	"github.com/shestoi/linkmarket/internal/service"
)

// CheckoutSessionRequest представляет HTTP запрос на открытие checkout-сессии
type CheckoutSessionRequest struct {
	ProductID string  `json:"product_id"`
	OrderID   string  `json:"order_id,omitempty"`
	Price     float64 `json:"price"`
	Keywords  string  `json:"keywords,omitempty"`
	TargetURL string  `json:"target_url,omitempty"`
}

// PostCheckoutSession обрабатывает POST /checkout/session
// Возвращает redirect URL hosted-страницы оплаты. Заказ на этом шаге
// не создаётся - он материализуется при подтверждении оплаты вебхуком
func (h *Handler) PostCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}

	var req CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	out, err := h.checkout.CreateSession(r.Context(), service.CreateSessionInput{
		ProductID:  req.ProductID,
		OrderID:    req.OrderID,
		Price:      req.Price,
		BuyerID:    user.ID,
		BuyerEmail: user.Email,
		Keywords:   req.Keywords,
		TargetURL:  req.TargetURL,
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": out.URL})
}

// PaymentMethodResponse представляет сохранённую карту в HTTP ответе
type PaymentMethodResponse struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// GetPaymentMethods обрабатывает GET /payment-methods
func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}

	methods, err := h.checkout.ListPaymentMethods(r.Context(), user.Email)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	resp := make([]PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, PaymentMethodResponse{
			ID:       m.ID,
			Brand:    m.Brand,
			Last4:    m.Last4,
			ExpMonth: m.ExpMonth,
			ExpYear:  m.ExpYear,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeletePaymentMethod обрабатывает DELETE /payment-methods/{id}
func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.checkout.DetachPaymentMethod(r.Context(), id); err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "detached"})
}

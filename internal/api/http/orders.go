package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shestoi/linkmarket/internal/authctx"
	"github.com/shestoi/linkmarket/internal/repository"
)

// OrderResponse представляет заказ в HTTP ответе
type OrderResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ProductID       string    `json:"product_id"`
	Amount          int64     `json:"amount"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	StripeSessionID string    `json:"stripe_session_id,omitempty"`
	Keywords        string    `json:"keywords,omitempty"`
	TargetURL       string    `json:"target_url,omitempty"`
	AttachmentURL   string    `json:"attachment_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toOrderResponse(o repository.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		ProductID:       o.ProductID,
		Amount:          o.Amount,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		StripeSessionID: o.StripeSessionID,
		Keywords:        o.Keywords,
		TargetURL:       o.TargetURL,
		AttachmentURL:   o.AttachmentURL,
		CreatedAt:       o.CreatedAt,
	}
}

func toOrderResponses(orders []repository.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}

// GetMyOrders обрабатывает GET /orders - заказы текущего покупателя
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}

	orders, err := h.orders.ListMine(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// GetOrder обрабатывает GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	id := chi.URLParam(r, "id")

	order, err := h.orders.Get(r.Context(), id, user)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// GetAllOrders обрабатывает GET /admin/orders (бэк-офис)
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// OrderStatusRequest представляет HTTP запрос на смену fulfillment статуса
type OrderStatusRequest struct {
	Status string `json:"status"`
}

// PatchOrderStatus обрабатывает PATCH /admin/orders/{id}/status (бэк-офис)
func (h *Handler) PatchOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req OrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, repository.OrderStatus(req.Status)); err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// ChatMessageResponse представляет сообщение переписки в HTTP ответе
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	SenderID  string    `json:"sender_id"`
	FromAdmin bool      `json:"from_admin"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toChatMessageResponse(m repository.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		OrderID:   m.OrderID,
		SenderID:  m.SenderID,
		FromAdmin: m.FromAdmin,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

// GetOrderMessages обрабатывает GET /orders/{id}/messages
func (h *Handler) GetOrderMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	id := chi.URLParam(r, "id")

	messages, err := h.chat.ListMessages(r.Context(), id, user)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	resp := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toChatMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ChatMessageRequest представляет HTTP запрос на отправку сообщения
type ChatMessageRequest struct {
	Body string `json:"body"`
}

// PostOrderMessage обрабатывает POST /orders/{id}/messages
func (h *Handler) PostOrderMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	id := chi.URLParam(r, "id")

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	msg, err := h.chat.PostMessage(r.Context(), id, user, req.Body)
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, toChatMessageResponse(msg))
}

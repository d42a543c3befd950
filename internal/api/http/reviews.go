package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shestoi/linkmarket/internal/authctx"
	"github.com/shestoi/linkmarket/internal/repository"
	"github.com/shestoi/linkmarket/internal/service"
)

// ReviewResponse представляет отзыв в HTTP ответе
type ReviewResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewResponse(rev repository.Review) ReviewResponse {
	return ReviewResponse{
		ID:        rev.ID,
		ProductID: rev.ProductID,
		UserID:    rev.UserID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	}
}

// GetProductReviews обрабатывает GET /products/{id}/reviews
func (h *Handler) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	reviews, err := h.reviews.ListByProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	resp := make([]ReviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		resp = append(resp, toReviewResponse(rev))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReviewRequest представляет HTTP запрос на добавление отзыва
type ReviewRequest struct {
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

// PostProductReview обрабатывает POST /products/{id}/reviews
func (h *Handler) PostProductReview(w http.ResponseWriter, r *http.Request) {
	user, ok := authctx.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	id := chi.URLParam(r, "id")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	review, err := h.reviews.AddReview(r.Context(), service.AddReviewInput{
		ProductID: id,
		UserID:    user.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(review))
}

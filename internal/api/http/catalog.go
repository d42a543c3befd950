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

// ProductResponse представляет позицию каталога в HTTP ответе
type ProductResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	SiteURL         string    `json:"site_url"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	Price           int64     `json:"price"`
	DomainAuthority int32     `json:"domain_authority"`
	DomainRating    int32     `json:"domain_rating"`
	MonthlyTraffic  int64     `json:"monthly_traffic"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

func toProductResponse(p repository.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Title:           p.Title,
		SiteURL:         p.SiteURL,
		Description:     p.Description,
		Category:        p.Category,
		Price:           p.Price,
		DomainAuthority: p.DomainAuthority,
		DomainRating:    p.DomainRating,
		MonthlyTraffic:  p.MonthlyTraffic,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
	}
}

// GetProducts обрабатывает GET /products - каталог для витрины
// Бэк-офис видит и скрытые позиции
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	user, _ := authctx.UserFromContext(r.Context())
	includeInactive := user.IsAdmin

	products, err := h.catalog.ListProducts(r.Context(), includeInactive)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct обрабатывает GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// ProductRequest представляет HTTP запрос на создание/обновление позиции
type ProductRequest struct {
	Title           string `json:"title"`
	SiteURL         string `json:"site_url"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Price           int64  `json:"price"`
	DomainAuthority int32  `json:"domain_authority"`
	DomainRating    int32  `json:"domain_rating"`
	MonthlyTraffic  int64  `json:"monthly_traffic"`
	Active          bool   `json:"active"`
}

func (req ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Title:           req.Title,
		SiteURL:         req.SiteURL,
		Description:     req.Description,
		Category:        req.Category,
		Price:           req.Price,
		DomainAuthority: req.DomainAuthority,
		DomainRating:    req.DomainRating,
		MonthlyTraffic:  req.MonthlyTraffic,
		Active:          req.Active,
	}
}

// PostProduct обрабатывает POST /admin/products - создание позиции (бэк-офис)
func (h *Handler) PostProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// PutProduct обрабатывает PUT /admin/products/{id} - обновление позиции (бэк-офис)
func (h *Handler) PutProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// DeleteProduct обрабатывает DELETE /admin/products/{id} (бэк-офис)
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

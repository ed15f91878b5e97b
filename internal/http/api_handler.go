package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.uber.org/zap"
)

// APIHandler exposes the storefront operations as JSON for scripted clients.
type APIHandler struct {
	storefront *service.Storefront
}

func NewAPIHandler(storefront *service.Storefront) *APIHandler {
	return &APIHandler{storefront: storefront}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type ProductsResponse struct {
	Loading    bool             `json:"loading"`
	LoadFailed bool             `json:"load_failed"`
	Products   []domain.Product `json:"products"`
}

type CartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalPrice float64           `json:"total_price"`
	TotalItems int               `json:"total_items"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *APIHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}
	snap := sess.Snapshot()
	products := snap.Products
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, ProductsResponse{
		Loading:    snap.Loading,
		LoadFailed: snap.LoadFailed,
		Products:   products,
	})
}

func (h *APIHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *APIHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	if err := h.storefront.AddToCart(sess, req.ProductID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		logger.FromContext(r.Context()).Error("add to cart failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(sess))
}

// UpdateQuantity applies a delta to an entry. An unknown id is not an error;
// the cart is returned unchanged.
func (h *APIHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta > service.MaxQuantity || req.Delta < -service.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_delta", fmt.Sprintf("delta must be within ±%d", service.MaxQuantity))
		return
	}

	h.storefront.UpdateQuantity(sess, productIDParam(r), req.Delta)
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *APIHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}

	h.storefront.RemoveFromCart(sess, productIDParam(r))
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *APIHandler) DrainNotifications(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
		return
	}
	notes := sess.DrainNotifications()
	if notes == nil {
		notes = []domain.Notification{}
	}
	respondJSON(w, http.StatusOK, NotificationsResponse{Notifications: notes})
}

// NoSession answers API calls made without a live session. Sessions are
// opened by the page only.
func NoSession(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusUnauthorized, "no_session", "no active session; open the storefront page first")
}

func cartResponse(sess *service.Session) CartResponse {
	snap := sess.Snapshot()
	return CartResponse{
		Items:      snap.Items,
		TotalPrice: snap.TotalPrice,
		TotalItems: snap.TotalItems,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

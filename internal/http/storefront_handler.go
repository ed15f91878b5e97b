package http

import (
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.uber.org/zap"
)

// StorefrontHandler serves the HTML page and its form actions. Every action
// redirects back to the page, which renders the new state.
type StorefrontHandler struct {
	storefront *service.Storefront
}

func NewStorefrontHandler(storefront *service.Storefront) *StorefrontHandler {
	return &StorefrontHandler{storefront: storefront}
}

func (h *StorefrontHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	data := pageData{Snapshot: sess.Snapshot()}
	if !data.Loading {
		data.Notifications = sess.DrainNotifications()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := renderPage(w, data); err != nil {
		logger.FromContext(r.Context()).Error("render page failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *StorefrontHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess != nil {
		sess.ToggleCart()
	}
	redirectHome(w, r)
}

func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		redirectHome(w, r)
		return
	}

	productID := productIDParam(r)
	if err := h.storefront.AddToCart(sess, productID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("add to cart failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

func (h *StorefrontHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, 1)
}

func (h *StorefrontHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, -1)
}

func (h *StorefrontHandler) update(w http.ResponseWriter, r *http.Request, delta int) {
	if sess := sessionFromContext(r.Context()); sess != nil {
		h.storefront.UpdateQuantity(sess, productIDParam(r), delta)
	}
	redirectHome(w, r)
}

func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess != nil {
		h.storefront.RemoveFromCart(sess, productIDParam(r))
	}
	redirectHome(w, r)
}

func Placeholder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(placeholderSVG)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

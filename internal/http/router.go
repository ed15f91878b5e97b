package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RouterConfig struct {
	CookieName     string
	SecureCookie   bool
	RequestTimeout time.Duration
	// ServiceName names the server spans. Defaults to "storefront".
	ServiceName string
	// TracerProvider overrides the global provider, mainly for tests.
	TracerProvider trace.TracerProvider
}

// NewRouter wires the page, the JSON API and the operational endpoints.
func NewRouter(cfg RouterConfig, storefront *service.Storefront, m *metrics.Metrics, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storefront"
	}
	var otelOpts []otelhttp.Option
	if cfg.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}

	page := NewStorefrontHandler(storefront)
	api := NewAPIHandler(storefront)
	openSession := SessionMiddleware(storefront, cfg.CookieName, cfg.SecureCookie)
	formSession := RequireSession(storefront, cfg.CookieName, redirectHome)
	apiSession := RequireSession(storefront, cfg.CookieName, NoSession)

	r := chi.NewRouter()

	// Global middleware
	r.Use(otelhttp.NewMiddleware(cfg.ServiceName, otelOpts...))
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Get("/placeholder.svg", Placeholder)

	r.With(openSession).Get("/", page.Page)

	r.Group(func(r chi.Router) {
		r.Use(formSession)

		r.Post("/cart/toggle", page.ToggleCart)
		r.Route("/cart/items/{productID}", func(r chi.Router) {
			r.Post("/", page.AddItem)
			r.Post("/increment", page.Increment)
			r.Post("/decrement", page.Decrement)
			r.Post("/remove", page.RemoveItem)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiSession)

		r.Get("/products", api.GetProducts)
		r.Get("/notifications", api.DrainNotifications)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", api.GetCart)
			r.Post("/items", api.AddItem)
			r.Patch("/items/{productID}", api.UpdateQuantity)
			r.Delete("/items/{productID}", api.RemoveItem)
		})
	})

	return r
}

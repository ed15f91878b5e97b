package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type sessionKey struct{}

// RequestLogger attaches a request-scoped zap logger to the context and logs
// each completed request. The trace id is added when the request is traced.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := base
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				reqLog = base.With(zap.String("trace_id", sc.TraceID().String()))
			}
			ctx, log := logger.WithRequestID(r.Context(), reqLog, middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

// SessionMiddleware resolves the visitor's view session from the cookie,
// opening a new one when the cookie is missing or stale.
func SessionMiddleware(storefront *service.Storefront, cookieName string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, created := storefront.Open(sessionCookie(r, cookieName))
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sess.ID(),
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.FromContext(r.Context()).Debug("new session", zap.String("session_id", sess.ID()))
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession resolves an existing session and never opens one. Requests
// without a live session are handed to onMissing.
func RequireSession(storefront *service.Storefront, cookieName string, onMissing http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionCookie(r, cookieName)
			if id == "" {
				onMissing(w, r)
				return
			}
			sess, err := storefront.Lookup(id)
			if err != nil {
				logger.FromContext(r.Context()).Debug("no live session", zap.String("session_id", id), zap.Error(err))
				onMissing(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionCookie(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

func sessionFromContext(ctx context.Context) *service.Session {
	if sess, ok := ctx.Value(sessionKey{}).(*service.Session); ok {
		return sess
	}
	return nil
}

// productIDParam returns the product id path segment. chi matches on the raw
// path when the URL carries escapes such as %2F, so only then is the segment
// unescaped.
func productIDParam(r *http.Request) string {
	id := chi.URLParam(r, "productID")
	if r.URL.RawPath == "" {
		return id
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}

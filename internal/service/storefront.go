package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductLoader loads the full product list.
type ProductLoader interface {
	Load(ctx context.Context) ([]domain.Product, error)
}

const defaultLoadTimeout = 15 * time.Second

// Cart operation names used in logs and metrics.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
)

// Storefront opens view sessions and starts their product load.
type Storefront struct {
	sessions    store.SessionStore[*Session]
	loader      ProductLoader
	loadTimeout time.Duration
	metrics     *metrics.Metrics
	log         *zap.Logger
}

type StorefrontOption func(*Storefront)

func WithLoadTimeout(d time.Duration) StorefrontOption {
	return func(s *Storefront) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) StorefrontOption {
	return func(s *Storefront) { s.metrics = m }
}

func NewStorefront(sessions store.SessionStore[*Session], loader ProductLoader, log *zap.Logger, opts ...StorefrontOption) *Storefront {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Storefront{
		sessions:    sessions,
		loader:      loader,
		loadTimeout: defaultLoadTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the live session for id, or creates a new session and starts
// loading its products. created reports whether a new session was made.
func (s *Storefront) Open(id string) (sess *Session, created bool) {
	if id != "" {
		sess, err := s.sessions.Get(id)
		if err == nil {
			return sess, false
		}
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrExpired) {
			s.log.Warn("session lookup failed", zap.String("session_id", id), zap.Error(err))
		}
	}

	sess = NewSession(uuid.NewString())
	s.sessions.Put(sess.ID(), sess)
	s.metrics.SessionOpened()
	s.log.Debug("session opened", zap.String("session_id", sess.ID()))

	go s.load(sess)
	return sess, true
}

// Lookup returns an existing session without creating one.
func (s *Storefront) Lookup(id string) (*Session, error) {
	return s.sessions.Get(id)
}

// load runs the one-time product load for sess. Failures are logged and
// surfaced as a notification; they are not retried.
func (s *Storefront) load(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
	defer cancel()

	start := time.Now()
	products, err := s.loader.Load(ctx)
	log := s.log.With(zap.String("session_id", sess.ID()), zap.Duration("elapsed", time.Since(start)))
	switch {
	case err == nil:
		log.Info("products loaded", zap.Int("count", len(products)))
		s.metrics.CatalogLoad(metrics.ResultSuccess)
	case circuitbreaker.IsRejected(err):
		log.Warn("catalog circuit open, upstream not called", zap.Error(err))
		s.metrics.CatalogLoad(metrics.ResultRejected)
	default:
		log.Error("error fetching products", zap.Error(err))
		s.metrics.CatalogLoad(metrics.ResultFailure)
	}
	sess.CompleteLoad(products, err)
}

// EvictHook counts sessions the store drops after idling past its TTL.
func EvictHook(m *metrics.Metrics, log *zap.Logger) func(id string, sess *Session) {
	if log == nil {
		log = zap.NewNop()
	}
	return func(id string, _ *Session) {
		m.SessionEvicted()
		log.Debug("session evicted", zap.String("session_id", id))
	}
}

func (s *Storefront) AddToCart(sess *Session, productID string) error {
	if err := sess.AddToCart(productID); err != nil {
		return err
	}
	s.metrics.CartOperation(OpAdd)
	return nil
}

func (s *Storefront) UpdateQuantity(sess *Session, productID string, delta int) bool {
	found := sess.UpdateQuantity(productID, delta)
	if found {
		s.metrics.CartOperation(OpUpdate)
	}
	return found
}

func (s *Storefront) RemoveFromCart(sess *Session, productID string) {
	sess.RemoveFromCart(productID)
	s.metrics.CartOperation(OpRemove)
}

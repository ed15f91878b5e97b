// Package catalog loads the product list from the upstream sheet.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher returns the raw sheet response body.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	Source() string
}

// Loader turns the sheet into products. Concurrent loads share one upstream
// request, and a successful response is cached when a cache is configured.
type Loader struct {
	fetcher      Fetcher
	cache        cache.CatalogCache
	metrics      *metrics.Metrics
	log          *zap.Logger
	sfg          singleflight.Group
	fetchTimeout time.Duration
}

const defaultFetchTimeout = 15 * time.Second

type LoaderOption func(*Loader)

// WithCache enables the response cache. A nil cache is ignored.
func WithCache(c cache.CatalogCache) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
	}
}

func WithMetrics(m *metrics.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithFetchTimeout bounds the shared upstream call. Callers keep their own
// deadlines on top of it.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.fetchTimeout = d
		}
	}
}

func NewLoader(fetcher Fetcher, log *zap.Logger, opts ...LoaderOption) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{fetcher: fetcher, log: log, fetchTimeout: defaultFetchTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the full product list or an error; there is no partial
// result. Each call maps records afresh, so generated fallback IDs differ
// between loads.
//
// Concurrent callers share one upstream call. That call is detached from any
// single caller's cancellation and bounded by the fetch timeout instead, while
// each caller still gives up when its own context ends.
func (l *Loader) Load(ctx context.Context) ([]domain.Product, error) {
	ch := l.sfg.DoChan(l.fetcher.Source(), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fetchTimeout)
		defer cancel()
		return l.records(fetchCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return ToProducts(res.Val.([]SheetRecord)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) records(ctx context.Context) ([]SheetRecord, error) {
	source := l.fetcher.Source()

	if l.cache != nil {
		body, err := l.cache.Get(ctx, source)
		if err == nil {
			records, decodeErr := DecodeRecords(body)
			if decodeErr == nil {
				l.metrics.CatalogSource(metrics.SourceCache)
				return records, nil
			}
			l.log.Warn("dropping undecodable cached catalog", zap.Error(decodeErr))
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			l.log.Warn("catalog cache get failed", zap.Error(err))
		}
	}

	body, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	l.metrics.CatalogSource(metrics.SourceUpstream)

	records, err := DecodeRecords(body)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := l.cache.Set(ctx, source, body); err != nil {
				l.log.Warn("catalog cache set failed", zap.Error(err))
			}
		}()
	}
	return records, nil
}

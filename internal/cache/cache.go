package cache

import (
	"context"
	"errors"
)

// CatalogCache stores raw sheet responses keyed by source URL.
type CatalogCache interface {
	Get(ctx context.Context, source string) ([]byte, error)
	Set(ctx context.Context, source string, body []byte) error
	Delete(ctx context.Context, source string) error
}

var ErrCacheMiss = errors.New("cache miss")

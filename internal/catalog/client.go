package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultSheetURL is the sheet the storefront reads its products from.
const DefaultSheetURL = "https://sheetdb.io/api/v1/4vw9w9ecdost2"

const maxBodySize = 4 << 20

var ErrUpstreamStatus = errors.New("catalog: unexpected upstream status")

type ClientConfig struct {
	URL     string
	Timeout time.Duration
	// RateLimit is the number of upstream requests per second. Zero disables
	// throttling.
	RateLimit float64
	RateBurst int
	Breaker   circuitbreaker.Config
}

// SheetClient reads the raw product sheet from the upstream API.
type SheetClient struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewSheetClient(cfg ClientConfig, log *zap.Logger) *SheetClient {
	if cfg.URL == "" {
		cfg.URL = DefaultSheetURL
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &SheetClient{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: limiter,
		breaker: circuitbreaker.New[[]byte](cfg.Breaker, log),
	}
}

// Source returns the URL the client reads from.
func (c *SheetClient) Source() string {
	return c.url
}

// Fetch issues one GET against the sheet and returns the response body.
// It does not retry.
func (c *SheetClient) Fetch(ctx context.Context) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.url, err)
	}
	return body, nil
}

func (c *SheetClient) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

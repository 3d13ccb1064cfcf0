package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

const maxResponseSize = 1 << 20 // 1MB

// Client reads product metadata and stock levels from the catalog REST API.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	sfg     singleflight.Group // collapses concurrent fetches of the same resource
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithBreakerSettings replaces the default circuit breaker settings.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = gobreaker.NewCircuitBreaker[[]byte](st) }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](c.defaultBreakerSettings())
	}
	return c
}

func (c *Client) defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

// a missing resource is an answer, not an outage
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound)
}

// Product fetches GET products/{id}.
func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	if err := c.getJSON(ctx, &p, "products", strconv.FormatInt(id, 10)); err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Stock fetches GET stock/{id}.
func (c *Client) Stock(ctx context.Context, id int64) (domain.Stock, error) {
	var s domain.Stock
	if err := c.getJSON(ctx, &s, "stock", strconv.FormatInt(id, 10)); err != nil {
		return domain.Stock{}, fmt.Errorf("get stock %d: %w", id, err)
	}
	if s.ID == 0 {
		s.ID = id
	}
	return s, nil
}

func (c *Client) getJSON(ctx context.Context, dst any, path ...string) error {
	endpoint, err := url.JoinPath(c.baseURL, path...)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}

	v, err, _ := c.sfg.Do(endpoint, func() (interface{}, error) {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(ctx, endpoint)
		})
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(v.([]byte), dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return body, nil
}

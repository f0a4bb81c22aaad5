// Package openlibrary is a client for the Open Library catalog. It turns
// free-text queries, ISBNs and work identifiers into normalized BookResult
// values and contains every provider failure: callers get an empty result,
// never an error.
package openlibrary

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/bookscout/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public Open Library API root.
	DefaultBaseURL = "https://openlibrary.org"
	// DefaultLimit is the number of search documents requested when the
	// caller does not ask for a specific count.
	DefaultLimit = 10
	// DefaultUserAgent identifies this client to the provider.
	DefaultUserAgent = "bookscout/1.0 (+https://github.com/lepinkainen/bookscout)"

	defaultTimeout       = 10 * time.Second
	defaultRatePerSecond = 3
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client performs catalog lookups. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	baseURL     string
	covers      CoverResolver
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
	userAgent   string
	logger      *slog.Logger
}

// NewClient creates a new Open Library client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:     DefaultBaseURL,
		covers:      NewCoverResolver(DefaultCoversURL),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New("OpenLibrary", defaultRatePerSecond),
		userAgent:   DefaultUserAgent,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Covers returns the resolver the client uses for cover URLs.
func (c *Client) Covers() CoverResolver {
	return c.covers
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(client *Client) {
		if doer != nil {
			client.httpClient = doer
		}
	}
}

// WithBaseURL sets a custom base URL for the catalog API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithCoversURL sets a custom root for cover image URLs.
func WithCoversURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.covers = NewCoverResolver(base)
		}
	}
}

// WithRateLimiter replaces the default limiter. Passing nil disables pacing.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

// WithLogger sets the logger that receives diagnostics for contained failures.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		if logger != nil {
			client.logger = logger
		}
	}
}

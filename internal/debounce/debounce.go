// Package debounce turns a rapid stream of autocomplete queries into at most
// one outbound search per quiet period.
package debounce

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lepinkainen/bookscout/internal/openlibrary"
)

const (
	// DefaultQuietPeriod is how long the input must stay unchanged before a
	// search is dispatched.
	DefaultQuietPeriod = 300 * time.Millisecond
	// DefaultMinQueryLength is the shortest trimmed query that is searched.
	DefaultMinQueryLength = 2
)

// Searcher is the search operation being debounced.
type Searcher interface {
	SearchByQuery(ctx context.Context, query string, limit int) []openlibrary.BookResult
}

// ResultsFunc receives the results of a search. It is called on the
// scheduling goroutine, or synchronously for short queries.
type ResultsFunc func([]openlibrary.BookResult)

// Timer is the pending-search handle. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

type scheduleFunc func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Coordinator owns a single pending-search slot. Each TriggerSearch replaces
// whatever was scheduled before it. Searches already dispatched to the
// network are never cancelled, so their callbacks can still arrive after a
// newer one; callers that care must discard stale results themselves.
//
// Independent debounce lifetimes need independent Coordinators.
type Coordinator struct {
	searcher Searcher
	quiet    time.Duration
	limit    int
	minLen   int
	ctx      context.Context
	schedule scheduleFunc
	logger   *slog.Logger

	mu      sync.Mutex
	pending Timer
	gen     uint64
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithQuietPeriod sets the debounce interval. Non-positive values keep the default.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.quiet = d
		}
	}
}

// WithLimit sets the result limit passed to the searcher.
func WithLimit(limit int) Option {
	return func(c *Coordinator) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithMinQueryLength sets the shortest trimmed query that is searched.
func WithMinQueryLength(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.minLen = n
		}
	}
}

// WithContext sets the context dispatched searches run under.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the logger used for scheduling diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Coordinator around searcher.
func New(searcher Searcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		searcher: searcher,
		quiet:    DefaultQuietPeriod,
		limit:    openlibrary.DefaultLimit,
		minLen:   DefaultMinQueryLength,
		ctx:      context.Background(),
		schedule: afterFunc,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QuietPeriod returns the configured debounce interval.
func (c *Coordinator) QuietPeriod() time.Duration {
	return c.quiet
}

// TriggerSearch cancels any search scheduled by an earlier call and, unless
// the trimmed query is too short, schedules a search for query after the
// quiet period. Short queries invoke onResults immediately with an empty
// slice and never reach the network.
func (c *Coordinator) TriggerSearch(query string, onResults ResultsFunc) {
	c.mu.Lock()
	c.cancelLocked()

	if utf8.RuneCountInString(strings.TrimSpace(query)) < c.minLen {
		c.mu.Unlock()
		onResults([]openlibrary.BookResult{})
		return
	}

	gen := c.gen
	c.pending = c.schedule(c.quiet, func() { c.dispatch(gen, query, onResults) })
	c.mu.Unlock()

	c.logger.Debug("Search scheduled", "query", query, "quiet", c.quiet)
}

// Pending reports whether a search is scheduled but not yet dispatched.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Stop cancels the scheduled search, if any. In-flight searches still
// complete and deliver their results.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Coordinator) cancelLocked() {
	if c.pending != nil {
		if c.pending.Stop() {
			c.logger.Debug("Scheduled search superseded")
		}
		c.pending = nil
	}
	c.gen++
}

func (c *Coordinator) dispatch(gen uint64, query string, onResults ResultsFunc) {
	c.mu.Lock()
	// A timer that fired while being replaced must not dispatch.
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.mu.Unlock()

	onResults(c.searcher.SearchByQuery(c.ctx, query, c.limit))
}

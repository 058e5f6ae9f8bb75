// collector.go — Page-index collection loop with duplicate-page and ceiling guards.
package pagination

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Defaults for collection knobs.
const (
	DefaultPageSize = 1000
	DefaultMaxPages = 10000
)

// Page is one fetched page, in backend order.
type Page[T any] struct {
	Items []T
}

// FetchFunc fetches the page at pageIndex (0-based).
type FetchFunc[T any] func(ctx context.Context, pageIndex, pageSize int) (Page[T], error)

// KeyFunc returns the natural key of an item.
type KeyFunc[T any] func(item T) string

// StopReason names why a collection ended normally.
type StopReason string

const (
	StopEmpty         StopReason = "empty_page"
	StopShortPage     StopReason = "short_page"
	StopDuplicatePage StopReason = "duplicate_page"
)

// Result is the outcome of a completed collection.
type Result[T any] struct {
	Items []T
	// Fetches counts fetch calls, including the terminating one.
	Fetches int
	// Pages counts pages appended to Items.
	Pages int
	Stop  StopReason
}

// cursor tracks progress through the pages. accumulated never contains a page
// whose leading key was already seen, the previous page's included.
type cursor[T any] struct {
	pageIndex      int
	lastLeadingKey string
	seen           map[string]struct{}
	pages          int
	accumulated    []T
}

func (c *cursor[T]) repeats(leading string) bool {
	if c.pages == 0 {
		return false
	}
	if leading == c.lastLeadingKey {
		return true
	}
	_, ok := c.seen[leading]
	return ok
}

func (c *cursor[T]) accept(leading string, items []T) {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	c.seen[leading] = struct{}{}
	c.lastLeadingKey = leading
	c.accumulated = append(c.accumulated, items...)
	c.pages++
}

// Collector walks a paginated source until it terminates.
type Collector[T any] struct {
	fetch    FetchFunc[T]
	key      KeyFunc[T]
	pageSize int
	maxPages int
	retries  int
	log      zerolog.Logger
}

// Option configures a Collector.
type Option func(*settings)

type settings struct {
	pageSize int
	maxPages int
	retries  int
	log      zerolog.Logger
}

// WithPageSize sets the requested page size. Non-positive values keep the default.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithMaxPages sets the fetch ceiling. Non-positive values keep the default.
func WithMaxPages(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithFetchRetries sets how many times a failed page fetch is retried.
func WithFetchRetries(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// WithLogger sets the collector's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// NewCollector creates a Collector over fetch, identifying items with key.
func NewCollector[T any](fetch FetchFunc[T], key KeyFunc[T], opts ...Option) *Collector[T] {
	s := settings{
		pageSize: DefaultPageSize,
		maxPages: DefaultMaxPages,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Collector[T]{
		fetch:    fetch,
		key:      key,
		pageSize: s.pageSize,
		maxPages: s.maxPages,
		retries:  s.retries,
		log:      s.log,
	}
}

// PageSize returns the configured page size.
func (c *Collector[T]) PageSize() int { return c.pageSize }

// Collect fetches pages 0, 1, 2, ... until an empty page, a short page, or a
// page re-serving a leading key already collected. At most maxPages fetches are made;
// if the last one is still a full, fresh page, Collect returns *GuardError.
//
// The key should be unique across the collection. A later page that genuinely
// starts with a key seen earlier is treated as a repeat, so collection stops
// there and the remaining pages are not fetched.
func (c *Collector[T]) Collect(ctx context.Context) (*Result[T], error) {
	if c.fetch == nil || c.key == nil {
		return nil, fmt.Errorf("collect: fetch and key functions are required")
	}

	var cur cursor[T]
	for fetches := 1; fetches <= c.maxPages; fetches++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect page %d: %w", cur.pageIndex, err)
		}

		page, err := c.fetchPage(ctx, cur.pageIndex)
		if err != nil {
			return nil, err
		}

		if len(page.Items) == 0 {
			return c.done(&cur, fetches, StopEmpty), nil
		}

		leading := c.key(page.Items[0])
		if cur.repeats(leading) {
			c.log.Debug().Int("page", cur.pageIndex).Str("leading_key", leading).Msg("backend re-served a collected page")
			return c.done(&cur, fetches, StopDuplicatePage), nil
		}
		cur.accept(leading, page.Items)

		if len(page.Items) < c.pageSize {
			return c.done(&cur, fetches, StopShortPage), nil
		}
		cur.pageIndex++
	}

	err := &GuardError{MaxPages: c.maxPages, Collected: len(cur.accumulated)}
	c.log.Error().Err(err).Msg("pagination guard tripped")
	return nil, err
}

// CollectAll returns only the collected items.
func (c *Collector[T]) CollectAll(ctx context.Context) ([]T, error) {
	res, err := c.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (c *Collector[T]) fetchPage(ctx context.Context, pageIndex int) (Page[T], error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return Page[T]{}, fmt.Errorf("fetch page %d: %w", pageIndex, err)
			}
			c.log.Warn().Err(lastErr).Int("page", pageIndex).Int("attempt", attempt+1).Msg("retrying page fetch")
		}
		page, err := c.fetch(ctx, pageIndex, c.pageSize)
		if err == nil {
			return page, nil
		}
		lastErr = err
	}
	return Page[T]{}, fmt.Errorf("fetch page %d (%d attempts): %w", pageIndex, c.retries+1, lastErr)
}

func (c *Collector[T]) done(cur *cursor[T], fetches int, reason StopReason) *Result[T] {
	c.log.Debug().Int("items", len(cur.accumulated)).Int("fetches", fetches).Str("stop", string(reason)).Msg("collection complete")
	items := cur.accumulated
	if items == nil {
		items = []T{}
	}
	return &Result[T]{Items: items, Fetches: fetches, Pages: cur.pages, Stop: reason}
}

// Package query is a small client-side cache for API reads. Reads are cached
// under a Key; mutations declare which keys they make stale, and mounted
// observers of those keys re-fetch automatically.
package query

import (
	"context"
	"sync"
	"time"
)

// Fetcher loads the data for one key.
type Fetcher func(ctx context.Context) (any, error)

// Notifier receives the user-visible outcome of mutations.
type Notifier interface {
	Success(message string)
	Error(message string, err error)
}

type entry struct {
	key       Key
	data      any
	err       error
	updatedAt time.Time
	stale     bool
	// gen is bumped by Invalidate. A fetch that started under an older gen
	// stores its result but leaves the entry stale.
	gen uint64
}

// Client holds the process-wide query cache. Construct one with NewClient at
// startup and pass it to everything that reads or mutates API data.
type Client struct {
	mu        sync.Mutex
	entries   map[string]*entry
	observers map[*Observer]struct{}

	staleTime time.Duration
	notifier  Notifier
	now       func() time.Time
}

type Option func(*Client)

// WithStaleTime keeps fetched data fresh for d. The default of zero makes
// every Fetch hit the network.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) { c.staleTime = d }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		entries:   make(map[string]*entry),
		observers: make(map[*Observer]struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached data for key when it is fresh and otherwise runs
// fn and caches its result. Errors are cached too so observers can show them.
func (c *Client) Fetch(ctx context.Context, key Key, fn Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entry(key)
	if c.fresh(e) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	gen := e.gen
	c.mu.Unlock()

	data, err := fn(ctx)
	if ctx.Err() != nil {
		// Cancelled fetches leave the cache untouched.
		return data, err
	}

	c.mu.Lock()
	current := c.entry(key)
	current.err = err
	if err == nil {
		current.data = data
		current.updatedAt = c.now()
		current.stale = current != e || current.gen != gen
	}
	c.mu.Unlock()
	return data, err
}

func (c *Client) fresh(e *entry) bool {
	if e.stale || e.err != nil || e.updatedAt.IsZero() {
		return false
	}
	return c.now().Sub(e.updatedAt) < c.staleTime
}

func (c *Client) entry(key Key) *entry {
	h := key.hash()
	e, ok := c.entries[h]
	if !ok {
		e = &entry{key: key, stale: true}
		c.entries[h] = e
	}
	return e
}

// cachedData returns the last successfully fetched value for key.
func (c *Client) cachedData(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.hash()]
	if !ok || e.updatedAt.IsZero() {
		return nil, false
	}
	return e.data, true
}

// setData replaces the cached value for key and marks it fresh.
func (c *Client) setData(key Key, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(key)
	e.data = data
	e.err = nil
	e.updatedAt = c.now()
	e.stale = false
}

func (c *Client) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.hash()]
	return !ok || e.stale
}

// Invalidate marks every entry whose key starts with prefix as stale and
// re-fetches the mounted observers of those keys. It returns the first
// refetch error.
func (c *Client) Invalidate(ctx context.Context, prefix Key) error {
	c.mu.Lock()
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
			e.gen++
		}
	}
	var active []*Observer
	for o := range c.observers {
		if o.key.HasPrefix(prefix) {
			active = append(active, o)
		}
	}
	c.mu.Unlock()

	var first error
	for _, o := range active {
		if err := o.refetch(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clear drops every cached entry. Mounted observers keep their last result,
// and fetches in flight store theirs as stale.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

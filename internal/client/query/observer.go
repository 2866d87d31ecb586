package query

import (
	"context"
	"sync"
)

// Observer is a mounted query. It fetches when mounted and again every time
// its key is invalidated, until Unmount is called.
type Observer struct {
	client *Client
	key    Key
	fn     Fetcher

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	data      any
	err       error
	fetches   int
	listeners []func(data any, err error)
}

// Observe mounts a query for key and performs its first fetch before
// returning. The observer stays mounted until Unmount or until ctx is done.
func (c *Client) Observe(ctx context.Context, key Key, fn Fetcher) *Observer {
	octx, cancel := context.WithCancel(ctx)
	o := &Observer{client: c, key: key, fn: fn, ctx: octx, cancel: cancel}

	c.mu.Lock()
	c.observers[o] = struct{}{}
	c.mu.Unlock()

	_ = o.refetch(ctx)
	return o
}

func (o *Observer) Key() Key { return o.key }

// Result returns the data and error of the latest completed fetch.
func (o *Observer) Result() (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.data, o.err
}

// Fetches counts completed fetches, including the one made on mount.
func (o *Observer) Fetches() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fetches
}

// OnChange registers fn to run after every completed fetch.
func (o *Observer) OnChange(fn func(data any, err error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Unmount cancels any in-flight fetch and stops further refetching.
func (o *Observer) Unmount() {
	o.cancel()
	o.client.mu.Lock()
	delete(o.client.observers, o)
	o.client.mu.Unlock()
}

func (o *Observer) mounted() bool {
	return o.ctx.Err() == nil
}

// refetch runs the fetcher under the observer's own context merged with
// ctx, so either Unmount or the caller can cancel it.
func (o *Observer) refetch(ctx context.Context) error {
	if !o.mounted() {
		return nil
	}
	fctx, cancel := context.WithCancel(o.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	data, err := o.client.Fetch(fctx, o.key, o.fn)
	if !o.mounted() {
		return nil
	}
	if fctx.Err() != nil {
		return fctx.Err()
	}

	o.mu.Lock()
	o.err = err
	if err == nil {
		o.data = data
	}
	o.fetches++
	listeners := append([]func(any, error){}, o.listeners...)
	o.mu.Unlock()

	for _, l := range listeners {
		l(data, err)
	}
	return err
}

package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// backend is a fake API holding a list the fetchers read.
type backend struct {
	mu    sync.Mutex
	items []string
	calls int
	fail  error
}

func (b *backend) list(ctx context.Context) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.fail != nil {
		return nil, b.fail
	}
	out := make([]string, len(b.items))
	copy(out, b.items)
	return out, nil
}

func (b *backend) add(item string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, item)
}

type recorder struct {
	successes []string
	errors    []string
}

func (r *recorder) Success(message string) { r.successes = append(r.successes, message) }
func (r *recorder) Error(message string, _ error) { r.errors = append(r.errors, message) }

var forecastsKey = NewKey("get", "/api/weather-forecasts")

func TestFetchHonoursStaleTime(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	qc := NewClient(WithStaleTime(time.Minute))
	qc.now = func() time.Time { return now }
	api := &backend{items: []string{"a"}}

	_, err := qc.Fetch(ctx, forecastsKey, api.list)
	c.Assert(err, qt.IsNil)
	_, err = qc.Fetch(ctx, forecastsKey, api.list)
	c.Assert(err, qt.IsNil)
	c.Assert(api.calls, qt.Equals, 1)

	now = now.Add(2 * time.Minute)
	_, err = qc.Fetch(ctx, forecastsKey, api.list)
	c.Assert(err, qt.IsNil)
	c.Assert(api.calls, qt.Equals, 2)

	c.Assert(qc.Invalidate(ctx, forecastsKey), qt.IsNil)
	c.Assert(qc.IsStale(forecastsKey), qt.IsTrue)
	_, err = qc.Fetch(ctx, forecastsKey, api.list)
	c.Assert(err, qt.IsNil)
	c.Assert(api.calls, qt.Equals, 3)
}

func TestMutationInvalidatesMountedObserver(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	notes := &recorder{}
	qc := NewClient(WithNotifier(notes))
	api := &backend{}

	obs := qc.Observe(ctx, forecastsKey, api.list)
	defer obs.Unmount()
	data, err := obs.Result()
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, []string{})

	var changes [][]string
	obs.OnChange(func(data any, err error) {
		changes = append(changes, data.([]string))
	})

	succeeded := false
	_, err = qc.Mutate(ctx, Mutation{
		Fn: func(ctx context.Context) (any, error) {
			api.add("sunny")
			return nil, nil
		},
		OnSuccess: func(any) { succeeded = true },
		Meta: MutationMeta{
			InvalidatesQuery: forecastsKey,
			SuccessMessage:   "Forecast created",
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(succeeded, qt.IsTrue)
	c.Assert(notes.successes, qt.DeepEquals, []string{"Forecast created"})

	data, _ = obs.Result()
	c.Assert(data, qt.DeepEquals, []string{"sunny"})
	c.Assert(obs.Fetches(), qt.Equals, 2)
	c.Assert(changes, qt.DeepEquals, [][]string{{"sunny"}})
}

func TestInvalidationMatchesByPrefix(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	qc := NewClient()
	api := &backend{}

	paged := qc.Observe(ctx, NewKey("get", "/api/weather-forecasts", map[string]any{"page": 2}), api.list)
	defer paged.Unmount()
	users := qc.Observe(ctx, NewKey("get", "/api/users"), api.list)
	defer users.Unmount()

	c.Assert(qc.Invalidate(ctx, forecastsKey), qt.IsNil)
	c.Assert(paged.Fetches(), qt.Equals, 2)
	c.Assert(users.Fetches(), qt.Equals, 1)
}

func TestOmittedInvalidationLeavesStaleData(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	qc := NewClient()
	api := &backend{items: []string{"a"}}

	obs := qc.Observe(ctx, forecastsKey, api.list)
	defer obs.Unmount()

	_, err := qc.Mutate(ctx, Mutation{
		Fn: func(ctx context.Context) (any, error) {
			api.add("b")
			return nil, nil
		},
	})
	c.Assert(err, qt.IsNil)

	data, _ := obs.Result()
	c.Assert(data, qt.DeepEquals, []string{"a"})
	c.Assert(obs.Fetches(), qt.Equals, 1)
}

func TestFailedMutationStillInvalidates(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	notes := &recorder{}
	qc := NewClient(WithNotifier(notes))
	api := &backend{items: []string{"a"}}

	obs := qc.Observe(ctx, forecastsKey, api.list)
	defer obs.Unmount()

	boom := errors.New("bad request")
	var seen error
	_, err := qc.Mutate(ctx, Mutation{
		Fn:      func(ctx context.Context) (any, error) { return nil, boom },
		OnError: func(err error) { seen = err },
		Meta: MutationMeta{
			InvalidatesQuery: forecastsKey,
			SuccessMessage:   "never shown",
			ErrorMessage:     "An error has occurred",
		},
	})
	c.Assert(err, qt.Equals, boom)
	c.Assert(seen, qt.Equals, boom)
	c.Assert(notes.successes, qt.HasLen, 0)
	c.Assert(notes.errors, qt.DeepEquals, []string{"An error has occurred"})

	c.Assert(obs.Fetches(), qt.Equals, 2)
	data, _ := obs.Result()
	c.Assert(data, qt.DeepEquals, []string{"a"})
}

func TestRefetchErrorKeepsPriorData(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	qc := NewClient()
	api := &backend{items: []string{"a"}}

	obs := qc.Observe(ctx, forecastsKey, api.list)
	defer obs.Unmount()

	api.fail = errors.New("offline")
	c.Assert(qc.Invalidate(ctx, forecastsKey), qt.ErrorMatches, "offline")

	data, err := obs.Result()
	c.Assert(err, qt.ErrorMatches, "offline")
	c.Assert(data, qt.DeepEquals, []string{"a"})
	cached, ok := qc.cachedData(forecastsKey)
	c.Assert(ok, qt.IsTrue)
	c.Assert(cached, qt.DeepEquals, []string{"a"})
}

func TestUnmountStopsRefetching(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	qc := NewClient()
	api := &backend{}

	obs := qc.Observe(ctx, forecastsKey, api.list)
	obs.Unmount()

	c.Assert(qc.Invalidate(ctx, forecastsKey), qt.IsNil)
	c.Assert(obs.Fetches(), qt.Equals, 1)
	c.Assert(api.calls, qt.Equals, 1)
}

func TestUnmountCancelsInFlightFetch(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	qc := NewClient()

	var once sync.Once
	started := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		first := false
		once.Do(func() { first = true })
		if first {
			return "initial", nil
		}
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	obs := qc.Observe(ctx, forecastsKey, fetch)

	done := make(chan error, 1)
	go func() { done <- qc.Invalidate(ctx, forecastsKey) }()

	<-started
	obs.Unmount()

	select {
	case err := <-done:
		c.Assert(err, qt.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("fetch was not cancelled")
	}
	data, err := obs.Result()
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.Equals, "initial")
}

func TestSetDataAndClear(t *testing.T) {
	c := qt.New(t)
	qc := NewClient()

	_, ok := qc.cachedData(forecastsKey)
	c.Assert(ok, qt.IsFalse)

	qc.setData(forecastsKey, []string{"x"})
	data, ok := qc.cachedData(forecastsKey)
	c.Assert(ok, qt.IsTrue)
	c.Assert(data, qt.DeepEquals, []string{"x"})
	c.Assert(qc.IsStale(forecastsKey), qt.IsFalse)

	qc.Clear()
	_, ok = qc.cachedData(forecastsKey)
	c.Assert(ok, qt.IsFalse)
}

func TestInvalidateDuringFetchKeepsEntryStale(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	qc := NewClient(WithStaleTime(time.Hour))

	var (
		mu     sync.Mutex
		value  = "v1"
		hold   = true
		read   = make(chan struct{})
		resume = make(chan struct{})
	)
	fetch := func(context.Context) (any, error) {
		mu.Lock()
		v, wait := value, hold
		hold = false
		mu.Unlock()
		if wait {
			close(read)
			<-resume
		}
		return v, nil
	}

	done := make(chan any, 1)
	go func() {
		data, _ := qc.Fetch(ctx, forecastsKey, fetch)
		done <- data
	}()

	<-read
	mu.Lock()
	value = "v2"
	mu.Unlock()
	c.Assert(qc.Invalidate(ctx, forecastsKey), qt.IsNil)
	close(resume)
	c.Assert(<-done, qt.Equals, "v1")

	c.Assert(qc.IsStale(forecastsKey), qt.IsTrue)
	data, err := qc.Fetch(ctx, forecastsKey, fetch)
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.Equals, "v2")
	c.Assert(qc.IsStale(forecastsKey), qt.IsFalse)
}

package query

import "context"

// MutationMeta is declared at each mutation call site. InvalidatesQuery lists
// the key prefix made stale when the mutation settles, whatever its outcome.
// Omitting it leaves observers showing stale data.
type MutationMeta struct {
	InvalidatesQuery Key
	SuccessMessage   string
	ErrorMessage     string
}

type Mutation struct {
	Fn        func(ctx context.Context) (any, error)
	OnSuccess func(data any)
	OnError   func(err error)
	Meta      MutationMeta
}

// Mutate runs m once. On success the call-site OnSuccess runs before the
// success notification; on failure the error is returned unchanged and the
// cache keeps its prior data. Either way the declared key is invalidated.
func (c *Client) Mutate(ctx context.Context, m Mutation) (any, error) {
	data, err := m.Fn(ctx)
	if err != nil {
		if m.OnError != nil {
			m.OnError(err)
		}
		if c.notifier != nil && m.Meta.ErrorMessage != "" {
			c.notifier.Error(m.Meta.ErrorMessage, err)
		}
	} else {
		if m.OnSuccess != nil {
			m.OnSuccess(data)
		}
		if c.notifier != nil && m.Meta.SuccessMessage != "" {
			c.notifier.Success(m.Meta.SuccessMessage)
		}
	}

	if m.Meta.InvalidatesQuery != nil {
		// A refetch failure is visible on the observer; the mutation result
		// stands on its own.
		_ = c.Invalidate(ctx, m.Meta.InvalidatesQuery)
	}
	return data, err
}

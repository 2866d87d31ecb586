package tokens

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type storeFixture struct {
	ott      OneTimeTokenStore
	sessions SessionStore
	advance  func(time.Duration)
}

func fixtures(t *testing.T) map[string]storeFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := &clock{now: time.Now()}
	memOTT := NewMemoryOneTimeTokenStore()
	memOTT.now = clk.Now
	memSess := NewMemorySessionStore()
	memSess.now = clk.Now

	return map[string]storeFixture{
		"redis": {
			ott:      NewRedisOneTimeTokenStore(rdb),
			sessions: NewRedisSessionStore(rdb),
			advance:  mr.FastForward,
		},
		"memory": {
			ott:      memOTT,
			sessions: memSess,
			advance:  clk.Advance,
		},
	}
}

func TestOneTimeToken_ConsumedExactlyOnce(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tok, err := NewToken()
			require.NoError(t, err)

			require.NoError(t, f.ott.Save(ctx, PurposeResetPassword, tok, "u_1", time.Hour))

			val, err := f.ott.Consume(ctx, PurposeResetPassword, tok)
			require.NoError(t, err)
			assert.Equal(t, "u_1", val)

			_, err = f.ott.Consume(ctx, PurposeResetPassword, tok)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestOneTimeToken_PurposeIsolation(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, f.ott.Save(ctx, PurposeConfirmEmail, "abc", "u_1", time.Hour))

			_, err := f.ott.Consume(ctx, PurposeResetPassword, "abc")
			assert.ErrorIs(t, err, ErrTokenInvalid)

			val, err := f.ott.Consume(ctx, PurposeConfirmEmail, "abc")
			require.NoError(t, err)
			assert.Equal(t, "u_1", val)
		})
	}
}

func TestOneTimeToken_Expires(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, f.ott.Save(ctx, PurposeConfirmEmail, "abc", "u_1", time.Minute))
			f.advance(2 * time.Minute)

			_, err := f.ott.Consume(ctx, PurposeConfirmEmail, "abc")
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestOneTimeToken_SaveValidation(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Error(t, f.ott.Save(ctx, PurposeConfirmEmail, "", "u_1", time.Minute))
			assert.Error(t, f.ott.Save(ctx, PurposeConfirmEmail, "abc", "", time.Minute))
			assert.Error(t, f.ott.Save(ctx, PurposeConfirmEmail, "abc", "u_1", 0))

			_, err := f.ott.Consume(ctx, PurposeConfirmEmail, "")
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestSessions_Lifecycle(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := f.sessions.Create(ctx, "u_1", time.Hour)
			require.NoError(t, err)
			require.NotEmpty(t, id)

			uid, err := f.sessions.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "u_1", uid)

			require.NoError(t, f.sessions.Delete(ctx, id))
			_, err = f.sessions.Get(ctx, id)
			assert.ErrorIs(t, err, ErrSessionNotFound)

			assert.NoError(t, f.sessions.Delete(ctx, id))
		})
	}
}

func TestSessions_DeleteUser(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, err := f.sessions.Create(ctx, "u_1", time.Hour)
			require.NoError(t, err)
			b, err := f.sessions.Create(ctx, "u_1", time.Hour)
			require.NoError(t, err)
			other, err := f.sessions.Create(ctx, "u_2", time.Hour)
			require.NoError(t, err)

			require.NoError(t, f.sessions.DeleteUser(ctx, "u_1"))

			for _, id := range []string{a, b} {
				_, err := f.sessions.Get(ctx, id)
				assert.ErrorIs(t, err, ErrSessionNotFound)
			}
			uid, err := f.sessions.Get(ctx, other)
			require.NoError(t, err)
			assert.Equal(t, "u_2", uid)
		})
	}
}

func TestSessions_Expire(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := f.sessions.Create(ctx, "u_1", time.Minute)
			require.NoError(t, err)

			f.advance(2 * time.Minute)
			_, err = f.sessions.Get(ctx, id)
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestHashIsStableAndOpaque(t *testing.T) {
	assert.Equal(t, Hash("abc"), Hash("abc"))
	assert.NotEqual(t, "abc", Hash("abc"))
	assert.Len(t, Hash("abc"), 64)
}

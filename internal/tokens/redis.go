package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type RedisOneTimeTokenStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisOneTimeTokenStore(rdb *goredis.Client) *RedisOneTimeTokenStore {
	return &RedisOneTimeTokenStore{rdb: rdb, prefix: "weaver:ott:"}
}

func (s *RedisOneTimeTokenStore) Save(ctx context.Context, purpose Purpose, token, value string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" || value == "" {
		return errors.New("token and value are required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	return s.rdb.Set(ctx, s.key(purpose, token), value, ttl).Err()
}

func (s *RedisOneTimeTokenStore) Consume(ctx context.Context, purpose Purpose, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenInvalid
	}
	val, err := s.rdb.GetDel(ctx, s.key(purpose, token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrTokenInvalid
		}
		return "", fmt.Errorf("ott consume: %w", err)
	}
	return val, nil
}

func (s *RedisOneTimeTokenStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisOneTimeTokenStore) key(purpose Purpose, token string) string {
	return s.prefix + string(purpose) + ":" + Hash(token)
}

// RedisSessionStore stores sess:<hash> -> userID with TTL and tracks each
// user's sessions in usess:<userID> for bulk revocation.
type RedisSessionStore struct {
	rdb        *goredis.Client
	sessPrefix string
	userPrefix string
}

func NewRedisSessionStore(rdb *goredis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		rdb:        rdb,
		sessPrefix: "weaver:sess:",
		userPrefix: "weaver:usess:",
	}
}

func (s *RedisSessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	id, err := NewToken()
	if err != nil {
		return "", err
	}

	hashed := Hash(id)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.sessPrefix+hashed, userID, ttl)
	pipe.SAdd(ctx, s.userPrefix+userID, hashed)
	pipe.Expire(ctx, s.userPrefix+userID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return id, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionNotFound
	}
	uid, err := s.rdb.Get(ctx, s.sessPrefix+Hash(sessionID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("session get: %w", err)
	}
	return uid, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	hashed := Hash(sessionID)
	uid, err := s.rdb.GetDel(ctx, s.sessPrefix+hashed).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		return fmt.Errorf("session delete: %w", err)
	}
	return s.rdb.SRem(ctx, s.userPrefix+uid, hashed).Err()
}

func (s *RedisSessionStore) DeleteUser(ctx context.Context, userID string) error {
	members, err := s.rdb.SMembers(ctx, s.userPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("session list: %w", err)
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, s.sessPrefix+m)
	}
	keys = append(keys, s.userPrefix+userID)
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

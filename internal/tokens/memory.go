package tokens

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryOneTimeTokenStore is the single-process fallback used when Redis is
// not configured.
type MemoryOneTimeTokenStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryOneTimeTokenStore() *MemoryOneTimeTokenStore {
	return &MemoryOneTimeTokenStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryOneTimeTokenStore) Save(_ context.Context, purpose Purpose, token, value string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" || value == "" {
		return errors.New("token and value are required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memoryKey(purpose, token)] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryOneTimeTokenStore) Consume(_ context.Context, purpose Purpose, token string) (string, error) {
	key := memoryKey(purpose, strings.TrimSpace(token))
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", ErrTokenInvalid
	}
	delete(s.entries, key)
	if e.expired(s.now()) {
		return "", ErrTokenInvalid
	}
	return e.value, nil
}

func (s *MemoryOneTimeTokenStore) Ping(context.Context) error { return nil }

func memoryKey(purpose Purpose, token string) string {
	return string(purpose) + ":" + Hash(token)
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	byUser   map[string]map[string]struct{}
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]entry),
		byUser:   make(map[string]map[string]struct{}),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	id, err := NewToken()
	if err != nil {
		return "", err
	}
	hashed := Hash(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[hashed] = entry{value: userID, expiresAt: s.now().Add(ttl)}
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][hashed] = struct{}{}
	return id, nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (string, error) {
	hashed := Hash(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[hashed]
	if !ok {
		return "", ErrSessionNotFound
	}
	if e.expired(s.now()) {
		s.removeLocked(hashed, e.value)
		return "", ErrSessionNotFound
	}
	return e.value, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	hashed := Hash(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[hashed]; ok {
		s.removeLocked(hashed, e.value)
	}
	return nil
}

func (s *MemorySessionStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hashed := range s.byUser[userID] {
		delete(s.sessions, hashed)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *MemorySessionStore) Ping(context.Context) error { return nil }

func (s *MemorySessionStore) removeLocked(hashed, userID string) {
	delete(s.sessions, hashed)
	if set := s.byUser[userID]; set != nil {
		delete(set, hashed)
		if len(set) == 0 {
			delete(s.byUser, userID)
		}
	}
}

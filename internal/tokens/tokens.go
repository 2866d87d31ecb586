package tokens

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTokenInvalid    = errors.New("token is invalid, expired or already used")
	ErrSessionNotFound = errors.New("session not found or expired")
)

// Purpose scopes a one-time token so a code issued for one flow cannot be
// redeemed by another.
type Purpose string

const (
	PurposeConfirmEmail  Purpose = "confirm_email"
	PurposeChangeEmail   Purpose = "change_email"
	PurposeResetPassword Purpose = "reset_password"
)

// OneTimeTokenStore keeps hashed single-use codes with a TTL.
type OneTimeTokenStore interface {
	Save(ctx context.Context, purpose Purpose, token, value string, ttl time.Duration) error
	// Consume returns the stored value and deletes it atomically.
	Consume(ctx context.Context, purpose Purpose, token string) (string, error)
	Ping(ctx context.Context) error
}

// SessionStore keeps server-side cookie sessions.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
	// DeleteUser drops every session of a user.
	DeleteUser(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

// NewToken returns a URL-safe random code of 32 bytes.
func NewToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Hash is the storage form of a token.
func Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

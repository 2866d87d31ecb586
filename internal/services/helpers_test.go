package services

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/database"
	"github.com/weaverhq/weaver/internal/mail"
	"github.com/weaverhq/weaver/internal/models"
	"github.com/weaverhq/weaver/internal/tokens"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "Passw0rd!"

type mockSender struct {
	mock.Mock
	mu   sync.Mutex
	sent []*mail.Message
}

func (m *mockSender) Send(ctx context.Context, msg *mail.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.sent = append(m.sent, msg)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *mockSender) Name() string { return "mock" }

func (m *mockSender) last(t *testing.T) *mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}

func newMockSender() *mockSender {
	m := &mockSender{}
	m.On("Send", mock.Anything, mock.Anything).Return(nil)
	return m
}

type fixture struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions *tokens.MemorySessionStore
	codes    *tokens.MemoryOneTimeTokenStore
	mailer   *mockSender
	auth     *AuthService
	users    *UserService
	forecast *ForecastService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		DBDriver:         "sqlite",
		SQLitePath:       ":memory:",
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
		SessionExpiry:    time.Hour,
		ConfirmTokenTTL:  time.Hour,
		ResetTokenTTL:    time.Hour,
		PublicBaseURL:    "http://weaver.test",
		TOTPIssuer:       "Weaver",
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db, &models.WeatherForecast{}))
	require.NoError(t, database.Seed(db, cfg))

	f := &fixture{
		db:       db,
		cfg:      cfg,
		sessions: tokens.NewMemorySessionStore(),
		codes:    tokens.NewMemoryOneTimeTokenStore(),
		mailer:   newMockSender(),
	}
	f.auth = NewAuthService(db, cfg, f.sessions, f.codes, f.mailer)
	f.users = NewUserService(db, f.sessions)
	f.forecast = NewForecastService(db)
	return f
}

// createUser inserts a confirmed account with the given role directly.
func (f *fixture) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	var r models.Role
	require.NoError(t, f.db.Where("name = ?", role).First(&r).Error)

	user := models.User{
		ID:             models.NewID(models.UserIDPrefix),
		Email:          email,
		UserName:       email,
		PasswordHash:   string(hash),
		EmailConfirmed: true,
		SecurityStamp:  uuid.NewString(),
		Roles:          []models.Role{r},
	}
	require.NoError(t, f.db.Omit("Roles.*").Create(&user).Error)
	return &user
}

// linkParams extracts the query of the confirmation link in a message.
func linkParams(t *testing.T, msg *mail.Message) url.Values {
	t.Helper()
	i := strings.Index(msg.TextBody, "http")
	require.GreaterOrEqual(t, i, 0, "no link in %q", msg.TextBody)
	u, err := url.Parse(strings.TrimSpace(msg.TextBody[i:]))
	require.NoError(t, err)
	return u.Query()
}

func resetCode(t *testing.T, msg *mail.Message) string {
	t.Helper()
	const prefix = "Your reset code is: "
	require.True(t, strings.HasPrefix(msg.TextBody, prefix))
	return strings.TrimPrefix(msg.TextBody, prefix)
}

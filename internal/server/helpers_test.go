package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/database"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/mail"
	"github.com/weaverhq/weaver/internal/middleware"
	"github.com/weaverhq/weaver/internal/modules"
	"github.com/weaverhq/weaver/internal/tokens"
	"github.com/weaverhq/weaver/internal/validation"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@weaver.test"
	adminPassword = "Admin123!"
	userPassword  = "Passw0rd!"
)

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

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockSender) last(t *testing.T) *mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
	mailer *mockSender
}

func newTestServer(t *testing.T, mailErr error) *testServer {
	t.Helper()
	cfg := &config.Config{
		AppEnv:             "test",
		DBDriver:           "sqlite",
		SQLitePath:         ":memory:",
		JWTSecret:          "test-secret",
		JWTAccessExpiry:    time.Hour,
		JWTRefreshExpiry:   24 * time.Hour,
		SessionExpiry:      time.Hour,
		ConfirmTokenTTL:    time.Hour,
		ResetTokenTTL:      time.Hour,
		PublicBaseURL:      "http://weaver.test",
		ConfirmRedirectURL: "/confirmed",
		TOTPIssuer:         "Weaver",
		CORSOrigins:        "*",
		AdminEmail:         adminEmail,
		AdminPassword:      adminPassword,
	}

	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	mods := DefaultModules()
	require.NoError(t, database.Migrate(db, modules.Models(mods)...))
	require.NoError(t, database.Seed(db, cfg))

	validator, err := validation.New()
	require.NoError(t, err)

	mailer := &mockSender{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(mailErr)

	app := New(Dependencies{
		Config:    cfg,
		DB:        db,
		Validator: validator,
		Sessions:  tokens.NewMemorySessionStore(),
		Codes:     tokens.NewMemoryOneTimeTokenStore(),
		Mailer:    mailer,
		Modules:   mods,
	})
	return &testServer{app: app, db: db, cfg: cfg, mailer: mailer}
}

// request describes one call against the in-process app.
type request struct {
	method  string
	path    string
	body    interface{}
	session string
	bearer  string
	cookies []*http.Cookie
	headers map[string]string
}

func (s *testServer) do(t *testing.T, r request) *http.Response {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		switch b := r.body.(type) {
		case string:
			body = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if r.session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: r.session})
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	if r.bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+r.bearer)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func decodeProblem(t *testing.T, resp *http.Response) dto.Problem {
	t.Helper()
	require.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	var p dto.Problem
	decodeJSON(t, resp, &p)
	return p
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// registerConfirmed registers an account and follows its confirmation link.
func (s *testServer) registerConfirmed(t *testing.T, email string) {
	t.Helper()
	resp := s.do(t, request{method: http.MethodPost, path: "/api/auth/register",
		body: dto.RegisterRequest{Email: email, Password: userPassword}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := s.mailer.last(t)
	i := strings.Index(msg.TextBody, "http")
	require.GreaterOrEqual(t, i, 0)
	link, err := url.Parse(msg.TextBody[i:])
	require.NoError(t, err)

	resp = s.do(t, request{method: http.MethodGet, path: link.RequestURI()})
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

// loginCookie signs in with a persistent cookie session and returns its id.
func (s *testServer) loginCookie(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.do(t, request{method: http.MethodPost, path: "/api/auth/login?useCookies=true",
		body: dto.LoginRequest{Email: email, Password: password}})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	cookie := findCookie(resp, middleware.SessionCookieName)
	require.NotNil(t, cookie)
	return cookie.Value
}

func (s *testServer) member(t *testing.T, email string) string {
	t.Helper()
	s.registerConfirmed(t, email)
	return s.loginCookie(t, email, userPassword)
}

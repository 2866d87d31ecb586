package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionExpiry)
	assert.Equal(t, "log", cfg.MailTransport)
	assert.Equal(t, 30, cfg.LogRetentionDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("PUBLIC_BASE_URL", "https://weaver.example/")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, ":memory:", cfg.DSN())
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Equal(t, "https://weaver.example", cfg.PublicBaseURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "soon")
	t.Setenv("SMTP_PORT", "abc")

	cfg := Load()

	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DBDriver: "postgres"}
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "secret"
	require.Error(t, cfg.Validate(), "postgres needs a password")

	cfg.DBPassword = "pw"
	require.NoError(t, cfg.Validate())

	sqlite := &Config{DBDriver: "sqlite", JWTSecret: "secret"}
	require.NoError(t, sqlite.Validate())
}

func TestDSN_Postgres(t *testing.T) {
	cfg := &Config{DBDriver: "postgres", DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}

func TestDSN_MySQL(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "3306"}
	assert.Equal(t, "u:p@tcp(db:3306)/n?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}

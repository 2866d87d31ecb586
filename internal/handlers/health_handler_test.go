package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaverhq/weaver/internal/dto"
	"gorm.io/gorm"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth_HidesFailureCauses(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	cache := pingFunc(func(context.Context) error {
		return errors.New("dial tcp 10.0.0.7:6379: connection refused")
	})

	app := fiber.New()
	app.Get("/api/health", NewHealthHandler(db, cache).Check)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "10.0.0.7")
	assert.NotContains(t, string(body), "closed")

	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "unhealthy", health.DB)
	assert.Equal(t, "unhealthy", health.Cache)
}

package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/database"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/metrics"
	"gorm.io/gorm"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    *gorm.DB
	cache Pinger
}

func NewHealthHandler(db *gorm.DB, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"

	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		slog.Error("health check failed", "dependency", "db", "error", err)
		dbStatus = "unhealthy"
		status = "degraded"
	}
	metrics.SetDependencyHealth("db", dbStatus == "ok")

	cacheStatus := "ok"
	if err := h.cache.Ping(c.UserContext()); err != nil {
		slog.Error("health check failed", "dependency", "cache", "error", err)
		cacheStatus = "unhealthy"
		status = "degraded"
	}
	metrics.SetDependencyHealth("cache", cacheStatus == "ok")

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Cache:     cacheStatus,
	})
}

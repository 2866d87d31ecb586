package forecasts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/handlers"
	"github.com/weaverhq/weaver/internal/middleware"
	"github.com/weaverhq/weaver/internal/models"
	"github.com/weaverhq/weaver/internal/modules"
	"github.com/weaverhq/weaver/internal/services"
)

// Module serves the caller's own weather forecasts.
type Module struct{}

func New() *Module {
	return &Module{}
}

func (m *Module) ID() string { return "weather-forecasts" }

func (m *Module) Models() []interface{} {
	return []interface{}{
		&models.WeatherForecast{},
	}
}

func (m *Module) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	svc := services.NewForecastService(deps.DB)
	handler := handlers.NewForecastHandler(svc, deps.Validator)

	group := router.Group("/weather-forecasts", middleware.Require(middleware.Authenticated()))
	group.Get("/", handler.List)
	group.Post("/", handler.Create)
	group.Post("/bulk-delete", handler.BulkDelete)
	group.Get("/:id", handler.Get)
	group.Put("/:id", handler.Update)
	group.Delete("/:id", handler.Delete)
}

package users

import (
	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/handlers"
	"github.com/weaverhq/weaver/internal/middleware"
	"github.com/weaverhq/weaver/internal/models"
	"github.com/weaverhq/weaver/internal/modules"
	"github.com/weaverhq/weaver/internal/services"
)

// Module exposes the caller's profile and admin-only account management.
type Module struct{}

func New() *Module {
	return &Module{}
}

func (m *Module) ID() string { return "users" }

// Models is empty: accounts are migrated with the shared identity tables.
func (m *Module) Models() []interface{} { return nil }

func (m *Module) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	svc := services.NewUserService(deps.DB, deps.Sessions)
	handler := handlers.NewUserHandler(svc, deps.Validator)

	adminOnly := middleware.Require(middleware.HasRole(models.RoleAdmin))

	group := router.Group("/users", middleware.Require(middleware.Authenticated()))
	group.Get("/me", handler.Me)
	group.Get("/", adminOnly, handler.List)
	group.Post("/bulk-delete", adminOnly, handler.BulkDelete)
	group.Delete("/:id", adminOnly, handler.Delete)
}

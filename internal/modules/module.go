package modules

import (
	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/tokens"
	"github.com/weaverhq/weaver/internal/validation"
	"gorm.io/gorm"
)

// Deps are the shared collaborators handed to every module.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Validator *validation.Validator
	Sessions  tokens.SessionStore
}

// Module is a self-contained feature area of the API.
type Module interface {
	// ID returns the unique module identifier.
	ID() string

	// Models returns the GORM model pointers the module owns, for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the module on the /api group. Callers are
	// already resolved by the authentication middleware; the module applies
	// its own guards.
	RegisterRoutes(router fiber.Router, deps *Deps)
}

// Models collects the models of all modules.
func Models(mods []Module) []interface{} {
	var out []interface{}
	for _, m := range mods {
		out = append(out, m.Models()...)
	}
	return out
}

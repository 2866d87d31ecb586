package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/identity"
	"github.com/weaverhq/weaver/internal/problem"
)

// Predicate is a capability check evaluated against the caller.
type Predicate func(p *identity.Principal) bool

func Authenticated() Predicate {
	return func(p *identity.Principal) bool { return true }
}

func HasRole(role string) Predicate {
	return func(p *identity.Principal) bool { return p.HasRole(role) }
}

// Require rejects anonymous callers with 401 and callers failing any
// predicate with 403.
func Require(preds ...Predicate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := identity.GetPrincipal(c)
		if p == nil {
			return problem.Unauthorized(c)
		}
		for _, pred := range preds {
			if !pred(p) {
				return problem.Forbidden(c)
			}
		}
		return c.Next()
	}
}

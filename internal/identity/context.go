package identity

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

var ErrNoPrincipal = errors.New("no authenticated principal in context")

// Scheme names how the caller authenticated.
type Scheme string

const (
	SchemeCookie Scheme = "cookie"
	SchemeBearer Scheme = "bearer"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Email     string
	Roles     []string
	Scheme    Scheme
	SessionID string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// SetPrincipal stores the caller on the Fiber context.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}

// GetPrincipal returns the caller, or nil for anonymous requests.
func GetPrincipal(c *fiber.Ctx) *Principal {
	if p, ok := c.Locals(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

// GetUserID extracts the caller's user id.
func GetUserID(c *fiber.Ctx) (string, error) {
	p := GetPrincipal(c)
	if p == nil || p.UserID == "" {
		return "", ErrNoPrincipal
	}
	return p.UserID, nil
}

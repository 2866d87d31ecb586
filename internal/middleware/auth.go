package middleware

import (
	"errors"
	"log/slog"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/identity"
	"github.com/weaverhq/weaver/internal/services"
)

// SessionCookieName carries the opaque id of a server-side cookie session.
const SessionCookieName = "weaver_session"

const tokenKey = "user"

// Authenticate resolves the caller from the session cookie or, failing
// that, from a bearer access token. It never rejects a request: anonymous
// callers pass through without a principal and route guards decide.
func Authenticate(cfg *config.Config, auth *services.AuthService) fiber.Handler {
	bearer := jwtware.New(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool {
			return identity.GetPrincipal(c) != nil || c.Get(fiber.HeaderAuthorization) == ""
		},
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: tokenKey,
		Claims:     &services.AccessClaims{},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return c.Next()
			}
			claims, ok := token.Claims.(*services.AccessClaims)
			if !ok {
				return c.Next()
			}
			user, err := auth.ResolveUser(c.UserContext(), claims.Subject)
			if err != nil {
				return c.Next()
			}
			// Password resets rotate the stamp and retire older tokens.
			if user.SecurityStamp != claims.SecurityStamp {
				return c.Next()
			}
			identity.SetPrincipal(c, &identity.Principal{
				UserID: user.ID,
				Email:  user.Email,
				Roles:  user.RoleNames(),
				Scheme: identity.SchemeBearer,
			})
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Next()
		},
	})

	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(SessionCookieName); sid != "" {
			if p := sessionPrincipal(c, auth, sid); p != nil {
				identity.SetPrincipal(c, p)
			}
		}
		return bearer(c)
	}
}

func sessionPrincipal(c *fiber.Ctx, auth *services.AuthService, sid string) *identity.Principal {
	ctx := c.UserContext()
	uid, err := auth.SessionUser(ctx, sid)
	if err != nil {
		if !errors.Is(err, services.ErrUnauthenticated) {
			slog.Error("session lookup failed", "error", err, "path", c.Path())
		}
		return nil
	}
	user, err := auth.ResolveUser(ctx, uid)
	if err != nil {
		return nil
	}
	return &identity.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     user.RoleNames(),
		Scheme:    identity.SchemeCookie,
		SessionID: sid,
	}
}

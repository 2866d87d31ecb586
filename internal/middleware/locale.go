package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/locale"
)

// Locale resolves the request culture: culture cookie, then
// Accept-Language, then the default.
func Locale() fiber.Handler {
	return func(c *fiber.Ctx) error {
		culture := locale.Resolve(c.Cookies(locale.CookieName), c.Get(fiber.HeaderAcceptLanguage))
		locale.SetCulture(c, culture)
		c.Set(fiber.HeaderContentLanguage, culture)
		return c.Next()
	}
}

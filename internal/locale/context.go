package locale

import "github.com/gofiber/fiber/v2"

const contextKey = "culture"

// SetCulture stores the effective culture of the request.
func SetCulture(c *fiber.Ctx, culture string) {
	c.Locals(contextKey, culture)
}

// FromContext returns the effective culture of the request, or Default when
// the locale middleware did not run.
func FromContext(c *fiber.Ctx) string {
	if culture, ok := c.Locals(contextKey).(string); ok && culture != "" {
		return culture
	}
	return Default
}

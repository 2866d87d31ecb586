package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaverhq/weaver/internal/identity"
	"github.com/weaverhq/weaver/internal/locale"
)

func TestRequire(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Test-Role"); role != "" {
			identity.SetPrincipal(c, &identity.Principal{UserID: "u_1", Roles: []string{role}})
		}
		return c.Next()
	})
	app.Get("/any", Require(Authenticated()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/admin", Require(HasRole("Admin")), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	cases := []struct {
		path string
		role string
		want int
	}{
		{"/any", "", fiber.StatusUnauthorized},
		{"/any", "Member", fiber.StatusNoContent},
		{"/admin", "", fiber.StatusUnauthorized},
		{"/admin", "Member", fiber.StatusForbidden},
		{"/admin", "Admin", fiber.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.path, nil)
		if tc.role != "" {
			req.Header.Set("X-Test-Role", tc.role)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "%s as %q", tc.path, tc.role)
	}
}

func TestLocale(t *testing.T) {
	app := fiber.New()
	app.Use(Locale())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(locale.FromContext(c))
	})

	cases := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"default", "", "", "en"},
		{"header", "", "fr-CA,fr;q=0.9", "fr"},
		{"cookie wins", "c=en|uic=en", "fr", "en"},
		{"unsupported cookie ignored", "c=de|uic=de", "fr", "fr"},
		{"encoded cookie", "c%3Dfr%7Cuic%3Dfr", "en", "fr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.cookie != "" {
				req.Header.Set("Cookie", locale.CookieName+"="+tc.cookie)
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Header.Get(fiber.HeaderContentLanguage))
		})
	}
}

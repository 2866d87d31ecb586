package routes

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/docs"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/handlers"
	"github.com/weaverhq/weaver/internal/metrics"
	"github.com/weaverhq/weaver/internal/middleware"
	"github.com/weaverhq/weaver/internal/modules"
	"github.com/weaverhq/weaver/internal/problem"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	deps *modules.Deps,
	authHandler *handlers.AuthHandler,
	cultureHandler *handlers.CultureHandler,
	healthHandler *handlers.HealthHandler,
	mods []modules.Module,
) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if cfg.IsDevelopment() {
		app.Get(docs.Path, docs.Handler())
	}

	api := app.Group("/api")

	// General API rate limiter per IP; 0 disables it.
	if cfg.RateLimitPerMinute > 0 {
		api.Use(rateLimiter(cfg.RateLimitPerMinute))
	}

	api.Get("/health", healthHandler.Check)

	// Culture (anonymous)
	api.Post("/culture", cultureHandler.Set)
	api.Delete("/culture", cultureHandler.Clear)

	// Auth: stricter per-IP limit
	auth := api.Group("/auth")
	if cfg.AuthRateLimitPerMinute > 0 {
		auth.Use(rateLimiter(cfg.AuthRateLimitPerMinute))
	}
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/confirmEmail", authHandler.ConfirmEmail)
	auth.Post("/resendConfirmationEmail", authHandler.ResendConfirmationEmail)
	auth.Post("/forgotPassword", authHandler.ForgotPassword)
	auth.Post("/resetPassword", authHandler.ResetPassword)

	signedIn := middleware.Require(middleware.Authenticated())
	auth.Post("/logout", signedIn, authHandler.Logout)
	auth.Get("/info", signedIn, authHandler.Info)
	auth.Post("/info", signedIn, authHandler.UpdateInfo)
	auth.Post("/manage/2fa", signedIn, authHandler.TwoFactor)

	for _, m := range mods {
		m.RegisterRoutes(api, deps)
	}

	if cfg.StaticDir != "" {
		serveSPA(app, cfg.StaticDir)
	}
}

func rateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return problem.Write(c, fiber.StatusTooManyRequests, dto.MsgTooManyRequests)
		},
	})
}

// serveSPA serves the client bundle and falls back to index.html for
// client-side routes. Unknown API paths still answer 404.
func serveSPA(app *fiber.App, dir string) {
	app.Static("/", dir)
	index := filepath.Join(dir, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/api" {
			return problem.NotFound(c)
		}
		return c.SendFile(index)
	})
}

package server

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/handlers"
	"github.com/weaverhq/weaver/internal/mail"
	"github.com/weaverhq/weaver/internal/middleware"
	"github.com/weaverhq/weaver/internal/modules"
	"github.com/weaverhq/weaver/internal/modules/forecasts"
	"github.com/weaverhq/weaver/internal/modules/users"
	"github.com/weaverhq/weaver/internal/problem"
	"github.com/weaverhq/weaver/internal/routes"
	"github.com/weaverhq/weaver/internal/services"
	"github.com/weaverhq/weaver/internal/tokens"
	"github.com/weaverhq/weaver/internal/validation"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP server is built from.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Validator *validation.Validator
	Sessions  tokens.SessionStore
	Codes     tokens.OneTimeTokenStore
	Mailer    mail.Sender
	Modules   []modules.Module
}

// DefaultModules returns the feature modules of the API.
func DefaultModules() []modules.Module {
	return []modules.Module{
		forecasts.New(),
		users.New(),
	}
}

// New assembles the Fiber application: global middleware, auth and culture
// endpoints, and the routes of every module.
func New(d Dependencies) *fiber.App {
	cfg := d.Config
	authService := services.NewAuthService(d.DB, cfg, d.Sessions, d.Codes, d.Mailer)

	app := fiber.New(fiber.Config{
		BodyLimit:             4 * 1024 * 1024,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(compress.New())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.Metrics())
	app.Use(middleware.Locale())
	app.Use(middleware.Authenticate(cfg, authService))

	deps := &modules.Deps{
		DB:        d.DB,
		Config:    cfg,
		Validator: d.Validator,
		Sessions:  d.Sessions,
	}

	routes.Setup(app, cfg, deps,
		handlers.NewAuthHandler(authService, d.Validator, cfg),
		handlers.NewCultureHandler(),
		handlers.NewHealthHandler(d.DB, d.Sessions),
		d.Modules,
	)
	return app
}

// ErrorHandler renders unhandled errors as problem responses. Server errors
// are logged and reported, and their cause is never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", problem.RequestID(c),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		return problem.Internal(c)
	}

	detail := fe.Message
	if code == fiber.StatusNotFound {
		detail = dto.MsgNotFound
	}
	return problem.Write(c, code, detail)
}

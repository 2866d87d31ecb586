package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/locale"
	"github.com/weaverhq/weaver/internal/problem"
)

const cultureCookieLifetime = 365 * 24 * time.Hour

type CultureHandler struct{}

func NewCultureHandler() *CultureHandler {
	return &CultureHandler{}
}

// Set persists the culture cookie. The cookie is readable by client script.
func (h *CultureHandler) Set(c *fiber.Ctx) error {
	var req dto.CultureRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errInvalidBody)
	}

	culture, err := locale.Normalize(req.Culture)
	if err != nil {
		detail := dto.MsgCultureUnsupported
		if errors.Is(err, locale.ErrCultureRequired) {
			detail = dto.MsgCultureRequired
		}
		return problem.Write(c, fiber.StatusBadRequest, detail)
	}

	c.Cookie(cultureCookie(c, locale.CookieValue(culture), time.Now().Add(cultureCookieLifetime)))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CultureHandler) Clear(c *fiber.Ctx) error {
	c.Cookie(cultureCookie(c, "", time.Unix(0, 0)))
	return c.SendStatus(fiber.StatusNoContent)
}

func cultureCookie(c *fiber.Ctx, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     locale.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: false,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

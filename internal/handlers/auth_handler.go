package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/identity"
	"github.com/weaverhq/weaver/internal/metrics"
	"github.com/weaverhq/weaver/internal/middleware"
	"github.com/weaverhq/weaver/internal/problem"
	"github.com/weaverhq/weaver/internal/services"
	"github.com/weaverhq/weaver/internal/validation"
)

type AuthHandler struct {
	authService *services.AuthService
	validator   *validation.Validator
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, validator *validation.Validator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, validator: validator, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.Register(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	metrics.RecordRegistration()
	return c.SendStatus(fiber.StatusOK)
}

// Login issues a cookie session when useCookies or useSessionCookies is set
// and a bearer token pair otherwise.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	useCookies := c.QueryBool("useCookies")
	useSessionCookies := c.QueryBool("useSessionCookies")

	res, err := h.authService.Login(c.UserContext(), &req, useCookies || useSessionCookies)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoginFailed),
			errors.Is(err, services.ErrLockedOut),
			errors.Is(err, services.ErrNotAllowed),
			errors.Is(err, services.ErrRequiresTwoFactor):
			metrics.RecordLogin(err.Error())
			return problem.Write(c, fiber.StatusUnauthorized, err.Error())
		}
		return err
	}
	metrics.RecordLogin("success")

	if res.Tokens != nil {
		return c.JSON(res.Tokens)
	}

	cookie := &fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    res.SessionID,
		Path:     "/",
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if useCookies && !useSessionCookies {
		cookie.Expires = time.Now().Add(h.cfg.SessionExpiry)
	} else {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	p := identity.GetPrincipal(c)
	if p != nil && p.Scheme == identity.SchemeCookie {
		if err := h.authService.Logout(c.UserContext(), p.SessionID); err != nil {
			return err
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) ConfirmEmail(c *fiber.Ctx) error {
	err := h.authService.ConfirmEmail(c.UserContext(), c.Query("userId"), c.Query("code"), c.Query("changedEmail"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(h.cfg.ConfirmRedirectURL, fiber.StatusFound)
}

// ResendConfirmationEmail and ForgotPassword answer 200 for any address so
// callers cannot learn which accounts exist.
func (h *AuthHandler) ResendConfirmationEmail(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errInvalidBody)
	}
	if req.Email != "" {
		h.authService.ResendConfirmationEmail(c.UserContext(), req.Email)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}
	h.authService.ForgotPassword(c.UserContext(), req.Email)
	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}
	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) Info(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.authService.ResolveUser(c.UserContext(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		Roles:            user.RoleNames(),
		IsEmailConfirmed: user.EmailConfirmed,
	})
}

func (h *AuthHandler) UpdateInfo(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateInfoRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.authService.UpdateInfo(c.UserContext(), uid, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) TwoFactor(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.TwoFactorRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, errInvalidBody)
		}
	}

	resp, err := h.authService.ManageTwoFactor(c.UserContext(), uid, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

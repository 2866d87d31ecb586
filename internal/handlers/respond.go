package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/identity"
	"github.com/weaverhq/weaver/internal/locale"
	"github.com/weaverhq/weaver/internal/problem"
	"github.com/weaverhq/weaver/internal/services"
	"github.com/weaverhq/weaver/internal/validation"
)

var errInvalidBody = errors.New("invalid request body")

// decode parses the JSON body into out and validates it in the request
// culture.
func decode(c *fiber.Ctx, v *validation.Validator, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return check(c, v, out)
}

func check(c *fiber.Ctx, v *validation.Validator, out interface{}) error {
	errs, err := v.Struct(out, locale.FromContext(c))
	if err != nil {
		return err
	}
	if errs != nil {
		return &services.ValidationError{Errors: errs}
	}
	return nil
}

// respondError maps service errors onto problem responses. Anything it does
// not recognize goes to the global error handler as a 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return problem.Validation(c, verr.Errors)
	case errors.Is(err, errInvalidBody):
		return problem.Write(c, fiber.StatusBadRequest, dto.MsgInvalidBody)
	case errors.Is(err, services.ErrNotFound):
		return problem.NotFound(c)
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, identity.ErrNoPrincipal):
		return problem.Unauthorized(c)
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrInvalidRefresh):
		return problem.Write(c, fiber.StatusUnauthorized, dto.MsgInvalidToken)
	}
	return err
}

func userID(c *fiber.Ctx) (string, error) {
	return identity.GetUserID(c)
}

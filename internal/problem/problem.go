// Package problem writes RFC 9457 problem details responses.
package problem

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/locale"
	"github.com/weaverhq/weaver/internal/validation"
)

const ContentType = "application/problem+json"

var types = map[int]string{
	fiber.StatusBadRequest:          dto.ProblemTypeBadRequest,
	fiber.StatusUnauthorized:        dto.ProblemTypeUnauthorized,
	fiber.StatusForbidden:           dto.ProblemTypeForbidden,
	fiber.StatusNotFound:            dto.ProblemTypeNotFound,
	fiber.StatusTooManyRequests:     dto.ProblemTypeTooMany,
	fiber.StatusInternalServerError: dto.ProblemTypeInternal,
}

// New builds a problem for status. detail is an English catalog message and
// is rendered in the request culture.
func New(c *fiber.Ctx, status int, detail string) *dto.Problem {
	title := utils.StatusMessage(status)
	if status == fiber.StatusInternalServerError {
		title = dto.InternalTitle
	}
	p := &dto.Problem{
		Type:      types[status],
		Title:     title,
		Status:    status,
		Instance:  c.Path(),
		RequestID: RequestID(c),
	}
	if detail != "" {
		p.Detail = validation.Translate(locale.FromContext(c), detail)
	}
	return p
}

// Write sends a problem response.
func Write(c *fiber.Ctx, status int, detail string) error {
	return Send(c, New(c, status, detail))
}

func Send(c *fiber.Ctx, p *dto.Problem) error {
	return c.Status(p.Status).JSON(p, ContentType)
}

// Validation sends a 400 problem carrying field errors.
func Validation(c *fiber.Ctx, errs map[string][]string) error {
	p := New(c, fiber.StatusBadRequest, "")
	p.Title = dto.ValidationTitle
	p.Errors = validation.TranslateErrors(locale.FromContext(c), errs)
	return Send(c, p)
}

func Unauthorized(c *fiber.Ctx) error {
	return Write(c, fiber.StatusUnauthorized, dto.MsgUnauthenticated)
}

func Forbidden(c *fiber.Ctx) error {
	return Write(c, fiber.StatusForbidden, dto.MsgForbidden)
}

func NotFound(c *fiber.Ctx) error {
	return Write(c, fiber.StatusNotFound, dto.MsgNotFound)
}

// Internal sends the generic 500 problem. The cause is never exposed.
func Internal(c *fiber.Ctx) error {
	return Write(c, fiber.StatusInternalServerError, dto.InternalDetail)
}

// RequestID returns the correlation id assigned by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

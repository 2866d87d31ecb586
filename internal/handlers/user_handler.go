package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/services"
	"github.com/weaverhq/weaver/internal/validation"
)

type UserHandler struct {
	service   *services.UserService
	validator *validation.Validator
}

func NewUserHandler(service *services.UserService, validator *validation.Validator) *UserHandler {
	return &UserHandler{service: service, validator: validator}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}
	me, err := h.service.Me(c.UserContext(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(me)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) BulkDelete(c *fiber.Ctx) error {
	var req dto.BulkDeleteUsersRequest
	if err := decodeIDs(c.Body(), &req.IDs); err != nil {
		return respondError(c, err)
	}
	if err := check(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}
	if err := h.service.BulkDelete(c.UserContext(), req.IDs); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

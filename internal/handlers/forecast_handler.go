package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/services"
	"github.com/weaverhq/weaver/internal/validation"
)

type ForecastHandler struct {
	service   *services.ForecastService
	validator *validation.Validator
}

func NewForecastHandler(service *services.ForecastService, validator *validation.Validator) *ForecastHandler {
	return &ForecastHandler{service: service, validator: validator}
}

func (h *ForecastHandler) List(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *ForecastHandler) Get(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}
	forecast, err := h.service.Get(c.UserContext(), uid, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(forecast)
}

func (h *ForecastHandler) Create(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CreateForecastRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	forecast, err := h.service.Create(c.UserContext(), uid, &req)
	if err != nil {
		return respondError(c, err)
	}

	c.Location(strings.TrimSuffix(c.Path(), "/") + "/" + forecast.ID)
	return c.Status(fiber.StatusCreated).JSON(forecast)
}

func (h *ForecastHandler) Update(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateForecastRequest
	if err := decode(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.service.Update(c.UserContext(), uid, c.Params("id"), &req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ForecastHandler) Delete(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(c.UserContext(), uid, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ForecastHandler) BulkDelete(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.BulkDeleteForecastsRequest
	if err := decodeIDs(c.Body(), &req.IDs); err != nil {
		return respondError(c, err)
	}
	if err := check(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	if _, err := h.service.BulkDelete(c.UserContext(), uid, req.IDs); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// decodeIDs accepts either {"ids": [...]} or a bare JSON array of ids.
func decodeIDs(body []byte, ids *[]string) error {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(body, ids); err != nil {
			return errInvalidBody
		}
		return nil
	}
	var wrapped struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return errInvalidBody
	}
	*ids = wrapped.IDs
	return nil
}

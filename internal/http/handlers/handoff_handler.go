package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "foodlink/internal/log"
	"foodlink/internal/services"
	"foodlink/internal/validate"
)

type HandoffHandler struct {
	Handoff *services.HandoffService
}

type validateBody struct {
	Code string `json:"code"`
}

func (h *HandoffHandler) Validate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	var in validateBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	code, ok := validate.Code(in.Code)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code must be 4-10 alphanumeric characters"})
	}

	d, err := h.Handoff.ValidateDelivery(actingAccount(c), id, code)
	switch err {
	case nil:
	case services.ErrNotFound, services.ErrNotYours:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	case services.ErrNotClaimed:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "donation is not awaiting validation"})
	case services.ErrCodeMismatch:
		applog.Security(c, "handoff.code.mismatch", map[string]any{"donation_id": id})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "handoff code does not match"})
	case services.ErrHandoffLocked:
		applog.Security(c, "handoff.locked", map[string]any{"donation_id": id})
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{"error": "too many failed attempts, validation locked"})
	default:
		applog.Error(c, "handoff.validate.fail", err, map[string]any{"donation_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not validate delivery"})
	}

	applog.Audit(c, "handoff.validated", map[string]any{"donation_id": id})
	return c.JSON(d)
}

type ratingBody struct {
	Rating int `json:"rating"`
}

func (h *HandoffHandler) Rate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	var in ratingBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if _, ok := validate.Rating(strconv.Itoa(in.Rating)); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be an integer from 1 to 5"})
	}

	d, err := h.Handoff.RateQuality(actingAccount(c), id, in.Rating)
	switch err {
	case nil:
	case services.ErrNotFound, services.ErrNotYours:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	case services.ErrNotDelivered:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "donation has not been delivered"})
	case services.ErrAlreadyRated:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "donation already rated"})
	default:
		applog.Error(c, "handoff.rate.fail", err, map[string]any{"donation_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not store rating"})
	}

	applog.Audit(c, "handoff.rated", map[string]any{"donation_id": id, "rating": in.Rating})
	return c.JSON(d)
}

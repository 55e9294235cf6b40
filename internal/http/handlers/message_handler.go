package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "foodlink/internal/log"
	"foodlink/internal/services"
	"foodlink/internal/validate"
)

type MessageHandler struct {
	Msgs *services.MessageService
}

func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	msgs, err := h.Msgs.Thread(actingAccount(c), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

type messageBody struct {
	Body string `json:"body"`
}

func (h *MessageHandler) Post(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	var in messageBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	body := strings.TrimSpace(in.Body)
	if body == "" || len(body) > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message must be 1-500 characters"})
	}

	m, err := h.Msgs.Post(actingAccount(c), id, body)
	switch err {
	case nil:
	case services.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	case services.ErrThreadClosed:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "messaging is only open while the donation is claimed"})
	default:
		applog.Error(c, "message.post.fail", err, map[string]any{"donation_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not post message"})
	}

	applog.Audit(c, "message.post", map[string]any{"donation_id": id, "sender": m.Sender})
	return c.Status(fiber.StatusCreated).JSON(m)
}

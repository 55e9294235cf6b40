package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	applog "foodlink/internal/log"
	"foodlink/internal/services"
	"foodlink/internal/validate"
)

type DonationHandler struct {
	Donations *services.DonationService
}

type postDonationBody struct {
	ItemName           string   `json:"itemName"`
	Description        string   `json:"description"`
	Quantity           int      `json:"quantity"`
	Unit               string   `json:"unit"`
	PricePerUnit       *float64 `json:"pricePerUnit"`
	PhotoURL           string   `json:"photoUrl"`
	PickupLocation     string   `json:"pickupLocation"`
	PickupInstructions string   `json:"pickupInstructions"`
	HandoffCode        string   `json:"handoffCode"`
	ExpiresAt          string   `json:"expiresAt"` // RFC 3339
}

func (h *DonationHandler) Create(c *fiber.Ctx) error {
	var in postDonationBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	name, ok := validate.Name(in.ItemName)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item name must be 1-60 characters"})
	}
	unit, ok := validate.Unit(in.Unit)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid unit"})
	}
	if in.Quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be positive"})
	}
	if in.PricePerUnit != nil && *in.PricePerUnit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must not be negative"})
	}
	loc, ok := validate.Name(in.PickupLocation)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pickup location required"})
	}
	if in.HandoffCode != "" {
		if _, ok := validate.Code(in.HandoffCode); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "handoff code must be 4-10 alphanumeric characters"})
		}
	}
	expires, err := time.Parse(time.RFC3339, in.ExpiresAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expiresAt must be RFC 3339"})
	}

	d, err := h.Donations.Post(actingAccount(c), services.PostInput{
		ItemName:           name,
		Description:        in.Description,
		Quantity:           in.Quantity,
		Unit:               unit,
		PricePerUnit:       in.PricePerUnit,
		PhotoURL:           in.PhotoURL,
		PickupLocation:     loc,
		PickupInstructions: in.PickupInstructions,
		HandoffCode:        in.HandoffCode,
		ExpiresAt:          expires,
	})
	if err != nil {
		if err == services.ErrExpired {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expiry must be in the future"})
		}
		applog.Error(c, "donation.post.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not post donation"})
	}
	applog.Audit(c, "donation.post", map[string]any{"donation_id": d.ID})
	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *DonationHandler) List(c *fiber.Ctx) error {
	listType, ok := validate.ListType(c.Query("list"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "list must be available|claimed|history|all"})
	}
	q := ""
	if raw := c.Query("q"); raw != "" {
		var ok bool
		if q, ok = validate.Q(raw); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid search query"})
		}
	}

	out, err := h.Donations.List(actingAccount(c), listType, q)
	if err != nil {
		applog.Error(c, "donation.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not list donations"})
	}
	return c.JSON(fiber.Map{"donations": out})
}

func (h *DonationHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	d, msgs, err := h.Donations.Get(actingAccount(c), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	return c.JSON(fiber.Map{"donation": d, "messages": msgs})
}

type claimBody struct {
	Quantity int `json:"quantity"`
}

func (h *DonationHandler) Claim(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	}
	in := claimBody{Quantity: 1}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}

	d, err := h.Donations.Claim(actingAccount(c), id, in.Quantity)
	switch err {
	case nil:
	case services.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "donation not found"})
	case services.ErrNotAvailable:
		applog.Security(c, "donation.claim.conflict", map[string]any{"donation_id": id})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "donation is no longer available"})
	case services.ErrExpired:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "donation has expired"})
	case services.ErrBadQuantity:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "requested quantity exceeds what is offered"})
	case services.ErrWrongRole:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only organizations can claim"})
	default:
		applog.Error(c, "donation.claim.fail", err, map[string]any{"donation_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not claim donation"})
	}

	applog.Audit(c, "donation.claim", map[string]any{"donation_id": id, "quantity": in.Quantity})
	return c.JSON(d)
}

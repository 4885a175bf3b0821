package handlers

import (
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	review *services.ReviewService
	roles  *services.RoleService
}

func NewAdminHandler(review *services.ReviewService, roles *services.RoleService) *AdminHandler {
	return &AdminHandler{review: review, roles: roles}
}

func (h *AdminHandler) Feature(c *fiber.Ctx) error {
	actorID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	item, err := h.review.Feature(c.UserContext(), itemID, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *AdminHandler) Unfeature(c *fiber.Ctx) error {
	actorID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	item, err := h.review.Unfeature(c.UserContext(), itemID, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *AdminHandler) SetProtection(c *fiber.Ctx) error {
	actorID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.ProtectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.review.SetProtection(c.UserContext(), itemID, actorID, models.ProtectionLevel(req.Level))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *AdminHandler) Recompute(c *fiber.Ctx) error {
	_, userID, err := actorAndID(c)
	if err != nil {
		return err
	}

	profile, err := h.roles.RecomputeRole(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	actorID, userID, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	profile, err := h.roles.SetRole(c.UserContext(), actorID, userID, models.Role(req.Role))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

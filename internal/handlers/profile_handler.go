package handlers

import (
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	roles    *services.RoleService
	ledger   *services.LedgerService
}

func NewProfileHandler(profiles *services.ProfileService, roles *services.RoleService, ledger *services.LedgerService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, roles: roles, ledger: ledger}
}

// Me returns the caller's profile, creating it on first visit.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetOrCreate(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ProfileResponse{
		Username: profile.User.Username,
		Profile:  profile,
		Progress: h.roles.Progress(profile, profile.User.CreatedAt),
	})
}

func (h *ProfileHandler) Contributions(c *fiber.Ctx) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	filter := services.LedgerFilter{
		UserID: userID,
		Type:   models.ContributionType(c.Query("type")),
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("approved"); v != "" {
		approved := c.QueryBool("approved")
		filter.Approved = &approved
	}

	items, err := h.ledger.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	total, err := h.ledger.Count(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

package middleware

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RoleRequired admits users whose profile role ranks at or above required.
// It must run after JWTProtected. The profile is stored in Locals("profile").
func RoleRequired(profiles *services.ProfileService, required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := ActorID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		profile, err := profiles.Get(c.UserContext(), userID)
		if err != nil && !errors.Is(err, services.ErrProfileNotFound) {
			return err
		}
		if profile == nil || !profile.Role.AtLeast(required) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: required.DisplayName() + " access required",
			})
		}

		c.Locals("profile", profile)
		return c.Next()
	}
}

// ParseUserIDs reads a comma separated list of user UUIDs, skipping blanks.
func ParseUserIDs(s string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

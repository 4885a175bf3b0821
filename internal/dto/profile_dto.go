package dto

import (
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
)

type ProfileResponse struct {
	Username string                `json:"username"`
	Profile  *models.UserProfile   `json:"profile"`
	Progress services.RoleProgress `json:"progress"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

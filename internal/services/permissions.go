package services

import "github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"

var protectionMinRole = map[models.ProtectionLevel]models.Role{
	models.ProtectionNone:      models.RoleContributor,
	models.ProtectionSemi:      models.RoleAutoconfirmed,
	models.ProtectionProtected: models.RoleExtendedConfirmed,
	models.ProtectionFull:      models.RoleAdmin,
}

// CanEdit reports whether a user with role may edit content at the given
// protection level. Unknown levels are treated as fully protected.
func CanEdit(role models.Role, level models.ProtectionLevel) bool {
	required, ok := protectionMinRole[level]
	if !ok {
		required = models.RoleAdmin
	}
	return role.AtLeast(required)
}

func CanReview(role models.Role) bool {
	return role.AtLeast(models.RoleReviewer)
}

func canModerate(role models.Role) bool {
	return role.AtLeast(models.RoleEditor)
}

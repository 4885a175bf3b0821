package handlers

import (
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	items, total, err := h.notifications.List(c.UserContext(), userID, c.QueryBool("unread"), limit, offset)
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

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}

	n, err := h.notifications.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UnreadCountResponse{Unread: n})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := actor(c)
	if err != nil {
		return err
	}

	if _, err := h.notifications.MarkAllRead(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "All notifications marked as read"})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Notification deleted"})
}

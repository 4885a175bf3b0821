package handlers

import (
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	review  *services.ReviewService
	content *services.ContentService
}

func NewReviewHandler(review *services.ReviewService, content *services.ContentService) *ReviewHandler {
	return &ReviewHandler{review: review, content: content}
}

func (h *ReviewHandler) Queue(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	entries, total, err := h.content.Queue(c.UserContext(), models.ContentType(c.Query("type")), limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ListResponse{
		Items:  entries,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	reviewerID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.ReviewDecisionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid request body",
			})
		}
	}

	item, err := h.review.Approve(c.UserContext(), itemID, reviewerID, req.Feedback)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	reviewerID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.ReviewDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.review.Reject(c.UserContext(), itemID, reviewerID, req.Feedback)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

package handlers

import (
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ContentHandler struct {
	review  *services.ReviewService
	content *services.ContentService
	watches *services.WatchService
}

func NewContentHandler(review *services.ReviewService, content *services.ContentService, watches *services.WatchService) *ContentHandler {
	return &ContentHandler{review: review, content: content, watches: watches}
}

func (h *ContentHandler) Create(c *fiber.Ctx) error {
	authorID, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.CreateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.review.Create(c.UserContext(), authorID, services.NewContent{
		ContentType:     models.ContentType(req.ContentType),
		Title:           req.Title,
		Body:            req.Body,
		Excerpt:         req.Excerpt,
		MetaDescription: req.MetaDescription,
		References:      req.References,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// Get serves published content to everyone and unpublished content to its
// author and reviewers.
func (h *ContentHandler) Get(c *fiber.Ctx) error {
	item, err := h.content.GetBySlug(c.UserContext(), c.Params("slug"), middleware.OptionalActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *ContentHandler) Edit(c *fiber.Ctx) error {
	editorID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req dto.EditContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	fields := services.ContentFields{
		Title:           req.Title,
		Body:            req.Body,
		Excerpt:         req.Excerpt,
		MetaDescription: req.MetaDescription,
		References:      req.References,
	}
	item, err := h.review.Edit(c.UserContext(), itemID, editorID, fields, req.RequestReview)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(item)
}

func (h *ContentHandler) Submit(c *fiber.Ctx) error {
	actorID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	item, err := h.review.SubmitForReview(c.UserContext(), itemID, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *ContentHandler) Watch(c *fiber.Ctx) error {
	userID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.watches.Watch(c.UserContext(), userID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Watching"})
}

func (h *ContentHandler) Unwatch(c *fiber.Ctx) error {
	userID, itemID, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.watches.Unwatch(c.UserContext(), userID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "No longer watching"})
}

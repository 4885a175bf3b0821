package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps service errors to HTTP statuses. Anything unrecognised
// is logged and reported as a bare 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidTransition):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrMissingFeedback), errors.Is(err, services.ErrInvalidField):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrContentNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		status = fiber.StatusForbidden
	}

	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Message: err.Error(),
	})
}

// actorAndID resolves the caller and the :id path parameter. Failures are
// returned as *fiber.Error for ErrorHandler to render.
func actorAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	actorID, err := middleware.ActorID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	return actorID, id, nil
}

func actor(c *fiber.Ctx) (uuid.UUID, error) {
	actorID, err := middleware.ActorID(c)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return actorID, nil
}

// ErrorHandler renders errors that escape a handler. Details of 5xx errors
// are logged, never returned.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func pagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

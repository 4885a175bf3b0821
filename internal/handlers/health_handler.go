package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Pinger is implemented by publishers that hold a live connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	publisher Pinger
}

// NewHealthHandler takes the notification publisher to probe; nil means
// publishing is disabled.
func NewHealthHandler(publisher Pinger) *HealthHandler {
	return &HealthHandler{publisher: publisher}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	pubStatus := "disabled"
	if h.publisher != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		pubStatus = "ok"
		if err := h.publisher.Ping(ctx); err != nil {
			pubStatus = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Publisher: pubStatus,
	})
}

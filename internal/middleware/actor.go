package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoActor = errors.New("no authenticated user")

// ActorID extracts the acting user's UUID from the JWT "sub" claim.
func ActorID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, ErrNoActor
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// OptionalActorID returns uuid.Nil for anonymous requests.
func OptionalActorID(c *fiber.Ctx) uuid.UUID {
	id, err := ActorID(c)
	if err != nil {
		return uuid.Nil
	}
	return id
}

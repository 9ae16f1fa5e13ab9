package handler

import (
	"go-retail-erp/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getActor builds the acting user from JWT context (set by RequireAuth)
func getActor(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if raw := c.Locals("user_id"); raw != nil {
		if id, err := uuid.Parse(raw.(string)); err == nil {
			actor.ID = id
		}
	}
	if raw := c.Locals("user_name"); raw != nil {
		actor.Username = raw.(string)
	}
	if raw := c.Locals("user_login"); raw != nil {
		actor.LoginName = raw.(string)
	}
	return actor
}

func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

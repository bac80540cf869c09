package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middleware.
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocUser     = "user"
)

// GetUserIDFromToken reads the user id the auth middleware stored.
// 401 when the request is anonymous.
func GetUserIDFromToken(c *fiber.Ctx) (uint, error) {
	switch t := c.Locals(LocUserID).(type) {
	case uint:
		if t != 0 {
			return t, nil
		}
	case string:
		if id, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil && id != 0 {
			return uint(id), nil
		}
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid user ID in token")
	}
	return 0, fiber.NewError(fiber.StatusUnauthorized, "Not signed in")
}

func GetUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocUserRole).(string)
	return role
}

// ParseUintParam reads a positive integer path parameter.
func ParseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

package route

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/contest/prompts/controller"
	"rumble_backend/internals/features/contest/prompts/service"

	"rumble_backend/internals/constants"
	authMiddleware "rumble_backend/internals/middlewares/auth"
)

// PromptRoutes: reads are public, writes need an admin.
func PromptRoutes(api fiber.Router, authMW fiber.Handler, svc *service.Service) {
	h := controller.NewPromptController(svc)
	admin := authMiddleware.OnlyRoles(constants.RoleErrorAdmin("prompt management"), constants.AdminOnly...)

	r := api.Group("/prompts")
	r.Get("/", h.List)
	r.Get("/active", h.GetActive)
	r.Post("/", authMW, admin, h.Create)
	r.Put("/:id/activate", authMW, admin, h.Activate)
}

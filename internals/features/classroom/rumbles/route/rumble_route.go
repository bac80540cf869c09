package route

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/classroom/rumbles/controller"
	"rumble_backend/internals/features/classroom/rumbles/service"
	sectionService "rumble_backend/internals/features/classroom/sections/service"

	"rumble_backend/internals/constants"
	authMiddleware "rumble_backend/internals/middlewares/auth"
)

// RumbleRoutes mounts /rumbles and the per-section rumble routes. teacherOf
// guards routes carrying :sectionId.
func RumbleRoutes(api fiber.Router, authMW, teacherOf fiber.Handler, rumbles *service.Service, sections *sectionService.Service) {
	h := controller.NewRumbleController(rumbles, sections)
	teachers := authMiddleware.OnlyRoles(constants.RoleErrorTeacher("rumble management"), constants.TeacherAndAbove...)

	r := api.Group("/rumbles", authMW)
	r.Post("/", teachers, h.Create)
	r.Get("/:rumbleId", h.Get)

	s := api.Group("/sections/:sectionId/rumbles", authMW)
	s.Get("/", h.ListBySection)
	s.Get("/:rumbleId", h.GetInSection)
	s.Put("/:rumbleId/start", teachers, teacherOf, h.Start)
}

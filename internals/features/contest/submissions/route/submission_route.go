package route

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/contest/submissions/controller"
	"rumble_backend/internals/features/contest/submissions/service"

	"rumble_backend/internals/constants"
	authMiddleware "rumble_backend/internals/middlewares/auth"
)

// SubmissionRoutes mounts /submissions (signed in) and /moderation, where
// reporting is open to anonymous callers.
func SubmissionRoutes(api fiber.Router, authMW, optionalAuthMW fiber.Handler, svc *service.Service) {
	h := controller.NewSubmissionController(svc)

	s := api.Group("/submissions", authMW)
	s.Post("/", h.Submit)
	s.Get("/", h.ListMine)
	s.Get("/:id", h.Get)

	m := api.Group("/moderation")
	m.Get("/flags", h.FlagTypes)
	m.Post("/submissions/:id/flags", optionalAuthMW, h.Flag)
	m.Get("/submissions/:id/flags", authMW,
		authMiddleware.OnlyRoles(constants.RoleErrorTeacher("submission flags"), constants.TeacherAndAbove...),
		h.Flags,
	)
	m.Delete("/submissions/:id/flags/:flagId", authMW,
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("flag removal"), constants.AdminOnly...),
		h.Unflag,
	)
}

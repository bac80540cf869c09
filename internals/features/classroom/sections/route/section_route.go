package route

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/classroom/sections/controller"
	"rumble_backend/internals/features/classroom/sections/service"
	subService "rumble_backend/internals/features/contest/submissions/service"

	"rumble_backend/internals/constants"
	authMiddleware "rumble_backend/internals/middlewares/auth"
)

func SectionRoutes(api fiber.Router, authMW fiber.Handler, sections *service.Service, subs *subService.Service) {
	h := controller.NewSectionController(sections, subs)

	r := api.Group("/sections", authMW)
	r.Get("/", h.ListMine)
	r.Post("/",
		authMiddleware.OnlyRoles(constants.RoleErrorTeacher("section creation"), constants.TeacherAndAbove...),
		h.Create,
	)
	r.Get("/:sectionId", h.Get)
	r.Post("/:sectionId/students",
		authMiddleware.OnlyRoles("only students can join a section", constants.RoleStudent),
		h.Enroll,
	)

	teacherOfSection := authMiddleware.OnlyRoles(constants.RoleErrorTeacher("section rosters"), constants.TeacherAndAbove...)
	r.Get("/:sectionId/students", teacherOfSection, h.RequireTeacherOf, h.Students)
	r.Get("/:sectionId/students/:studentId/submissions", teacherOfSection, h.RequireTeacherOf, h.StudentSubmissions)
}

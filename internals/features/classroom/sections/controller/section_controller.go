package controller

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/classroom/sections/dto"
	"rumble_backend/internals/features/classroom/sections/model"
	"rumble_backend/internals/features/classroom/sections/service"
	subService "rumble_backend/internals/features/contest/submissions/service"
	userModel "rumble_backend/internals/features/users/user/model"

	"rumble_backend/internals/constants"
	helper "rumble_backend/internals/helpers"
)

type SectionController struct {
	Sections    *service.Service
	Submissions *subService.Service
}

func NewSectionController(sections *service.Service, subs *subService.Service) *SectionController {
	return &SectionController{Sections: sections, Submissions: subs}
}

func currentUser(c *fiber.Ctx) (*userModel.UserModel, error) {
	if u, ok := c.Locals(helper.LocUser).(*userModel.UserModel); ok && u != nil {
		return u, nil
	}
	return nil, fiber.NewError(fiber.StatusUnauthorized, "Not signed in")
}

// RequireTeacherOf lets admins and the section's teachers through.
func (sc *SectionController) RequireTeacherOf(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if helper.GetUserRole(c) == constants.RoleAdmin {
		return c.Next()
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	if _, err := sc.Sections.GetSection(c.UserContext(), sectionID); err != nil {
		return helper.JsonFromError(c, err)
	}
	ok, err := sc.Sections.IsTeacherOf(c.UserContext(), sectionID, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "You do not teach this section")
	}
	return c.Next()
}

// teachesSection reports whether the caller may see the section's join code.
func (sc *SectionController) teachesSection(c *fiber.Ctx, sectionID uint) (bool, error) {
	if helper.GetUserRole(c) == constants.RoleAdmin {
		return true, nil
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return false, err
	}
	return sc.Sections.IsTeacherOf(c.UserContext(), sectionID, userID)
}

// GET /api/sections
func (sc *SectionController) ListMine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sections, err := sc.Sections.ListSectionsForUser(c.UserContext(), user)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if user.Role == constants.RoleTeacher {
		return helper.JsonOK(c, "ok", dto.NewTeacherSections(sections))
	}
	return helper.JsonOK(c, "ok", sections)
}

// POST /api/sections
func (sc *SectionController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	sec, err := sc.Sections.CreateSection(c.UserContext(), req.Name, req.SubjectID, req.GradeID, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Section created", dto.NewTeacherSection(model.SectionWithRumbles{SectionModel: *sec}))
}

// GET /api/sections/:sectionId
func (sc *SectionController) Get(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sec, err := sc.Sections.GetSection(c.UserContext(), sectionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	teaches, err := sc.teachesSection(c, sectionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if teaches {
		return helper.JsonOK(c, "ok", dto.NewTeacherSection(model.SectionWithRumbles{SectionModel: *sec}))
	}
	return helper.JsonOK(c, "ok", sec)
}

// POST /api/sections/:sectionId/students
func (sc *SectionController) Enroll(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	sec, err := sc.Sections.EnrollStudent(c.UserContext(), req.JoinCode, sectionID, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Joined section", sec)
}

// GET /api/sections/:sectionId/students
func (sc *SectionController) Students(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	students, err := sc.Sections.ListStudentsInSection(c.UserContext(), sectionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", students)
}

// GET /api/sections/:sectionId/students/:studentId/submissions
func (sc *SectionController) StudentSubmissions(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUintParam(c, "studentId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	items, err := sc.Submissions.GetSubsByStudentAndSection(c.UserContext(), studentID, sectionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", items)
}

package controller

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/classroom/rumbles/dto"
	"rumble_backend/internals/features/classroom/rumbles/service"
	sectionService "rumble_backend/internals/features/classroom/sections/service"

	"rumble_backend/internals/constants"
	helper "rumble_backend/internals/helpers"
)

type RumbleController struct {
	Rumbles  *service.Service
	Sections *sectionService.Service
}

func NewRumbleController(rumbles *service.Service, sections *sectionService.Service) *RumbleController {
	return &RumbleController{Rumbles: rumbles, Sections: sections}
}

// POST /api/rumbles
func (rc *RumbleController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateRumblesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	if helper.GetUserRole(c) != constants.RoleAdmin {
		for _, sectionID := range req.SectionIDs {
			ok, err := rc.Sections.IsTeacherOf(c.UserContext(), sectionID, userID)
			if err != nil {
				return helper.JsonFromError(c, err)
			}
			if !ok {
				return helper.JsonError(c, fiber.StatusForbidden, "You do not teach every section in the request")
			}
		}
	}

	rumbles, err := rc.Rumbles.CreateInstances(c.UserContext(),
		service.Spec{NumMinutes: req.NumMinutes, PromptID: req.PromptID}, req.SectionIDs)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Rumbles created", dto.NewCreatedRumbles(rumbles))
}

// GET /api/rumbles/:rumbleId
func (rc *RumbleController) Get(c *fiber.Ctx) error {
	rumbleID, err := helper.ParseUintParam(c, "rumbleId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	r, err := rc.Rumbles.GetRumble(c.UserContext(), rumbleID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", r)
}

// GET /api/sections/:sectionId/rumbles[?active=true]
func (rc *RumbleController) ListBySection(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	list := rc.Rumbles.ListBySection
	if c.QueryBool("active") {
		list = rc.Rumbles.ActiveRumblesBySection
	}
	rumbles, err := list(c.UserContext(), sectionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rumbles)
}

// GET /api/sections/:sectionId/rumbles/:rumbleId
func (rc *RumbleController) GetInSection(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rumbleID, err := helper.ParseUintParam(c, "rumbleId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	r, err := rc.Rumbles.GetRumbleInSection(c.UserContext(), rumbleID, sectionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", r)
}

// PUT /api/sections/:sectionId/rumbles/:rumbleId/start
func (rc *RumbleController) Start(c *fiber.Ctx) error {
	sectionID, err := helper.ParseUintParam(c, "sectionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rumbleID, err := helper.ParseUintParam(c, "rumbleId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	end, err := rc.Rumbles.StartRumble(c.UserContext(), sectionID, rumbleID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Rumble started", dto.StartRumbleResponse{
		RumbleID:  rumbleID,
		SectionID: sectionID,
		EndTime:   end,
	})
}

package controller

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/contest/prompts/dto"
	"rumble_backend/internals/features/contest/prompts/service"

	helper "rumble_backend/internals/helpers"
)

type PromptController struct {
	Svc *service.Service
}

func NewPromptController(svc *service.Service) *PromptController {
	return &PromptController{Svc: svc}
}

// GET /api/prompts/active
func (pc *PromptController) GetActive(c *fiber.Ctx) error {
	p, err := pc.Svc.GetActive(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", p)
}

// GET /api/prompts?limit=&offset=
func (pc *PromptController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	prompts, err := pc.Svc.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", prompts, helper.BuildPagination(p, len(prompts)))
}

// POST /api/prompts
func (pc *PromptController) Create(c *fiber.Ctx) error {
	var req dto.CreatePromptRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	p, err := pc.Svc.Create(c.UserContext(), req.Prompt, req.Active)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Prompt created", p)
}

// PUT /api/prompts/:id/activate
func (pc *PromptController) Activate(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p, err := pc.Svc.Activate(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Prompt activated", p)
}

package controller

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/contest/leaderboard/dto"
	"rumble_backend/internals/features/contest/leaderboard/service"

	helper "rumble_backend/internals/helpers"
)

type ContestController struct {
	Svc *service.Service
}

func NewContestController(svc *service.Service) *ContestController {
	return &ContestController{Svc: svc}
}

// GET /api/contest/leaderboard
func (cc *ContestController) TopTen(c *fiber.Ctx) error {
	top, err := cc.Svc.GetTopTen(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", top)
}

// GET /api/contest/top3
func (cc *ContestController) Top3(c *fiber.Ctx) error {
	items, err := cc.Svc.GetTop3Subs(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", items)
}

// POST /api/contest/top3
func (cc *ContestController) SetTop3(c *fiber.Ctx) error {
	var req dto.SetTop3Request
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}
	rows, err := cc.Svc.SetTop3(c.UserContext(), req.IDs)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Top 3 saved", rows)
}

// POST /api/contest/votes
func (cc *ContestController) Vote(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}
	v, err := cc.Svc.SubmitVote(c.UserContext(), userID, req.FirstPlace, req.SecondPlace, req.ThirdPlace)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Vote recorded", v)
}

// GET /api/contest/votes/tally
func (cc *ContestController) Tally(c *fiber.Ctx) error {
	tally, err := cc.Svc.TallyVotes(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", tally)
}

// GET /api/contest/winner
func (cc *ContestController) Winner(c *fiber.Ctx) error {
	w, err := cc.Svc.GetRecentWinner(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", w)
}

// POST /api/contest/winner
func (cc *ContestController) DeclareWinner(c *fiber.Ctx) error {
	w, err := cc.Svc.DeclareWinner(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Winner declared", w)
}

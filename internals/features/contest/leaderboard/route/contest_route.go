package route

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/contest/leaderboard/controller"
	"rumble_backend/internals/features/contest/leaderboard/service"

	"rumble_backend/internals/constants"
	authMiddleware "rumble_backend/internals/middlewares/auth"
)

func ContestRoutes(api fiber.Router, authMW fiber.Handler, svc *service.Service) {
	h := controller.NewContestController(svc)
	admin := authMiddleware.OnlyRoles(constants.RoleErrorAdmin("contest management"), constants.AdminOnly...)

	r := api.Group("/contest", authMW)
	r.Get("/leaderboard", h.TopTen)
	r.Get("/top3", h.Top3)
	r.Post("/top3", admin, h.SetTop3)
	r.Post("/votes", h.Vote)
	r.Get("/votes/tally", admin, h.Tally)
	r.Get("/winner", h.Winner)
	r.Post("/winner", admin, h.DeclareWinner)
}

package route

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/users/auth/controller"
	"rumble_backend/internals/features/users/auth/service"
	rateLimiter "rumble_backend/internals/middlewares"
)

func AuthRoutes(api fiber.Router, authMW fiber.Handler, svc *service.Service) {
	authController := controller.NewAuthController(svc)

	baseAuth := api.Group("/auth")
	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), authController.Register)
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Get("/activation", authController.Activate)
	baseAuth.Post("/reset", rateLimiter.ForgotPasswordRateLimiter(), authController.ForgotPassword)
	baseAuth.Post("/reset/password", authController.ResetPassword)

	baseAuth.Get("/me", authMW, authController.Me)
}

package controller

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/users/auth/dto"
	"rumble_backend/internals/features/users/auth/service"

	helper "rumble_backend/internals/helpers"
)

type AuthController struct {
	Svc *service.Service
}

func NewAuthController(svc *service.Service) *AuthController {
	return &AuthController{Svc: svc}
}

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	user, err := ac.Svc.SignUp(c.UserContext(), req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Check your email to validate the account", user)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	res, err := ac.Svc.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Signed in", res)
}

// GET /api/auth/activation?token=&email=
func (ac *AuthController) Activate(c *fiber.Ctx) error {
	var q dto.ActivationQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	if err := helper.Validator().Struct(q); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	res, err := ac.Svc.Validate(c.UserContext(), q.Email, q.Token)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Account validated", res)
}

// POST /api/auth/reset
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ResetEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	if err := ac.Svc.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Password reset code sent", nil)
}

// POST /api/auth/reset/password
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	if err := ac.Svc.ResetPassword(c.UserContext(), req.Email, req.Password, req.Code); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Password reset successfully", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	user := c.Locals(helper.LocUser)
	if user == nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Not signed in")
	}
	return helper.JsonOK(c, "ok", user)
}

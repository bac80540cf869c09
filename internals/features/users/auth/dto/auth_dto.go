package dto

import userModel "rumble_backend/internals/features/users/user/model"

// SignUpRequest: Age is a pointer so a missing age is distinguishable from 0.
type SignUpRequest struct {
	Codename    string `json:"codename" validate:"required,min=3,max=50,codename"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,password"`
	FirstName   string `json:"firstname" validate:"omitempty,max=100"`
	LastName    string `json:"lastname" validate:"omitempty,max=100"`
	Age         *int   `json:"age" validate:"omitempty,min=1,max=150"`
	ParentEmail string `json:"parentEmail" validate:"omitempty,email,max=255"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ActivationQuery struct {
	Token string `query:"token" validate:"required"`
	Email string `query:"email" validate:"required,email"`
}

type ResetEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Code     string `json:"code" validate:"required"`
}

// AuthResponse never carries the password hash: UserModel hides it from JSON.
type AuthResponse struct {
	User  *userModel.UserModel `json:"user"`
	Token string               `json:"token"`
}

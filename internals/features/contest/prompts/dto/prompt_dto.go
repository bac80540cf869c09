package dto

type CreatePromptRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
	Active bool   `json:"active"`
}

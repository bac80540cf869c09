package model

import "time"

type PromptModel struct {
	ID        uint      `gorm:"primaryKey;column:prompt_id" json:"id"`
	Prompt    string    `gorm:"type:text;not null;column:prompt_text" json:"prompt"`
	Active    bool      `gorm:"not null;default:false;index;column:prompt_active" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:prompt_created_at" json:"created_at"`
}

func (PromptModel) TableName() string { return "prompts" }

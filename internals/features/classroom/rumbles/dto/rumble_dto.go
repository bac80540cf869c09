package dto

import (
	"time"

	"rumble_backend/internals/features/classroom/rumbles/model"
)

type CreateRumblesRequest struct {
	NumMinutes int    `json:"numMinutes" validate:"required,min=1,max=1440"`
	PromptID   uint   `json:"promptId" validate:"required"`
	SectionIDs []uint `json:"sectionIds" validate:"required,min=1,dive,required"`
}

type StartRumbleResponse struct {
	RumbleID  uint      `json:"rumbleId"`
	SectionID uint      `json:"sectionId"`
	EndTime   time.Time `json:"endTime"`
}

// CreatedRumble is returned only to the teacher who created the batch and
// carries the join code the model never serialises.
type CreatedRumble struct {
	model.RumbleWithSection
	JoinCode string `json:"joinCode"`
}

func NewCreatedRumbles(list []model.RumbleWithSection) []CreatedRumble {
	out := make([]CreatedRumble, 0, len(list))
	for _, r := range list {
		out = append(out, CreatedRumble{RumbleWithSection: r, JoinCode: r.JoinCode})
	}
	return out
}

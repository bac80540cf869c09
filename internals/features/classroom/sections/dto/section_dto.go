package dto

import (
	rumbleModel "rumble_backend/internals/features/classroom/rumbles/model"
	"rumble_backend/internals/features/classroom/sections/model"
)

type CreateSectionRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	SubjectID uint   `json:"subjectId" validate:"required"`
	GradeID   uint   `json:"gradeId" validate:"required"`
}

type EnrollRequest struct {
	JoinCode string `json:"joinCode" validate:"required"`
}

// TeacherSection is the section as its teachers and admins see it,
// join code included.
type TeacherSection struct {
	model.SectionWithRumbles
	JoinCode string `json:"joinCode"`
}

func NewTeacherSection(s model.SectionWithRumbles) TeacherSection {
	if s.ActiveRumbles == nil {
		s.ActiveRumbles = []rumbleModel.RumbleWithSection{}
	}
	return TeacherSection{SectionWithRumbles: s, JoinCode: s.JoinCode}
}

func NewTeacherSections(list []*model.SectionWithRumbles) []TeacherSection {
	out := make([]TeacherSection, 0, len(list))
	for _, s := range list {
		out = append(out, NewTeacherSection(*s))
	}
	return out
}

package model

import (
	"time"

	rumbleModel "rumble_backend/internals/features/classroom/rumbles/model"
)

// SectionModel never serialises its join code; teachers get it through
// dto.TeacherSection.
type SectionModel struct {
	ID        uint      `gorm:"primaryKey;column:section_id" json:"id"`
	Name      string    `gorm:"size:120;not null;column:section_name" json:"name"`
	JoinCode  string    `gorm:"size:64;not null;uniqueIndex;column:section_join_code" json:"-"`
	SubjectID uint      `gorm:"not null;default:1;column:section_subject_id" json:"subjectId"`
	GradeID   uint      `gorm:"not null;default:1;column:section_grade_id" json:"gradeId"`
	Active    bool      `gorm:"not null;default:true;column:section_active" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:section_created_at" json:"created_at"`
}

func (SectionModel) TableName() string { return "sections" }

type SectionTeacherModel struct {
	ID        uint `gorm:"primaryKey;column:section_teacher_id" json:"id"`
	SectionID uint `gorm:"not null;index;column:section_teacher_section_id" json:"sectionId"`
	UserID    uint `gorm:"not null;index;column:section_teacher_user_id" json:"userId"`
	IsPrimary bool `gorm:"not null;default:false;column:section_teacher_is_primary" json:"isPrimary"`
}

func (SectionTeacherModel) TableName() string { return "section_teachers" }

// SectionStudentModel has no unique (section, user) constraint; enrolling
// twice yields two rows.
type SectionStudentModel struct {
	ID        uint      `gorm:"primaryKey;column:section_student_id" json:"id"`
	SectionID uint      `gorm:"not null;index;column:section_student_section_id" json:"sectionId"`
	UserID    uint      `gorm:"not null;index;column:section_student_user_id" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:section_student_created_at" json:"created_at"`
}

func (SectionStudentModel) TableName() string { return "section_students" }

// SectionWithRumbles is a section carrying its active rumbles.
type SectionWithRumbles struct {
	SectionModel
	ActiveRumbles []rumbleModel.RumbleWithSection `json:"activeRumbles"`
}

package model

import (
	"time"
)

// RumbleModel is the template of a timed contest. Schedules live on the
// section link so one template can run at different times per section.
type RumbleModel struct {
	ID          uint      `gorm:"primaryKey;column:rumble_id" json:"id"`
	JoinCode    string    `gorm:"size:64;not null;uniqueIndex;column:rumble_join_code" json:"-"`
	PromptID    uint      `gorm:"not null;index;column:rumble_prompt_id" json:"promptId"`
	NumMinutes  int       `gorm:"not null;column:rumble_num_minutes" json:"numMinutes"`
	CanJoin     bool      `gorm:"not null;default:false;column:rumble_can_join" json:"canJoin"`
	MaxSections int       `gorm:"not null;default:1;column:rumble_max_sections" json:"maxSections"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:rumble_created_at" json:"created_at"`
}

func (RumbleModel) TableName() string { return "rumbles" }

// RumbleSectionModel links a rumble to a section with that section's schedule.
type RumbleSectionModel struct {
	ID        uint       `gorm:"primaryKey;column:rumble_section_id" json:"id"`
	RumbleID  uint       `gorm:"not null;index;column:rumble_section_rumble_id" json:"rumbleId"`
	SectionID uint       `gorm:"not null;index;column:rumble_section_section_id" json:"sectionId"`
	StartTime *time.Time `gorm:"column:rumble_section_start_time" json:"startTime,omitempty"`
	EndTime   *time.Time `gorm:"column:rumble_section_end_time" json:"endTime,omitempty"`
	Phase     string     `gorm:"size:20;not null;default:'pending';column:rumble_section_phase" json:"phase"`
}

func (RumbleSectionModel) TableName() string { return "rumble_sections" }

// RumbleWithSection is a rumble as seen from one section.
type RumbleWithSection struct {
	RumbleModel
	SectionID   uint       `json:"sectionId"`
	SectionName string     `json:"sectionName,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Phase       string     `json:"phase"`
}

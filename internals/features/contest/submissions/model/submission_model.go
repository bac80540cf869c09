package model

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionModel is immutable after insert; only flags change.
type SubmissionModel struct {
	ID            uint      `gorm:"primaryKey;column:submission_id" json:"id"`
	UserID        uint      `gorm:"not null;index;column:submission_user_id" json:"userId"`
	PromptID      uint      `gorm:"not null;index;column:submission_prompt_id" json:"promptId"`
	RumbleID      *uint     `gorm:"index;column:submission_rumble_id" json:"rumbleId,omitempty"`
	SourceID      int       `gorm:"not null;column:submission_source_id" json:"sourceId"`
	BlobLabel     string    `gorm:"size:255;not null;column:submission_blob_label" json:"-"`
	Etag          string    `gorm:"size:128;not null;column:submission_etag" json:"-"`
	Score         int       `gorm:"not null;default:0;index;column:submission_score" json:"score"`
	Confidence    int       `gorm:"not null;default:0;column:submission_confidence" json:"-"`
	Rotation      int       `gorm:"not null;default:0;column:submission_rotation" json:"rotation"`
	Transcription string    `gorm:"type:text;column:submission_transcription" json:"transcription"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index;column:submission_created_at" json:"created_at"`
}

func (SubmissionModel) TableName() string { return "submissions" }

// SubmissionTranscriptionModel keeps the raw scoring payload next to a submission.
type SubmissionTranscriptionModel struct {
	ID                    uint           `gorm:"primaryKey;column:submission_transcription_id" json:"id"`
	SubmissionID          uint           `gorm:"not null;index;column:submission_transcription_submission_id" json:"submissionId"`
	UserID                uint           `gorm:"not null;column:submission_transcription_user_id" json:"userId"`
	SourceID              int            `gorm:"not null;column:submission_transcription_source_id" json:"sourceId"`
	TranscriptionSourceID int            `gorm:"not null;column:submission_transcription_transcription_source_id" json:"transcriptionSourceId"`
	Text                  string         `gorm:"type:text;column:submission_transcription_text" json:"text"`
	Payload               datatypes.JSON `gorm:"column:submission_transcription_payload" json:"payload,omitempty"`
	CreatedAt             time.Time      `gorm:"autoCreateTime;column:submission_transcription_created_at" json:"created_at"`
}

func (SubmissionTranscriptionModel) TableName() string { return "submission_transcriptions" }

type EnumFlagModel struct {
	ID   uint   `gorm:"primaryKey;column:enum_flag_id" json:"id"`
	Flag string `gorm:"size:60;not null;uniqueIndex;column:enum_flag_name" json:"flag"`
}

func (EnumFlagModel) TableName() string { return "enum_flags" }

// SubmissionFlagModel: creator is optional so flags can be anonymous.
type SubmissionFlagModel struct {
	ID           uint      `gorm:"primaryKey;column:submission_flag_id" json:"id"`
	SubmissionID uint      `gorm:"not null;index;column:submission_flag_submission_id" json:"submissionId"`
	FlagID       uint      `gorm:"not null;column:submission_flag_flag_id" json:"flagId"`
	CreatorID    *uint     `gorm:"column:submission_flag_creator_id" json:"creatorId,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;column:submission_flag_created_at" json:"created_at"`
}

func (SubmissionFlagModel) TableName() string { return "submission_flags" }

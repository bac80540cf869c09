package model

import "time"

// Top3Model and WinnerModel are append-only logs; the current value is the
// most recent insertion.
type Top3Model struct {
	ID           uint      `gorm:"primaryKey;column:top3_id" json:"id"`
	SubmissionID uint      `gorm:"not null;index;column:top3_submission_id" json:"submissionId"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index;column:top3_created_at" json:"created_at"`
}

func (Top3Model) TableName() string { return "top3" }

type WinnerModel struct {
	ID           uint      `gorm:"primaryKey;column:winner_id" json:"id"`
	SubmissionID uint      `gorm:"not null;index;column:winner_submission_id" json:"submissionId"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index;column:winner_created_at" json:"created_at"`
}

func (WinnerModel) TableName() string { return "winners" }

type VoteModel struct {
	ID        uint      `gorm:"primaryKey;column:vote_id" json:"id"`
	UserID    uint      `gorm:"not null;index;column:vote_user_id" json:"userId"`
	First     uint      `gorm:"not null;column:vote_first" json:"first"`
	Second    uint      `gorm:"not null;column:vote_second" json:"second"`
	Third     uint      `gorm:"not null;column:vote_third" json:"third"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:vote_created_at" json:"created_at"`
}

func (VoteModel) TableName() string { return "votes" }

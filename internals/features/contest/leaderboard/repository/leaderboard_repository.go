package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"rumble_backend/internals/features/contest/leaderboard/model"
	subModel "rumble_backend/internals/features/contest/submissions/model"
)

/* ====================== TOP 3 ====================== */

func CreateTop3(db *gorm.DB, rows []model.Top3Model) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

// LatestTop3 returns the newest rows of the top 3 log. Rows of one freeze
// share a timestamp and keep their insertion order.
func LatestTop3(db *gorm.DB, limit int) ([]model.Top3Model, error) {
	var out []model.Top3Model
	err := db.Order("top3_created_at DESC").
		Order("top3_id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// LatestTop3Submissions joins the newest top 3 rows to their submissions.
func LatestTop3Submissions(db *gorm.DB, limit int) ([]subModel.SubmissionModel, error) {
	var out []subModel.SubmissionModel
	err := db.Model(&subModel.SubmissionModel{}).
		Select("submissions.*").
		Joins("JOIN top3 ON top3.top3_submission_id = submissions.submission_id").
		Order("top3.top3_created_at DESC").
		Order("top3.top3_id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// HasTop3ForPrompt reports whether any top 3 row points at a submission of promptID.
func HasTop3ForPrompt(db *gorm.DB, promptID uint) (bool, error) {
	var n int64
	err := db.Model(&model.Top3Model{}).
		Joins("JOIN submissions ON submissions.submission_id = top3.top3_submission_id").
		Where("submissions.submission_prompt_id = ?", promptID).
		Count(&n).Error
	return n > 0, err
}

/* ====================== WINNERS ====================== */

func CreateWinner(db *gorm.DB, w *model.WinnerModel) error {
	return db.Create(w).Error
}

// LatestWinnerSubmission returns nil, nil when the log is empty.
func LatestWinnerSubmission(db *gorm.DB) (*subModel.SubmissionModel, error) {
	var sub subModel.SubmissionModel
	err := db.Model(&subModel.SubmissionModel{}).
		Select("submissions.*").
		Joins("JOIN winners ON winners.winner_submission_id = submissions.submission_id").
		Order("winners.winner_created_at DESC").
		Order("winners.winner_id DESC").
		Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

/* ====================== VOTES ====================== */

func CreateVote(db *gorm.DB, v *model.VoteModel) error {
	return db.Create(v).Error
}

func ListVotesSince(db *gorm.DB, since time.Time) ([]model.VoteModel, error) {
	var out []model.VoteModel
	err := db.Where("vote_created_at >= ?", since).Order("vote_id ASC").Find(&out).Error
	return out, err
}

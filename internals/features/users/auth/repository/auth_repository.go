package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	userModel "rumble_backend/internals/features/users/user/model"
)

/* ====================== VALIDATION ====================== */

func CreateValidation(db *gorm.DB, v *userModel.UserValidationModel) error {
	return db.Create(v).Error
}

// FindLatestValidationByEmail returns the newest validation sent to email.
// The address may be a parent's, so the user is loaded through the row.
func FindLatestValidationByEmail(db *gorm.DB, email string) (*userModel.UserValidationModel, error) {
	var v userModel.UserValidationModel
	if err := db.Where("user_validation_email = ?", email).
		Order("user_validation_created_at DESC").
		Order("user_validation_id DESC").
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func CompleteValidation(db *gorm.DB, id uint, at time.Time) (int64, error) {
	res := db.Model(&userModel.UserValidationModel{}).
		Where("user_validation_id = ?", id).
		Update("user_validation_completed_at", at)
	return res.RowsAffected, res.Error
}

/* ====================== RESET ====================== */

func CreateReset(db *gorm.DB, r *userModel.UserResetModel) error {
	return db.Create(r).Error
}

// FindLatestReset returns the user's newest reset row, completed or not.
// (nil, nil) when the user never requested one.
func FindLatestReset(db *gorm.DB, userID uint) (*userModel.UserResetModel, error) {
	return findReset(db.Where("user_reset_user_id = ?", userID))
}

// FindActiveReset returns the newest reset row that is not completed.
func FindActiveReset(db *gorm.DB, userID uint) (*userModel.UserResetModel, error) {
	return findReset(db.Where("user_reset_user_id = ? AND user_reset_completed = ?", userID, false))
}

func findReset(q *gorm.DB) (*userModel.UserResetModel, error) {
	var r userModel.UserResetModel
	err := q.Order("user_reset_created_at DESC").Order("user_reset_id DESC").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func CompleteReset(db *gorm.DB, id uint) (int64, error) {
	res := db.Model(&userModel.UserResetModel{}).
		Where("user_reset_id = ?", id).
		Update("user_reset_completed", true)
	return res.RowsAffected, res.Error
}

func CountActiveResets(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&userModel.UserResetModel{}).
		Where("user_reset_user_id = ? AND user_reset_completed = ?", userID, false).
		Count(&n).Error
	return n, err
}

package repository

import (
	"gorm.io/gorm"

	"rumble_backend/internals/features/contest/submissions/model"
)

/* ====================== SUBMISSION ====================== */

func Create(db *gorm.DB, s *model.SubmissionModel) error {
	return db.Create(s).Error
}

func FindByID(db *gorm.DB, id uint) (*model.SubmissionModel, error) {
	var s model.SubmissionModel
	if err := db.Where("submission_id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser pages a user's submissions, newest first.
func ListByUser(db *gorm.DB, userID uint, limit, offset int) ([]model.SubmissionModel, error) {
	var out []model.SubmissionModel
	err := db.Where("submission_user_id = ?", userID).
		Order("submission_created_at DESC").
		Order("submission_id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// ListTopByPrompt orders by score, earlier submissions first on ties.
func ListTopByPrompt(db *gorm.DB, promptID uint, limit int) ([]model.SubmissionModel, error) {
	var out []model.SubmissionModel
	err := db.Where("submission_prompt_id = ?", promptID).
		Order("submission_score DESC").
		Order("submission_created_at ASC").
		Order("submission_id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListByStudentAndSection returns a student's rumble submissions made in one section.
func ListByStudentAndSection(db *gorm.DB, studentID, sectionID uint) ([]model.SubmissionModel, error) {
	var out []model.SubmissionModel
	err := db.Model(&model.SubmissionModel{}).
		Joins("JOIN rumble_sections ON rumble_sections.rumble_section_rumble_id = submissions.submission_rumble_id").
		Where("submissions.submission_user_id = ? AND rumble_sections.rumble_section_section_id = ?", studentID, sectionID).
		Order("submissions.submission_created_at DESC").
		Order("submissions.submission_id DESC").
		Find(&out).Error
	return out, err
}

func CreateTranscription(db *gorm.DB, t *model.SubmissionTranscriptionModel) error {
	return db.Create(t).Error
}

/* ====================== FLAGS ====================== */

func CreateFlags(db *gorm.DB, flags []model.SubmissionFlagModel) error {
	if len(flags) == 0 {
		return nil
	}
	return db.Create(&flags).Error
}

func DeleteFlag(db *gorm.DB, submissionID, flagID uint) (int64, error) {
	res := db.Where("submission_flag_submission_id = ? AND submission_flag_flag_id = ?", submissionID, flagID).
		Delete(&model.SubmissionFlagModel{})
	return res.RowsAffected, res.Error
}

func ListFlagNames(db *gorm.DB, submissionID uint) ([]string, error) {
	var names []string
	err := db.Model(&model.SubmissionFlagModel{}).
		Joins("JOIN enum_flags ON enum_flags.enum_flag_id = submission_flags.submission_flag_flag_id").
		Where("submission_flags.submission_flag_submission_id = ?", submissionID).
		Order("submission_flags.submission_flag_id ASC").
		Pluck("enum_flags.enum_flag_name", &names).Error
	return names, err
}

func ListEnumFlags(db *gorm.DB) ([]model.EnumFlagModel, error) {
	var out []model.EnumFlagModel
	err := db.Order("enum_flag_id ASC").Find(&out).Error
	return out, err
}

func CreateEnumFlag(db *gorm.DB, f *model.EnumFlagModel) error {
	return db.Create(f).Error
}

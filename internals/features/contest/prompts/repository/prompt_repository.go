package repository

import (
	"gorm.io/gorm"

	"rumble_backend/internals/features/contest/prompts/model"
)

// FindActive returns the active prompt with the highest id.
func FindActive(db *gorm.DB) (*model.PromptModel, error) {
	var p model.PromptModel
	if err := db.Where("prompt_active = ?", true).Order("prompt_id DESC").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func FindByID(db *gorm.DB, id uint) (*model.PromptModel, error) {
	var p model.PromptModel
	if err := db.Where("prompt_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func List(db *gorm.DB, limit, offset int) ([]model.PromptModel, error) {
	var out []model.PromptModel
	err := db.Order("prompt_id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}

func Create(db *gorm.DB, p *model.PromptModel) error {
	return db.Create(p).Error
}

// Activate makes id the only active prompt.
func Activate(db *gorm.DB, id uint) (int64, error) {
	if err := db.Model(&model.PromptModel{}).
		Where("prompt_active = ? AND prompt_id <> ?", true, id).
		Update("prompt_active", false).Error; err != nil {
		return 0, err
	}
	res := db.Model(&model.PromptModel{}).Where("prompt_id = ?", id).Update("prompt_active", true)
	return res.RowsAffected, res.Error
}

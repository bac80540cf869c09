package repository

import (
	"time"

	"gorm.io/gorm"

	"rumble_backend/internals/constants"
	"rumble_backend/internals/features/classroom/rumbles/model"
)

const rumbleWithSectionSelect = `rumbles.*,
	rumble_sections.rumble_section_section_id AS section_id,
	sections.section_name AS section_name,
	rumble_sections.rumble_section_start_time AS start_time,
	rumble_sections.rumble_section_end_time AS end_time,
	rumble_sections.rumble_section_phase AS phase`

func withSection(db *gorm.DB) *gorm.DB {
	return db.Table("rumbles").
		Select(rumbleWithSectionSelect).
		Joins("JOIN rumble_sections ON rumble_sections.rumble_section_rumble_id = rumbles.rumble_id").
		Joins("JOIN sections ON sections.section_id = rumble_sections.rumble_section_section_id")
}

func Create(db *gorm.DB, r *model.RumbleModel) error {
	return db.Create(r).Error
}

func LinkSection(db *gorm.DB, rumbleID, sectionID uint) error {
	return db.Create(&model.RumbleSectionModel{
		RumbleID:  rumbleID,
		SectionID: sectionID,
		Phase:     constants.PhasePending,
	}).Error
}

func FindByID(db *gorm.DB, id uint) (*model.RumbleModel, error) {
	var r model.RumbleModel
	if err := db.Where("rumble_id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func FindInSection(db *gorm.DB, rumbleID, sectionID uint) (*model.RumbleWithSection, error) {
	var r model.RumbleWithSection
	err := withSection(db).
		Where("rumbles.rumble_id = ? AND rumble_sections.rumble_section_section_id = ?", rumbleID, sectionID).
		Take(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// StartInSection stamps the schedule on the section link only.
func StartInSection(db *gorm.DB, rumbleID, sectionID uint, start, end time.Time) (int64, error) {
	res := db.Model(&model.RumbleSectionModel{}).
		Where("rumble_section_rumble_id = ? AND rumble_section_section_id = ?", rumbleID, sectionID).
		Updates(map[string]any{
			"rumble_section_start_time": start,
			"rumble_section_end_time":   end,
			"rumble_section_phase":      constants.PhaseActive,
		})
	return res.RowsAffected, res.Error
}

func SetCanJoin(db *gorm.DB, rumbleID uint, canJoin bool) error {
	return db.Model(&model.RumbleModel{}).
		Where("rumble_id = ?", rumbleID).
		Update("rumble_can_join", canJoin).Error
}

// ListActiveBySection returns rumbles whose section end time is unset or after now.
func ListActiveBySection(db *gorm.DB, sectionID uint, now time.Time) ([]model.RumbleWithSection, error) {
	var out []model.RumbleWithSection
	err := withSection(db).
		Where("rumble_sections.rumble_section_section_id = ?", sectionID).
		Where("rumble_sections.rumble_section_end_time IS NULL OR rumble_sections.rumble_section_end_time > ?", now).
		Order("rumbles.rumble_id ASC").
		Find(&out).Error
	return out, err
}

func ListBySection(db *gorm.DB, sectionID uint) ([]model.RumbleWithSection, error) {
	var out []model.RumbleWithSection
	err := withSection(db).
		Where("rumble_sections.rumble_section_section_id = ?", sectionID).
		Order("rumbles.rumble_id DESC").
		Find(&out).Error
	return out, err
}

func Count(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&model.RumbleModel{}).Count(&n).Error
	return n, err
}

package repository

import (
	"gorm.io/gorm"

	"rumble_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindByID(db *gorm.DB, id uint) (*model.UserModel, error) {
	var user model.UserModel
	if err := db.Where("user_id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindByEmail(db *gorm.DB, email string) (*model.UserModel, error) {
	var user model.UserModel
	if err := db.Where("user_email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindCodename loads only the codename column.
func FindCodename(db *gorm.DB, id uint) (string, error) {
	var user model.UserModel
	if err := db.Select("user_id", "user_codename").Where("user_id = ?", id).First(&user).Error; err != nil {
		return "", err
	}
	return user.Codename, nil
}

func Create(db *gorm.DB, user *model.UserModel) error {
	return db.Create(user).Error
}

func UpdatePassword(db *gorm.DB, id uint, hash string) (int64, error) {
	res := db.Model(&model.UserModel{}).Where("user_id = ?", id).Update("user_password", hash)
	return res.RowsAffected, res.Error
}

func MarkValidated(db *gorm.DB, id uint) (int64, error) {
	res := db.Model(&model.UserModel{}).Where("user_id = ?", id).Update("user_is_validated", true)
	return res.RowsAffected, res.Error
}

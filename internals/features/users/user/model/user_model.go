package model

import (
	"time"
)

// UserModel is a row of users. Codenames are unique: validation and reset
// codes are derived from them.
type UserModel struct {
	ID          uint    `gorm:"primaryKey;column:user_id" json:"id"`
	Codename    string  `gorm:"size:50;not null;uniqueIndex;column:user_codename" json:"codename"`
	Email       string  `gorm:"size:255;uniqueIndex;not null;column:user_email" json:"email"`
	Password    string  `gorm:"not null;column:user_password" json:"-"`
	Role        string  `gorm:"type:varchar(20);not null;default:'student';column:user_role" json:"role"`
	FirstName   string  `gorm:"size:100;column:user_first_name" json:"firstname"`
	LastName    string  `gorm:"size:100;column:user_last_name" json:"lastname"`
	IsValidated bool    `gorm:"not null;default:false;column:user_is_validated" json:"isValidated"`
	ParentEmail *string `gorm:"size:255;column:user_parent_email" json:"parentEmail,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;column:user_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;column:user_updated_at" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

// UserValidationModel is a validation code mailed to the user or a parent.
type UserValidationModel struct {
	ID          uint       `gorm:"primaryKey;column:user_validation_id" json:"id"`
	UserID      uint       `gorm:"not null;index;column:user_validation_user_id" json:"userId"`
	Code        string     `gorm:"size:64;not null;column:user_validation_code" json:"-"`
	Email       string     `gorm:"size:255;not null;column:user_validation_email" json:"email"`
	Validator   string     `gorm:"size:20;not null;column:user_validation_validator" json:"validator"`
	CompletedAt *time.Time `gorm:"column:user_validation_completed_at" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;column:user_validation_created_at" json:"created_at"`
}

func (UserValidationModel) TableName() string { return "user_validations" }

// UserResetModel is a password reset code. At most one row per user is open
// (completed=false).
type UserResetModel struct {
	ID        uint      `gorm:"primaryKey;column:user_reset_id" json:"id"`
	UserID    uint      `gorm:"not null;index;column:user_reset_user_id" json:"userId"`
	Code      string    `gorm:"size:64;not null;column:user_reset_code" json:"-"`
	Completed bool      `gorm:"not null;default:false;column:user_reset_completed" json:"completed"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:user_reset_created_at" json:"created_at"`
}

func (UserResetModel) TableName() string { return "user_resets" }

// Name joins first and last name for greetings.
func (u UserModel) Name() string {
	switch {
	case u.FirstName == "":
		return u.Codename
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

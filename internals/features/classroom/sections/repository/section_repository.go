package repository

import (
	"gorm.io/gorm"

	"rumble_backend/internals/features/classroom/sections/model"
	userModel "rumble_backend/internals/features/users/user/model"
)

/* ====================== SECTION ====================== */

func Create(db *gorm.DB, s *model.SectionModel) error {
	return db.Create(s).Error
}

func FindByID(db *gorm.DB, id uint) (*model.SectionModel, error) {
	var s model.SectionModel
	if err := db.Where("section_id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

/* ====================== MEMBERSHIP ====================== */

func AddTeacher(db *gorm.DB, sectionID, userID uint, primary bool) error {
	return db.Create(&model.SectionTeacherModel{
		SectionID: sectionID,
		UserID:    userID,
		IsPrimary: primary,
	}).Error
}

// AddStudent always inserts; repeated enrolment produces another row.
func AddStudent(db *gorm.DB, sectionID, userID uint) error {
	return db.Create(&model.SectionStudentModel{
		SectionID: sectionID,
		UserID:    userID,
	}).Error
}

func ListByTeacher(db *gorm.DB, teacherID uint) ([]model.SectionModel, error) {
	var out []model.SectionModel
	err := db.Model(&model.SectionModel{}).
		Joins("JOIN section_teachers ON section_teachers.section_teacher_section_id = sections.section_id").
		Where("section_teachers.section_teacher_user_id = ?", teacherID).
		Order("sections.section_id ASC").
		Find(&out).Error
	return out, err
}

// ListByStudent returns one row per enrolment.
func ListByStudent(db *gorm.DB, studentID uint) ([]model.SectionModel, error) {
	var out []model.SectionModel
	err := db.Model(&model.SectionModel{}).
		Joins("JOIN section_students ON section_students.section_student_section_id = sections.section_id").
		Where("section_students.section_student_user_id = ?", studentID).
		Order("sections.section_id ASC").
		Find(&out).Error
	return out, err
}

func ListStudents(db *gorm.DB, sectionID uint) ([]userModel.UserModel, error) {
	var out []userModel.UserModel
	err := db.Model(&userModel.UserModel{}).
		Joins("JOIN section_students ON section_students.section_student_user_id = users.user_id").
		Where("section_students.section_student_section_id = ?", sectionID).
		Order("section_students.section_student_id ASC").
		Find(&out).Error
	return out, err
}

func CountStudentRows(db *gorm.DB, sectionID, studentID uint) (int64, error) {
	var n int64
	err := db.Model(&model.SectionStudentModel{}).
		Where("section_student_section_id = ? AND section_student_user_id = ?", sectionID, studentID).
		Count(&n).Error
	return n, err
}

func IsTeacherOf(db *gorm.DB, sectionID, teacherID uint) (bool, error) {
	var n int64
	err := db.Model(&model.SectionTeacherModel{}).
		Where("section_teacher_section_id = ? AND section_teacher_user_id = ?", sectionID, teacherID).
		Count(&n).Error
	return n > 0, err
}

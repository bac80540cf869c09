package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	rumbleModel "rumble_backend/internals/features/classroom/rumbles/model"
	"rumble_backend/internals/features/classroom/sections/model"
	"rumble_backend/internals/features/classroom/sections/repository"
	userModel "rumble_backend/internals/features/users/user/model"

	"rumble_backend/internals/constants"
	database "rumble_backend/internals/databases"
	helper "rumble_backend/internals/helpers"
	"rumble_backend/internals/helpers/apperr"
)

// RumbleLister supplies the active rumbles of sections.
type RumbleLister interface {
	ActiveRumblesBySection(ctx context.Context, sectionID uint) ([]rumbleModel.RumbleWithSection, error)
	ActiveRumblesForSections(ctx context.Context, sections []*model.SectionWithRumbles) error
}

type Deps struct {
	DB      *gorm.DB
	Log     *logrus.Entry
	Codes   *helper.CodeGenerator
	Rumbles RumbleLister
}

type Service struct {
	db      *gorm.DB
	log     *logrus.Entry
	codes   *helper.CodeGenerator
	rumbles RumbleLister
}

func New(d Deps) *Service {
	return &Service{db: d.DB, log: d.Log.WithField("service", "sections"), codes: d.Codes, rumbles: d.Rumbles}
}

// CreateSection inserts the section and its primary teacher together.
func (s *Service) CreateSection(ctx context.Context, name string, subjectID, gradeID, teacherID uint) (*model.SectionModel, error) {
	sec := &model.SectionModel{
		Name:      name,
		JoinCode:  s.codes.JoinCode(name),
		SubjectID: subjectID,
		GradeID:   gradeID,
		Active:    true,
	}

	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if err := repository.Create(tx, sec); err != nil {
			return err
		}
		if sec.ID == 0 {
			return apperr.Conflict("Could not create section")
		}
		return repository.AddTeacher(tx, sec.ID, teacherID, true)
	})
	if err != nil {
		s.log.WithError(err).WithField("teacher_id", teacherID).Error("create section failed")
		return nil, database.NotFoundOr(err, "section not found")
	}
	return sec, nil
}

// EnrollStudent checks the join code and adds the student. The result carries
// the section's active rumbles.
func (s *Service) EnrollStudent(ctx context.Context, joinCode string, sectionID, studentID uint) (*model.SectionWithRumbles, error) {
	db := database.Conn(ctx, s.db)
	log := s.log.WithFields(logrus.Fields{"section_id": sectionID, "student_id": studentID})

	sec, err := repository.FindByID(db, sectionID)
	if err != nil {
		log.WithError(err).Info("enroll: section lookup failed")
		return nil, database.NotFoundOr(err, "Invalid section ID")
	}
	if sec.JoinCode != joinCode {
		log.Info("enroll: join code mismatch")
		return nil, apperr.Unauthorized("Join code is invalid")
	}
	if err := repository.AddStudent(db, sectionID, studentID); err != nil {
		log.WithError(err).Error("enroll: insert failed")
		return nil, err
	}

	out := &model.SectionWithRumbles{SectionModel: *sec}
	if out.ActiveRumbles, err = s.rumbles.ActiveRumblesBySection(ctx, sec.ID); err != nil {
		log.WithError(err).Error("enroll: active rumbles lookup failed")
		return nil, err
	}
	return out, nil
}

// ListSectionsForUser returns owned sections for teachers and enrolled
// sections for students, each with its active rumbles.
func (s *Service) ListSectionsForUser(ctx context.Context, user *userModel.UserModel) ([]*model.SectionWithRumbles, error) {
	db := database.Conn(ctx, s.db)

	var (
		sections []model.SectionModel
		err      error
	)
	switch user.Role {
	case constants.RoleTeacher:
		sections, err = repository.ListByTeacher(db, user.ID)
	case constants.RoleStudent:
		sections, err = repository.ListByStudent(db, user.ID)
	default:
		return nil, apperr.Unauthorized("role %q has no sections", user.Role)
	}
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("list sections failed")
		return nil, err
	}

	out := make([]*model.SectionWithRumbles, 0, len(sections))
	for _, sec := range sections {
		out = append(out, &model.SectionWithRumbles{SectionModel: sec})
	}
	if err := s.rumbles.ActiveRumblesForSections(ctx, out); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("list sections: rumbles lookup failed")
		return nil, err
	}
	return out, nil
}

func (s *Service) ListStudentsInSection(ctx context.Context, sectionID uint) ([]userModel.UserModel, error) {
	db := database.Conn(ctx, s.db)
	if _, err := repository.FindByID(db, sectionID); err != nil {
		return nil, database.NotFoundOr(err, "Invalid section ID")
	}
	students, err := repository.ListStudents(db, sectionID)
	if err != nil {
		s.log.WithError(err).WithField("section_id", sectionID).Error("list students failed")
		return nil, err
	}
	for i := range students {
		students[i].Password = ""
	}
	return students, nil
}

func (s *Service) GetSection(ctx context.Context, id uint) (*model.SectionModel, error) {
	sec, err := repository.FindByID(database.Conn(ctx, s.db), id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithError(err).WithField("section_id", id).Error("get section failed")
		}
		return nil, database.NotFoundOr(err, "Invalid section ID")
	}
	return sec, nil
}

// IsTeacherOf reports whether teacherID teaches sectionID.
func (s *Service) IsTeacherOf(ctx context.Context, sectionID, teacherID uint) (bool, error) {
	return repository.IsTeacherOf(database.Conn(ctx, s.db), sectionID, teacherID)
}

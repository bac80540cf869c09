package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rumble_backend/internals/features/classroom/rumbles/model"
	"rumble_backend/internals/features/classroom/rumbles/repository"
	sectionModel "rumble_backend/internals/features/classroom/sections/model"
	sectionRepo "rumble_backend/internals/features/classroom/sections/repository"

	"rumble_backend/internals/constants"
	database "rumble_backend/internals/databases"
	helper "rumble_backend/internals/helpers"
	"rumble_backend/internals/helpers/apperr"
)

type Deps struct {
	DB    *gorm.DB
	Log   *logrus.Entry
	Codes *helper.CodeGenerator
	Now   func() time.Time
}

type Service struct {
	db    *gorm.DB
	log   *logrus.Entry
	codes *helper.CodeGenerator
	now   func() time.Time
}

func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{db: d.DB, log: d.Log.WithField("service", "rumbles"), codes: d.Codes, now: now}
}

// Spec describes the rumble template to create for each section.
type Spec struct {
	NumMinutes int  `json:"numMinutes" validate:"required,min=1,max=1440"`
	PromptID   uint `json:"promptId" validate:"required"`
}

// CreateInstances creates one rumble per section in a single transaction.
// Any failure rolls back the whole batch.
func (s *Service) CreateInstances(ctx context.Context, spec Spec, sectionIDs []uint) ([]model.RumbleWithSection, error) {
	out := make([]model.RumbleWithSection, 0, len(sectionIDs))

	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		for _, sectionID := range sectionIDs {
			sec, err := sectionRepo.FindByID(tx, sectionID)
			if err != nil {
				return database.NotFoundOr(err, fmt.Sprintf("Invalid section ID %d", sectionID))
			}

			r := &model.RumbleModel{
				// section id keeps codes distinct within one millisecond
				JoinCode:    s.codes.JoinCode(fmt.Sprintf("%d-%d-%d", spec.NumMinutes, spec.PromptID, sec.ID)),
				PromptID:    spec.PromptID,
				NumMinutes:  spec.NumMinutes,
				CanJoin:     false,
				MaxSections: 1,
			}
			if err := repository.Create(tx, r); err != nil {
				return database.NotFoundOr(err, "rumble not created")
			}
			if err := repository.LinkSection(tx, r.ID, sec.ID); err != nil {
				return err
			}

			out = append(out, model.RumbleWithSection{
				RumbleModel: *r,
				SectionID:   sec.ID,
				SectionName: sec.Name,
				Phase:       constants.PhasePending,
			})
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("sections", sectionIDs).Error("create rumbles failed")
		return nil, err
	}
	return out, nil
}

// StartRumble schedules the rumble on one section and returns the end time.
func (s *Service) StartRumble(ctx context.Context, sectionID, rumbleID uint) (time.Time, error) {
	log := s.log.WithFields(logrus.Fields{"section_id": sectionID, "rumble_id": rumbleID})
	var end time.Time

	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		r, err := repository.FindByID(tx, rumbleID)
		if err != nil {
			return database.NotFoundOr(err, "Rumble not found")
		}

		start := s.now().UTC()
		end = start.Add(time.Duration(r.NumMinutes) * time.Minute)

		n, err := repository.StartInSection(tx, rumbleID, sectionID, start, end)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("Rumble %d is not linked to section %d", rumbleID, sectionID)
		}
		return repository.SetCanJoin(tx, rumbleID, false)
	})
	if err != nil {
		log.WithError(err).Error("start rumble failed")
		return time.Time{}, err
	}
	return end, nil
}

// ActiveRumblesForSections fills ActiveRumbles on every section in place.
func (s *Service) ActiveRumblesForSections(ctx context.Context, sections []*sectionModel.SectionWithRumbles) error {
	for _, sec := range sections {
		rumbles, err := s.ActiveRumblesBySection(ctx, sec.ID)
		if err != nil {
			return err
		}
		sec.ActiveRumbles = rumbles
	}
	return nil
}

// ActiveRumblesBySection lists rumbles whose end time is unset or in the future.
func (s *Service) ActiveRumblesBySection(ctx context.Context, sectionID uint) ([]model.RumbleWithSection, error) {
	now := s.now().UTC()
	rumbles, err := repository.ListActiveBySection(database.Conn(ctx, s.db), sectionID, now)
	if err != nil {
		s.log.WithError(err).WithField("section_id", sectionID).Error("active rumbles lookup failed")
		return nil, err
	}
	for i := range rumbles {
		rumbles[i].Phase = EffectivePhase(rumbles[i], now)
	}
	return rumbles, nil
}

// ListBySection returns every rumble of a section, newest first.
func (s *Service) ListBySection(ctx context.Context, sectionID uint) ([]model.RumbleWithSection, error) {
	now := s.now().UTC()
	rumbles, err := repository.ListBySection(database.Conn(ctx, s.db), sectionID)
	if err != nil {
		s.log.WithError(err).WithField("section_id", sectionID).Error("list rumbles failed")
		return nil, err
	}
	for i := range rumbles {
		rumbles[i].Phase = EffectivePhase(rumbles[i], now)
	}
	return rumbles, nil
}

func (s *Service) GetRumble(ctx context.Context, id uint) (*model.RumbleModel, error) {
	r, err := repository.FindByID(database.Conn(ctx, s.db), id)
	if err != nil {
		return nil, database.NotFoundOr(err, "Rumble not found")
	}
	return r, nil
}

// GetRumbleInSection returns a rumble as scheduled on one section.
func (s *Service) GetRumbleInSection(ctx context.Context, rumbleID, sectionID uint) (*model.RumbleWithSection, error) {
	r, err := repository.FindInSection(database.Conn(ctx, s.db), rumbleID, sectionID)
	if err != nil {
		return nil, database.NotFoundOr(err, "Rumble not found")
	}
	r.Phase = EffectivePhase(*r, s.now().UTC())
	return r, nil
}

// EffectivePhase derives the phase from the section schedule.
func EffectivePhase(r model.RumbleWithSection, now time.Time) string {
	switch {
	case r.StartTime == nil:
		return constants.PhasePending
	case r.EndTime != nil && !now.Before(*r.EndTime):
		return constants.PhaseEnded
	default:
		return constants.PhaseActive
	}
}

package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rumble_backend/internals/features/contest/prompts/model"
	"rumble_backend/internals/features/contest/prompts/repository"

	database "rumble_backend/internals/databases"
	"rumble_backend/internals/helpers/apperr"
)

type Deps struct {
	DB  *gorm.DB
	Log *logrus.Entry
}

type Service struct {
	db  *gorm.DB
	log *logrus.Entry
}

func New(d Deps) *Service {
	return &Service{db: d.DB, log: d.Log.WithField("service", "prompts")}
}

func (s *Service) GetActive(ctx context.Context) (*model.PromptModel, error) {
	p, err := repository.FindActive(database.Conn(ctx, s.db))
	if err != nil {
		return nil, database.NotFoundOr(err, "No active prompt")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]model.PromptModel, error) {
	out, err := repository.List(database.Conn(ctx, s.db), limit, offset)
	if err != nil {
		s.log.WithError(err).Error("list prompts failed")
		return nil, err
	}
	return out, nil
}

// Create inserts a prompt; an active one replaces the current active prompt.
func (s *Service) Create(ctx context.Context, text string, active bool) (*model.PromptModel, error) {
	p := &model.PromptModel{Prompt: text}
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if err := repository.Create(tx, p); err != nil {
			return err
		}
		if p.ID == 0 {
			return apperr.Conflict("Could not create prompt")
		}
		if !active {
			return nil
		}
		_, err := repository.Activate(tx, p.ID)
		p.Active = err == nil
		return err
	})
	if err != nil {
		s.log.WithError(err).Error("create prompt failed")
		return nil, err
	}
	return p, nil
}

// Activate makes id the only active prompt.
func (s *Service) Activate(ctx context.Context, id uint) (*model.PromptModel, error) {
	var p *model.PromptModel
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		rows, err := repository.Activate(tx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("Prompt not found")
		}
		p, err = repository.FindByID(tx, id)
		return err
	})
	if err != nil {
		s.log.WithError(err).WithField("prompt_id", id).Info("activate prompt failed")
		return nil, err
	}
	return p, nil
}

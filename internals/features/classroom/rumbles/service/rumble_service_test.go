package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rumble_backend/internals/features/classroom/rumbles/model"
	"rumble_backend/internals/features/classroom/rumbles/repository"
	sectionModel "rumble_backend/internals/features/classroom/sections/model"
	sectionRepo "rumble_backend/internals/features/classroom/sections/repository"

	"rumble_backend/internals/constants"
	helper "rumble_backend/internals/helpers"
	"rumble_backend/internals/helpers/apperr"
	"rumble_backend/internals/testutil"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newService(t *testing.T) (*Service, *gorm.DB, *clock) {
	t.Helper()
	db := testutil.NewDB(t)
	log, _ := testutil.NewLogger()
	clk := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	codes := &helper.CodeGenerator{Namespace: uuid.New(), Now: clk.Now}
	return New(Deps{DB: db, Log: log, Codes: codes, Now: clk.Now}), db, clk
}

func seedSection(t *testing.T, db *gorm.DB, name string) *sectionModel.SectionModel {
	t.Helper()
	s := &sectionModel.SectionModel{Name: name, JoinCode: uuid.NewString(), SubjectID: 1, GradeID: 1, Active: true}
	require.NoError(t, sectionRepo.Create(db, s))
	return s
}

func TestCreateInstances(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	s1 := seedSection(t, db, "Period 1")
	s2 := seedSection(t, db, "Period 2")

	got, err := svc.CreateInstances(ctx, Spec{NumMinutes: 15, PromptID: 3}, []uint{s1.ID, s2.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Period 1", got[0].SectionName)
	assert.Equal(t, "Period 2", got[1].SectionName)
	assert.NotEqual(t, got[0].JoinCode, got[1].JoinCode)
	for _, r := range got {
		assert.False(t, r.CanJoin)
		assert.Equal(t, 1, r.MaxSections)
		assert.Equal(t, 15, r.NumMinutes)
		assert.EqualValues(t, 3, r.PromptID)
	}

	n, err := repository.Count(db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestCreateInstances_AllOrNothing(t *testing.T) {
	svc, db, _ := newService(t)
	s1 := seedSection(t, db, "Period 1")

	_, err := svc.CreateInstances(context.Background(), Spec{NumMinutes: 15, PromptID: 3}, []uint{s1.ID, s1.ID + 99})
	assert.True(t, apperr.IsNotFound(err))

	n, err := repository.Count(db)
	require.NoError(t, err)
	assert.Zero(t, n, "first section's rumble must be rolled back")

	active, err := svc.ActiveRumblesBySection(context.Background(), s1.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCreateInstances_LinkFailureRollsBack(t *testing.T) {
	svc, db, _ := newService(t)
	s1 := seedSection(t, db, "Period 1")
	s2 := seedSection(t, db, "Period 2")

	// the second section link insert fails after both rumble rows exist
	links := 0
	linkErr := errors.New("link insert failed")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_second_link", func(tx *gorm.DB) {
		if tx.Statement.Table != "rumble_sections" {
			return
		}
		links++
		if links == 2 {
			_ = tx.AddError(linkErr)
		}
	}))

	_, err := svc.CreateInstances(context.Background(), Spec{NumMinutes: 15, PromptID: 3}, []uint{s1.ID, s2.ID})
	require.ErrorIs(t, err, linkErr)
	assert.Equal(t, 2, links)

	n, err := repository.Count(db)
	require.NoError(t, err)
	assert.Zero(t, n)

	var linkRows int64
	require.NoError(t, db.Model(&model.RumbleSectionModel{}).Count(&linkRows).Error)
	assert.Zero(t, linkRows)
}

func TestStartRumble_ActiveWindow(t *testing.T) {
	svc, db, clk := newService(t)
	ctx := context.Background()
	sec := seedSection(t, db, "Period 1")

	created, err := svc.CreateInstances(ctx, Spec{NumMinutes: 30, PromptID: 1}, []uint{sec.ID})
	require.NoError(t, err)
	rumbleID := created[0].ID

	end, err := svc.StartRumble(ctx, sec.ID, rumbleID)
	require.NoError(t, err)
	assert.Equal(t, clk.t.Add(30*time.Minute), end)
	assert.Equal(t, time.UTC, end.Location())

	// template is not scheduled, only the section link
	tpl, err := svc.GetRumble(ctx, rumbleID)
	require.NoError(t, err)
	assert.False(t, tpl.CanJoin)

	clk.t = clk.t.Add(29 * time.Minute)
	active, err := svc.ActiveRumblesBySection(ctx, sec.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, constants.PhaseActive, active[0].Phase)
	require.NotNil(t, active[0].EndTime)
	assert.True(t, end.Equal(*active[0].EndTime))

	clk.t = clk.t.Add(2 * time.Minute)
	active, err = svc.ActiveRumblesBySection(ctx, sec.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListBySection(ctx, sec.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, constants.PhaseEnded, all[0].Phase)
}

func TestStartRumble_PerSectionSchedule(t *testing.T) {
	svc, db, clk := newService(t)
	ctx := context.Background()
	s1 := seedSection(t, db, "Period 1")
	s2 := seedSection(t, db, "Period 2")

	created, err := svc.CreateInstances(ctx, Spec{NumMinutes: 10, PromptID: 1}, []uint{s1.ID})
	require.NoError(t, err)
	rumbleID := created[0].ID
	require.NoError(t, repository.LinkSection(db, rumbleID, s2.ID))

	_, err = svc.StartRumble(ctx, s1.ID, rumbleID)
	require.NoError(t, err)

	r1, err := svc.GetRumbleInSection(ctx, rumbleID, s1.ID)
	require.NoError(t, err)
	r2, err := svc.GetRumbleInSection(ctx, rumbleID, s2.ID)
	require.NoError(t, err)
	assert.NotNil(t, r1.EndTime)
	assert.Nil(t, r2.EndTime)
	assert.Equal(t, constants.PhasePending, r2.Phase)

	clk.t = clk.t.Add(time.Hour)
	active, err := svc.ActiveRumblesBySection(ctx, s2.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1, "unscheduled link stays active")
}

func TestStartRumble_Errors(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	s1 := seedSection(t, db, "Period 1")
	s2 := seedSection(t, db, "Period 2")

	created, err := svc.CreateInstances(ctx, Spec{NumMinutes: 10, PromptID: 1}, []uint{s1.ID})
	require.NoError(t, err)

	_, err = svc.StartRumble(ctx, s1.ID, created[0].ID+50)
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.StartRumble(ctx, s2.ID, created[0].ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestActiveRumblesForSections_MutatesInPlace(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	s1 := seedSection(t, db, "Period 1")
	s2 := seedSection(t, db, "Period 2")

	_, err := svc.CreateInstances(ctx, Spec{NumMinutes: 10, PromptID: 1}, []uint{s1.ID})
	require.NoError(t, err)

	sections := []*sectionModel.SectionWithRumbles{{SectionModel: *s1}, {SectionModel: *s2}}
	require.NoError(t, svc.ActiveRumblesForSections(ctx, sections))
	assert.Len(t, sections[0].ActiveRumbles, 1)
	assert.Empty(t, sections[1].ActiveRumbles)
}

func TestEffectivePhase(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	before, after := now.Add(-time.Minute), now.Add(time.Minute)

	tests := []struct {
		name string
		r    model.RumbleWithSection
		want string
	}{
		{"not started", model.RumbleWithSection{}, constants.PhasePending},
		{"running", model.RumbleWithSection{StartTime: &before, EndTime: &after}, constants.PhaseActive},
		{"ends now", model.RumbleWithSection{StartTime: &before, EndTime: &now}, constants.PhaseEnded},
		{"over", model.RumbleWithSection{StartTime: &before, EndTime: &before}, constants.PhaseEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePhase(tt.r, now))
		})
	}
}

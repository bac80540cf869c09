package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	rumbleModel "rumble_backend/internals/features/classroom/rumbles/model"
	rumbleRepo "rumble_backend/internals/features/classroom/rumbles/repository"
	sectionModel "rumble_backend/internals/features/classroom/sections/model"
	sectionRepo "rumble_backend/internals/features/classroom/sections/repository"
	promptModel "rumble_backend/internals/features/contest/prompts/model"
	promptRepo "rumble_backend/internals/features/contest/prompts/repository"
	"rumble_backend/internals/features/contest/scoring"
	"rumble_backend/internals/features/contest/submissions/dto"
	"rumble_backend/internals/features/contest/submissions/model"
	"rumble_backend/internals/features/contest/submissions/repository"
	userModel "rumble_backend/internals/features/users/user/model"
	userRepo "rumble_backend/internals/features/users/user/repository"

	"rumble_backend/internals/constants"
	"rumble_backend/internals/helpers/apperr"
	helperOSS "rumble_backend/internals/helpers/oss"
	"rumble_backend/internals/testutil"
)

type fixture struct {
	svc    *Service
	db     *gorm.DB
	blobs  *helperOSS.MemoryBlobStore
	hook   *test.Hook
	user   *userModel.UserModel
	prompt *promptModel.PromptModel
	score  *scoring.Response
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log, hook := testutil.NewLogger()

	f := &fixture{
		db:    db,
		blobs: helperOSS.NewMemoryBlobStore(),
		hook:  hook,
		score: &scoring.Response{
			Confidence: 87.6, Rotation: 0.4, SquadScore: 92.2, Transcription: "the dragon slept",
			Raw: []byte(`{"Confidence":87.6,"Rotation":0.4,"SquadScore":92.2,"Transcription":"the dragon slept"}`),
		},
	}
	gw := scoring.GatewayFunc(func(ctx context.Context, pages []scoring.Page, promptID uint) (*scoring.Response, error) {
		if f.score == nil {
			return nil, errors.New("scorer offline")
		}
		return f.score, nil
	})
	f.svc = New(Deps{DB: db, Log: log, Blobs: f.blobs, Scorer: gw, Images: helperOSS.PageImageOptions{Format: "original"}})

	f.user = &userModel.UserModel{Codename: "Sparky", Email: "sparky@example.com", Password: "x", Role: constants.RoleStudent}
	require.NoError(t, userRepo.Create(db, f.user))
	f.prompt = &promptModel.PromptModel{Prompt: "Write about a dragon", Active: true}
	require.NoError(t, promptRepo.Create(db, f.prompt))
	return f
}

func (f *fixture) upload(t *testing.T, content string) dto.UploadResponse {
	t.Helper()
	up, err := f.svc.Upload(context.Background(), f.user.ID, "page.png", []byte(content))
	require.NoError(t, err)
	return *up
}

func (f *fixture) process(t *testing.T, content string) *dto.SubItem {
	t.Helper()
	item, err := f.svc.ProcessSubmission(context.Background(), ProcessInput{
		Upload:   f.upload(t, content),
		PromptID: f.prompt.ID,
		User:     f.user,
	})
	require.NoError(t, err)
	return item
}

func TestRoundHalfUp(t *testing.T) {
	tests := map[float64]int{
		87.6:    88,
		0.4:     0,
		92.2:    92,
		2.5:     3,
		0.49999: 0,
		-0.5:    0,
		-1.5:    -1,
		-2.6:    -3,
	}
	for in, want := range tests {
		assert.Equal(t, want, RoundHalfUp(in), "RoundHalfUp(%v)", in)
	}
}

func TestProcessSubmission_PersistsRoundedScores(t *testing.T) {
	f := newFixture(t)

	item := f.process(t, "page-one")
	assert.Equal(t, 92, item.Score)
	assert.Equal(t, 0, item.Rotation)
	assert.Equal(t, "Sparky", item.Codename)
	assert.Equal(t, "Write about a dragon", item.Prompt)
	assert.Nil(t, item.RumbleID)

	sub, err := repository.FindByID(f.db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 88, sub.Confidence)
	assert.Equal(t, 0, sub.Rotation)
	assert.Equal(t, 92, sub.Score)
	assert.Equal(t, constants.SourceFDSC, sub.SourceID)
	assert.Equal(t, "the dragon slept", sub.Transcription)

	var rec model.SubmissionTranscriptionModel
	require.NoError(t, f.db.Where("submission_transcription_submission_id = ?", item.ID).First(&rec).Error)
	assert.Equal(t, "the dragon slept", rec.Text)
	assert.Equal(t, constants.TranscriptionSourceDS, rec.TranscriptionSourceID)
	assert.JSONEq(t, string(f.score.Raw), string(rec.Payload))
}

func TestProcessSubmission_UserTranscriptionAndRumble(t *testing.T) {
	f := newFixture(t)
	text := "typed by the student"
	rumbleID := uint(5)

	item, err := f.svc.ProcessSubmission(context.Background(), ProcessInput{
		Upload:                f.upload(t, "page"),
		PromptID:              f.prompt.ID,
		User:                  f.user,
		SourceID:              constants.SourceRumble,
		RumbleID:              &rumbleID,
		Transcription:         &text,
		TranscriptionSourceID: constants.TranscriptionSourceUser,
	})
	require.NoError(t, err)
	require.NotNil(t, item.RumbleID)
	assert.EqualValues(t, 5, *item.RumbleID)

	var rec model.SubmissionTranscriptionModel
	require.NoError(t, f.db.Where("submission_transcription_submission_id = ?", item.ID).First(&rec).Error)
	assert.Equal(t, text, rec.Text)
	assert.Equal(t, constants.TranscriptionSourceUser, rec.TranscriptionSourceID)
}

func TestProcessSubmission_TranscriptionFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Migrator().DropTable(&model.SubmissionTranscriptionModel{}))

	item := f.process(t, "page")
	assert.NotZero(t, item.ID)

	var logged bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.InfoLevel && e.Data["step"] == "save transcription" {
			logged = true
		}
	}
	assert.True(t, logged, "best-effort failure must be logged")
}

func TestProcessSubmission_ScoringErrorPropagates(t *testing.T) {
	f := newFixture(t)
	up := f.upload(t, "page")
	f.score = nil

	_, err := f.svc.ProcessSubmission(context.Background(), ProcessInput{Upload: up, PromptID: f.prompt.ID, User: f.user})
	assert.EqualError(t, err, "scorer offline")

	var n int64
	require.NoError(t, f.db.Model(&model.SubmissionModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRetrieveSubItem_RoundTripsBlobBytes(t *testing.T) {
	f := newFixture(t)
	content := "\x89PNG\r\n\x1a\n raw page bytes \x00\xff"
	item := f.process(t, content)

	sub, err := repository.FindByID(f.db, item.ID)
	require.NoError(t, err)
	stored, err := f.blobs.Get(context.Background(), sub.BlobLabel, sub.Etag)
	require.NoError(t, err)

	got, err := DecodeSrc(item.Src)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	assert.Equal(t, []byte(content), got)
	assert.Contains(t, item.Src, "data:application/octet-stream;base64,")
}

func TestRetrieveSubItem_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	up := f.upload(t, "page")

	t.Run("missing prompt", func(t *testing.T) {
		sub := &model.SubmissionModel{ID: 1, UserID: f.user.ID, PromptID: 999, BlobLabel: up.BlobLabel, Etag: up.Etag}
		_, err := f.svc.RetrieveSubItem(ctx, sub, "")
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("missing artifact", func(t *testing.T) {
		sub := &model.SubmissionModel{ID: 1, UserID: f.user.ID, PromptID: f.prompt.ID, BlobLabel: "gone", Etag: "x"}
		_, err := f.svc.RetrieveSubItem(ctx, sub, "")
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("supplied codename skips user lookup", func(t *testing.T) {
		sub := &model.SubmissionModel{ID: 1, UserID: 4242, PromptID: f.prompt.ID, BlobLabel: up.BlobLabel, Etag: up.Etag}
		item, err := f.svc.RetrieveSubItem(ctx, sub, "Given")
		require.NoError(t, err)
		assert.Equal(t, "Given", item.Codename)

		_, err = f.svc.RetrieveSubItem(ctx, sub, "")
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestGetUserSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uint
	for _, c := range []string{"a", "b", "c", "d"} {
		ids = append(ids, f.process(t, c).ID)
	}

	page, err := f.svc.GetUserSubmissions(ctx, f.user.ID, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []uint{ids[3], ids[2], ids[1]}, []uint{page[0].ID, page[1].ID, page[2].ID})
	for _, item := range page {
		assert.Equal(t, "Sparky", item.Codename)
	}

	rest, err := f.svc.GetUserSubmissions(ctx, f.user.ID, 3, 3)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	got, _ := DecodeSrc(rest[0].Src)
	assert.Equal(t, []byte("a"), got)

	_, err = f.svc.GetUserSubmissions(ctx, 9999, 10, 0)
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	item := f.process(t, "page")

	got, err := f.svc.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	_, err = f.svc.GetByID(context.Background(), item.ID+1)
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetSubsByStudentAndSection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sec := &sectionModel.SectionModel{Name: "P1", JoinCode: "jc-1"}
	require.NoError(t, sectionRepo.Create(f.db, sec))
	r := &rumbleModel.RumbleModel{JoinCode: "r-1", PromptID: f.prompt.ID, NumMinutes: 10, MaxSections: 1}
	require.NoError(t, rumbleRepo.Create(f.db, r))
	require.NoError(t, rumbleRepo.LinkSection(f.db, r.ID, sec.ID))

	in, err := f.svc.ProcessSubmission(ctx, ProcessInput{
		Upload: f.upload(t, "rumble page"), PromptID: f.prompt.ID, User: f.user,
		SourceID: constants.SourceRumble, RumbleID: &r.ID,
	})
	require.NoError(t, err)
	f.process(t, "daily page")

	got, err := f.svc.GetSubsByStudentAndSection(ctx, f.user.ID, sec.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in.ID, got[0].ID)

	none, err := f.svc.GetSubsByStudentAndSection(ctx, f.user.ID, sec.ID+1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.process(t, "page")

	inappropriate := &model.EnumFlagModel{Flag: "INAPPROPRIATE"}
	plagiarism := &model.EnumFlagModel{Flag: "PLAGIARISM"}
	require.NoError(t, repository.CreateEnumFlag(f.db, inappropriate))
	require.NoError(t, repository.CreateEnumFlag(f.db, plagiarism))

	// anonymous
	flags, err := f.svc.FlagSubmission(ctx, item.ID, []uint{inappropriate.ID, plagiarism.ID}, nil)
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Nil(t, flags[0].CreatorID)

	names, err := f.svc.GetFlagsBySubID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"INAPPROPRIATE", "PLAGIARISM"}, names)

	require.NoError(t, f.svc.RemoveFlag(ctx, item.ID, inappropriate.ID))
	require.NoError(t, f.svc.RemoveFlag(ctx, item.ID, inappropriate.ID))
	names, err = f.svc.GetFlagsBySubID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"PLAGIARISM"}, names)

	_, err = f.svc.FlagSubmission(ctx, item.ID+100, []uint{plagiarism.ID}, &f.user.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.svc.FlagSubmission(ctx, item.ID, nil, nil)
	assert.True(t, apperr.IsValidation(err))

	empty, err := f.svc.GetFlagsBySubID(ctx, item.ID+100)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpload_NormalisesImages(t *testing.T) {
	f := newFixture(t)
	f.svc.images = helperOSS.PageImageOptions{MaxW: 10, MaxH: 10, Format: "jpeg", Quality: 80}

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewGray(image.Rect(0, 0, 40, 20))))

	up, err := f.svc.Upload(context.Background(), f.user.ID, "scan.png", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, up.BlobLabel, ".jpg")
	assert.NotEmpty(t, up.Etag)

	stored, err := f.blobs.Get(context.Background(), up.BlobLabel, up.Etag)
	require.NoError(t, err)
	assert.Equal(t, up.RawBytes, stored)

	_, err = f.svc.Upload(context.Background(), f.user.ID, "notes.txt", []byte("hello"))
	assert.True(t, apperr.IsValidation(err))
}

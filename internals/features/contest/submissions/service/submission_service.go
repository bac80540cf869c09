package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	promptRepo "rumble_backend/internals/features/contest/prompts/repository"
	"rumble_backend/internals/features/contest/scoring"
	"rumble_backend/internals/features/contest/submissions/dto"
	"rumble_backend/internals/features/contest/submissions/model"
	"rumble_backend/internals/features/contest/submissions/repository"
	userModel "rumble_backend/internals/features/users/user/model"
	userRepo "rumble_backend/internals/features/users/user/repository"

	"rumble_backend/internals/constants"
	database "rumble_backend/internals/databases"
	helper "rumble_backend/internals/helpers"
	"rumble_backend/internals/helpers/apperr"
	helperOSS "rumble_backend/internals/helpers/oss"
	"rumble_backend/internals/metrics"
)

const dataURIPrefix = "data:application/octet-stream;base64,"

// enrichment fan-out per request
const maxParallelLookups = 8

type Deps struct {
	DB      *gorm.DB
	Log     *logrus.Entry
	Blobs   helperOSS.BlobStore
	Scorer  scoring.Gateway
	Metrics *metrics.Metrics
	Images  helperOSS.PageImageOptions
}

type Service struct {
	db      *gorm.DB
	log     *logrus.Entry
	blobs   helperOSS.BlobStore
	scorer  scoring.Gateway
	metrics *metrics.Metrics
	images  helperOSS.PageImageOptions
}

func New(d Deps) *Service {
	return &Service{
		db:      d.DB,
		log:     d.Log.WithField("service", "submissions"),
		blobs:   d.Blobs,
		scorer:  d.Scorer,
		metrics: d.Metrics,
		images:  d.Images,
	}
}

// ProcessInput carries one uploaded page through scoring and persistence.
type ProcessInput struct {
	Upload                dto.UploadResponse
	PromptID              uint
	User                  *userModel.UserModel
	SourceID              int
	RumbleID              *uint
	Transcription         *string
	TranscriptionSourceID int
}

// =====================================================
// Intake
// =====================================================

// Upload normalises a page image and stores it.
func (s *Service) Upload(ctx context.Context, userID uint, filename string, raw []byte) (*dto.UploadResponse, error) {
	if len(raw) == 0 {
		return nil, apperr.Validation("empty upload")
	}

	data, contentType := raw, constants.DetectContentTypeFromExt(filename)
	if s.images.Format != "original" {
		var err error
		data, contentType, err = helperOSS.NormalizePageImage(raw, filename, s.images)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, "unsupported page image")
		}
	}

	label := fmt.Sprintf("%d/%s%s", userID, uuid.NewString(), extFor(contentType, filename))
	etag, err := s.blobs.Put(ctx, label, data, contentType)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("store page failed")
		return nil, err
	}
	return &dto.UploadResponse{BlobLabel: label, Etag: etag, RawBytes: data}, nil
}

func extFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/png":
		return ".png"
	}
	return strings.ToLower(filepath.Ext(filename))
}

// ProcessSubmission scores, persists and returns the display item. The raw
// transcription record is best-effort.
func (s *Service) ProcessSubmission(ctx context.Context, in ProcessInput) (*dto.SubItem, error) {
	log := s.log.WithFields(logrus.Fields{"user_id": in.User.ID, "prompt_id": in.PromptID, "label": in.Upload.BlobLabel})
	if in.SourceID == 0 {
		in.SourceID = constants.SourceFDSC
	}
	if in.TranscriptionSourceID == 0 {
		in.TranscriptionSourceID = constants.TranscriptionSourceDS
	}

	// received -> scored
	res, err := s.scorer.SendSubmission(ctx, []scoring.Page{{
		Etag:      in.Upload.Etag,
		BlobLabel: in.Upload.BlobLabel,
		RawBytes:  in.Upload.RawBytes,
	}}, in.PromptID)
	if err != nil {
		s.metrics.SubmissionResult("scoring_error")
		log.WithError(err).Error("scoring failed")
		return nil, err
	}

	// scored -> persisted
	sub := formatNewSub(in, res)
	if err := repository.Create(database.Conn(ctx, s.db), sub); err != nil {
		s.metrics.SubmissionResult("persist_error")
		log.WithError(err).Error("insert submission failed")
		return nil, database.NotFoundOr(err, "Could not add to database")
	}
	if sub.ID == 0 {
		s.metrics.SubmissionResult("persist_error")
		return nil, apperr.Conflict("Could not add to database")
	}

	item, err := s.RetrieveSubItem(ctx, sub, in.User.Codename)
	if err != nil {
		s.metrics.SubmissionResult("retrieve_error")
		return nil, err
	}

	// persisted -> transcribed
	helper.BestEffort(ctx, log, "save transcription", func(ctx context.Context) error {
		text := res.Transcription
		if in.Transcription != nil {
			text = *in.Transcription
		}
		rec := &model.SubmissionTranscriptionModel{
			SubmissionID:          sub.ID,
			UserID:                in.User.ID,
			SourceID:              in.SourceID,
			TranscriptionSourceID: in.TranscriptionSourceID,
			Text:                  text,
		}
		if len(res.Raw) > 0 {
			rec.Payload = datatypes.JSON(res.Raw)
		}
		return repository.CreateTranscription(database.Conn(ctx, s.db), rec)
	})

	s.metrics.SubmissionResult("ok")
	return item, nil
}

func formatNewSub(in ProcessInput, res *scoring.Response) *model.SubmissionModel {
	return &model.SubmissionModel{
		UserID:        in.User.ID,
		PromptID:      in.PromptID,
		RumbleID:      in.RumbleID,
		SourceID:      in.SourceID,
		BlobLabel:     in.Upload.BlobLabel,
		Etag:          in.Upload.Etag,
		Score:         RoundHalfUp(res.SquadScore),
		Confidence:    RoundHalfUp(res.Confidence),
		Rotation:      RoundHalfUp(res.Rotation),
		Transcription: res.Transcription,
	}
}

var half = decimal.NewFromFloat(0.5)

// RoundHalfUp rounds to the nearest integer, halves toward +Inf.
func RoundHalfUp(f float64) int {
	return int(decimal.NewFromFloat(f).Add(half).Floor().IntPart())
}

// =====================================================
// Display items
// =====================================================

// RetrieveSubItem builds the display item. The codename is looked up only
// when the caller does not supply it.
func (s *Service) RetrieveSubItem(ctx context.Context, sub *model.SubmissionModel, codename string) (*dto.SubItem, error) {
	log := s.log.WithField("submission_id", sub.ID)

	src, err := s.imgSrc(ctx, sub)
	if err != nil {
		log.WithError(err).Error("artifact fetch failed")
		return nil, err
	}

	db := database.Conn(ctx, s.db)
	prompt, err := promptRepo.FindByID(db, sub.PromptID)
	if err != nil {
		log.WithError(err).Error("prompt lookup failed")
		return nil, database.NotFoundOr(err, "Prompt not found")
	}

	if codename == "" {
		if codename, err = userRepo.FindCodename(db, sub.UserID); err != nil {
			log.WithError(err).Error("codename lookup failed")
			return nil, database.NotFoundOr(err, "User not found")
		}
	}

	return &dto.SubItem{
		ID:       sub.ID,
		Src:      src,
		Score:    sub.Score,
		Prompt:   prompt.Prompt,
		Rotation: sub.Rotation,
		Codename: codename,
		UserID:   sub.UserID,
		RumbleID: sub.RumbleID,
	}, nil
}

func (s *Service) imgSrc(ctx context.Context, sub *model.SubmissionModel) (string, error) {
	data, err := s.blobs.Get(ctx, sub.BlobLabel, sub.Etag)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSrc returns the bytes embedded in a display item's src.
func DecodeSrc(src string) ([]byte, error) {
	if !strings.HasPrefix(src, dataURIPrefix) {
		return nil, errors.New("not an octet-stream data URI")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(src, dataURIPrefix))
}

// RetrieveSubItems enriches subs concurrently; output order matches input.
func (s *Service) RetrieveSubItems(ctx context.Context, subs []model.SubmissionModel, codename string) ([]dto.SubItem, error) {
	items := make([]dto.SubItem, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i := range subs {
		i := i
		g.Go(func() error {
			item, err := s.RetrieveSubItem(gctx, &subs[i], codename)
			if err != nil {
				return err
			}
			items[i] = *item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetUserSubmissions pages a user's submissions, newest first.
func (s *Service) GetUserSubmissions(ctx context.Context, userID uint, limit, offset int) ([]dto.SubItem, error) {
	db := database.Conn(ctx, s.db)

	subs, err := repository.ListByUser(db, userID, limit, offset)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("list user submissions failed")
		return nil, err
	}

	// one codename lookup for the whole page
	codename, err := userRepo.FindCodename(db, userID)
	if err != nil {
		return nil, database.NotFoundOr(err, "User not found")
	}
	return s.RetrieveSubItems(ctx, subs, codename)
}

func (s *Service) GetByID(ctx context.Context, id uint) (*dto.SubItem, error) {
	sub, err := repository.FindByID(database.Conn(ctx, s.db), id)
	if err != nil {
		return nil, database.NotFoundOr(err, "Submission not found")
	}
	return s.RetrieveSubItem(ctx, sub, "")
}

// GetSubsByStudentAndSection lists a student's rumble submissions in a section.
func (s *Service) GetSubsByStudentAndSection(ctx context.Context, studentID, sectionID uint) ([]dto.SubItem, error) {
	db := database.Conn(ctx, s.db)
	subs, err := repository.ListByStudentAndSection(db, studentID, sectionID)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"student_id": studentID, "section_id": sectionID}).
			Error("list section submissions failed")
		return nil, err
	}
	if len(subs) == 0 {
		return []dto.SubItem{}, nil
	}
	codename, err := userRepo.FindCodename(db, studentID)
	if err != nil {
		return nil, database.NotFoundOr(err, "User not found")
	}
	return s.RetrieveSubItems(ctx, subs, codename)
}

// =====================================================
// Moderation
// =====================================================

// FlagSubmission attaches flags; creatorID may be nil for anonymous flags.
func (s *Service) FlagSubmission(ctx context.Context, submissionID uint, flagIDs []uint, creatorID *uint) ([]model.SubmissionFlagModel, error) {
	if len(flagIDs) == 0 {
		return nil, apperr.Validation("no flags given")
	}
	db := database.Conn(ctx, s.db)
	if _, err := repository.FindByID(db, submissionID); err != nil {
		return nil, database.NotFoundOr(err, "Submission not found")
	}

	flags := make([]model.SubmissionFlagModel, 0, len(flagIDs))
	for _, id := range flagIDs {
		flags = append(flags, model.SubmissionFlagModel{SubmissionID: submissionID, FlagID: id, CreatorID: creatorID})
	}
	if err := repository.CreateFlags(db, flags); err != nil {
		s.log.WithError(err).WithField("submission_id", submissionID).Error("flag submission failed")
		return nil, err
	}
	return flags, nil
}

// RemoveFlag deletes one flag type from a submission. Missing flags are not an error.
func (s *Service) RemoveFlag(ctx context.Context, submissionID, flagID uint) error {
	if _, err := repository.DeleteFlag(database.Conn(ctx, s.db), submissionID, flagID); err != nil {
		s.log.WithError(err).WithField("submission_id", submissionID).Error("remove flag failed")
		return err
	}
	return nil
}

func (s *Service) GetFlagsBySubID(ctx context.Context, submissionID uint) ([]string, error) {
	names, err := repository.ListFlagNames(database.Conn(ctx, s.db), submissionID)
	if err != nil {
		s.log.WithError(err).WithField("submission_id", submissionID).Error("list flags failed")
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *Service) ListFlagTypes(ctx context.Context) ([]model.EnumFlagModel, error) {
	return repository.ListEnumFlags(database.Conn(ctx, s.db))
}

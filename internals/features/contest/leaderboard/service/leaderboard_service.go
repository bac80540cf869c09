package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rumble_backend/internals/features/contest/leaderboard/dto"
	"rumble_backend/internals/features/contest/leaderboard/model"
	"rumble_backend/internals/features/contest/leaderboard/repository"
	promptRepo "rumble_backend/internals/features/contest/prompts/repository"
	subDTO "rumble_backend/internals/features/contest/submissions/dto"
	subModel "rumble_backend/internals/features/contest/submissions/model"
	subRepo "rumble_backend/internals/features/contest/submissions/repository"

	database "rumble_backend/internals/databases"
	"rumble_backend/internals/helpers/apperr"
)

const (
	topTenSize = 10
	top3Size   = 3
)

// points per placement on a ballot
var placementPoints = [3]int{3, 2, 1}

// ItemRetriever turns submissions into display items.
type ItemRetriever interface {
	RetrieveSubItem(ctx context.Context, sub *subModel.SubmissionModel, codename string) (*subDTO.SubItem, error)
	RetrieveSubItems(ctx context.Context, subs []subModel.SubmissionModel, codename string) ([]subDTO.SubItem, error)
}

type Deps struct {
	DB    *gorm.DB
	Log   *logrus.Entry
	Items ItemRetriever
}

type Service struct {
	db    *gorm.DB
	log   *logrus.Entry
	items ItemRetriever
}

func New(d Deps) *Service {
	return &Service{db: d.DB, log: d.Log.WithField("service", "leaderboard"), items: d.Items}
}

// GetTopTen returns the ten best submissions of the active prompt and whether
// a top 3 has been frozen for it.
func (s *Service) GetTopTen(ctx context.Context) (*dto.TopTen, error) {
	db := database.Conn(ctx, s.db)

	prompt, err := promptRepo.FindActive(db)
	if err != nil {
		return nil, database.NotFoundOr(err, "No active prompt")
	}

	subs, err := subRepo.ListTopByPrompt(db, prompt.ID, topTenSize)
	if err != nil {
		s.log.WithError(err).WithField("prompt_id", prompt.ID).Error("top ten query failed")
		return nil, err
	}
	items, err := s.items.RetrieveSubItems(ctx, subs, "")
	if err != nil {
		return nil, err
	}

	hasVoted, err := repository.HasTop3ForPrompt(db, prompt.ID)
	if err != nil {
		s.log.WithError(err).WithField("prompt_id", prompt.ID).Error("top 3 lookup failed")
		return nil, err
	}
	return &dto.TopTen{Subs: items, HasVoted: hasVoted}, nil
}

// SetTop3 appends ids to the top 3 log as one freeze. Ids are not checked.
func (s *Service) SetTop3(ctx context.Context, ids []uint) ([]model.Top3Model, error) {
	rows := make([]model.Top3Model, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.Top3Model{SubmissionID: id})
	}
	if err := repository.CreateTop3(database.Conn(ctx, s.db), rows); err != nil {
		s.log.WithError(err).WithField("ids", ids).Error("set top 3 failed")
		return nil, err
	}
	return rows, nil
}

// GetTop3Subs returns the three most recently frozen finalists.
func (s *Service) GetTop3Subs(ctx context.Context) ([]subDTO.SubItem, error) {
	subs, err := repository.LatestTop3Submissions(database.Conn(ctx, s.db), top3Size)
	if err != nil {
		s.log.WithError(err).Error("top 3 query failed")
		return nil, err
	}
	return s.items.RetrieveSubItems(ctx, subs, "")
}

// GetRecentWinner returns nil, nil when no winner was declared yet.
func (s *Service) GetRecentWinner(ctx context.Context) (*subDTO.SubItem, error) {
	sub, err := repository.LatestWinnerSubmission(database.Conn(ctx, s.db))
	if err != nil {
		s.log.WithError(err).Error("winner query failed")
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	return s.items.RetrieveSubItem(ctx, sub, "")
}

// =====================================================
// Votes
// =====================================================

// SubmitVote records a ballot over the current finalists.
func (s *Service) SubmitVote(ctx context.Context, userID, first, second, third uint) (*model.VoteModel, error) {
	if first == second || first == third || second == third {
		return nil, apperr.Validation("placements must be distinct")
	}

	db := database.Conn(ctx, s.db)
	current, err := repository.LatestTop3(db, top3Size)
	if err != nil {
		return nil, err
	}
	finalists := make(map[uint]bool, len(current))
	for _, row := range current {
		finalists[row.SubmissionID] = true
	}
	for _, id := range []uint{first, second, third} {
		if !finalists[id] {
			return nil, apperr.Validation("submission %d is not a finalist", id)
		}
	}

	v := &model.VoteModel{UserID: userID, First: first, Second: second, Third: third}
	if err := repository.CreateVote(db, v); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("submit vote failed")
		return nil, err
	}
	return v, nil
}

// TallyVotes scores the current finalists with ballots cast since they were
// frozen. Ties keep the order of the top 3 log.
func (s *Service) TallyVotes(ctx context.Context) ([]dto.Tally, error) {
	db := database.Conn(ctx, s.db)
	current, err := repository.LatestTop3(db, top3Size)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, apperr.NotFound("No top 3 has been set")
	}

	since := current[0].CreatedAt
	rank := make(map[uint]int, len(current))
	tallies := make([]dto.Tally, 0, len(current))
	for _, row := range current {
		if row.CreatedAt.Before(since) {
			since = row.CreatedAt
		}
		if _, dup := rank[row.SubmissionID]; dup {
			continue
		}
		rank[row.SubmissionID] = len(tallies)
		tallies = append(tallies, dto.Tally{SubmissionID: row.SubmissionID})
	}

	votes, err := repository.ListVotesSince(db, since)
	if err != nil {
		s.log.WithError(err).Error("list votes failed")
		return nil, err
	}
	for _, v := range votes {
		for place, id := range []uint{v.First, v.Second, v.Third} {
			if i, ok := rank[id]; ok {
				tallies[i].Points += placementPoints[place]
				tallies[i].Votes++
			}
		}
	}

	sort.SliceStable(tallies, func(a, b int) bool { return tallies[a].Points > tallies[b].Points })
	return tallies, nil
}

// DeclareWinner appends the tally leader to the winner log.
func (s *Service) DeclareWinner(ctx context.Context) (*subDTO.SubItem, error) {
	tallies, err := s.TallyVotes(ctx)
	if err != nil {
		return nil, err
	}

	db := database.Conn(ctx, s.db)
	winnerID := tallies[0].SubmissionID
	sub, err := subRepo.FindByID(db, winnerID)
	if err != nil {
		return nil, database.NotFoundOr(err, "Submission not found")
	}
	if err := repository.CreateWinner(db, &model.WinnerModel{SubmissionID: winnerID}); err != nil {
		s.log.WithError(err).WithField("submission_id", winnerID).Error("declare winner failed")
		return nil, err
	}
	return s.items.RetrieveSubItem(ctx, sub, "")
}

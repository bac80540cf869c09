package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	promptModel "rumble_backend/internals/features/contest/prompts/model"
	promptRepo "rumble_backend/internals/features/contest/prompts/repository"
	subModel "rumble_backend/internals/features/contest/submissions/model"
	subRepo "rumble_backend/internals/features/contest/submissions/repository"
	subService "rumble_backend/internals/features/contest/submissions/service"
	userModel "rumble_backend/internals/features/users/user/model"
	userRepo "rumble_backend/internals/features/users/user/repository"

	"rumble_backend/internals/constants"
	"rumble_backend/internals/helpers/apperr"
	helperOSS "rumble_backend/internals/helpers/oss"
	"rumble_backend/internals/testutil"
)

type fixture struct {
	svc   *Service
	db    *gorm.DB
	blobs *helperOSS.MemoryBlobStore
	user  *userModel.UserModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log, _ := testutil.NewLogger()
	blobs := helperOSS.NewMemoryBlobStore()

	items := subService.New(subService.Deps{DB: db, Log: log, Blobs: blobs})
	f := &fixture{svc: New(Deps{DB: db, Log: log, Items: items}), db: db, blobs: blobs}

	f.user = &userModel.UserModel{Codename: "Quill", Email: "quill@example.com", Password: "x", Role: constants.RoleStudent}
	require.NoError(t, userRepo.Create(db, f.user))
	return f
}

func (f *fixture) prompt(t *testing.T, text string, active bool) *promptModel.PromptModel {
	t.Helper()
	p := &promptModel.PromptModel{Prompt: text}
	require.NoError(t, promptRepo.Create(f.db, p))
	if active {
		_, err := promptRepo.Activate(f.db, p.ID)
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) sub(t *testing.T, promptID uint, score int) uint {
	t.Helper()
	label := fmt.Sprintf("%d/%d-%d", f.user.ID, promptID, score)
	etag, err := f.blobs.Put(context.Background(), label, []byte(label), "image/jpeg")
	require.NoError(t, err)

	s := &subModel.SubmissionModel{
		UserID: f.user.ID, PromptID: promptID, SourceID: constants.SourceFDSC,
		BlobLabel: label, Etag: etag, Score: score,
	}
	require.NoError(t, subRepo.Create(f.db, s))
	return s.ID
}

func TestGetTopTen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.prompt(t, "old", false)
	active := f.prompt(t, "active", true)

	f.sub(t, old.ID, 100) // other prompt never ranks
	var ids []uint
	for _, score := range []int{50, 70, 70, 10, 90, 20, 30, 40, 60, 80, 5, 70} {
		ids = append(ids, f.sub(t, active.ID, score))
	}

	top, err := f.svc.GetTopTen(ctx)
	require.NoError(t, err)
	require.Len(t, top.Subs, 10)
	assert.False(t, top.HasVoted)

	var gotScores []int
	for _, s := range top.Subs {
		gotScores = append(gotScores, s.Score)
		assert.Equal(t, "active", s.Prompt)
		assert.Equal(t, "Quill", s.Codename)
	}
	assert.Equal(t, []int{90, 80, 70, 70, 70, 60, 50, 40, 30, 20}, gotScores)
	// ties: earlier submission first
	assert.Equal(t, []uint{ids[1], ids[2], ids[11]}, []uint{top.Subs[2].ID, top.Subs[3].ID, top.Subs[4].ID})

	_, err = f.svc.SetTop3(ctx, []uint{top.Subs[0].ID, top.Subs[1].ID, top.Subs[2].ID})
	require.NoError(t, err)
	top, err = f.svc.GetTopTen(ctx)
	require.NoError(t, err)
	assert.True(t, top.HasVoted)
}

func TestGetTopTen_NoActivePrompt(t *testing.T) {
	f := newFixture(t)
	f.prompt(t, "inactive", false)

	_, err := f.svc.GetTopTen(context.Background())
	assert.True(t, apperr.IsNotFound(err))
}

// A new prompt does not invalidate the previous freeze: the old finalists are
// still served as the current top 3 while hasVoted is false for the new prompt.
func TestTop3_StaleAfterPromptChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.prompt(t, "first", true)
	a, b, c := f.sub(t, first.ID, 9), f.sub(t, first.ID, 8), f.sub(t, first.ID, 7)
	_, err := f.svc.SetTop3(ctx, []uint{a, b, c})
	require.NoError(t, err)

	second := f.prompt(t, "second", true)
	f.sub(t, second.ID, 5)

	top, err := f.svc.GetTopTen(ctx)
	require.NoError(t, err)
	assert.False(t, top.HasVoted)

	finalists, err := f.svc.GetTop3Subs(ctx)
	require.NoError(t, err)
	require.Len(t, finalists, 3)
	for _, s := range finalists {
		assert.Equal(t, "first", s.Prompt)
	}
}

func TestGetTop3Subs_LatestFreeze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.prompt(t, "p", true)
	var ids []uint
	for i := 0; i < 6; i++ {
		ids = append(ids, f.sub(t, p.ID, i))
	}

	empty, err := f.svc.GetTop3Subs(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.svc.SetTop3(ctx, ids[:3])
	require.NoError(t, err)
	_, err = f.svc.SetTop3(ctx, ids[3:])
	require.NoError(t, err)

	got, err := f.svc.GetTop3Subs(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ids[3:], []uint{got[0].ID, got[1].ID, got[2].ID})
}

func TestSetTop3_NoValidation(t *testing.T) {
	f := newFixture(t)
	rows, err := f.svc.SetTop3(context.Background(), []uint{7, 7, 8, 9, 10})
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestGetRecentWinner_EmptyIsNotAnError(t *testing.T) {
	f := newFixture(t)
	w, err := f.svc.GetRecentWinner(context.Background())
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestVotesAndWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.prompt(t, "p", true)
	a, b, c := f.sub(t, p.ID, 50), f.sub(t, p.ID, 40), f.sub(t, p.ID, 30)
	outsider := f.sub(t, p.ID, 99)

	_, err := f.svc.TallyVotes(ctx)
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.svc.DeclareWinner(ctx)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.svc.SetTop3(ctx, []uint{a, b, c})
	require.NoError(t, err)

	_, err = f.svc.SubmitVote(ctx, 1, a, a, b)
	assert.True(t, apperr.IsValidation(err))
	_, err = f.svc.SubmitVote(ctx, 1, outsider, a, b)
	assert.True(t, apperr.IsValidation(err))

	// b: 3+3+1 = 7, a: 2+1+3 = 6, c: 1+2+2 = 5
	for _, ballot := range [][3]uint{{b, a, c}, {b, c, a}, {a, c, b}} {
		_, err := f.svc.SubmitVote(ctx, f.user.ID, ballot[0], ballot[1], ballot[2])
		require.NoError(t, err)
	}

	tallies, err := f.svc.TallyVotes(ctx)
	require.NoError(t, err)
	require.Len(t, tallies, 3)
	assert.Equal(t, b, tallies[0].SubmissionID)
	assert.Equal(t, 7, tallies[0].Points)
	assert.Equal(t, a, tallies[1].SubmissionID)
	assert.Equal(t, 6, tallies[1].Points)
	assert.Equal(t, c, tallies[2].SubmissionID)
	assert.Equal(t, 3, tallies[2].Votes)

	winner, err := f.svc.DeclareWinner(ctx)
	require.NoError(t, err)
	assert.Equal(t, b, winner.ID)

	recent, err := f.svc.GetRecentWinner(ctx)
	require.NoError(t, err)
	require.NotNil(t, recent)
	assert.Equal(t, b, recent.ID)
}

func TestTallyVotes_TieKeepsLogOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.prompt(t, "p", true)
	a, b, c := f.sub(t, p.ID, 1), f.sub(t, p.ID, 2), f.sub(t, p.ID, 3)

	_, err := f.svc.SetTop3(ctx, []uint{c, b, a})
	require.NoError(t, err)

	tallies, err := f.svc.TallyVotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{c, b, a}, []uint{tallies[0].SubmissionID, tallies[1].SubmissionID, tallies[2].SubmissionID})
}

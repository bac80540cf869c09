package dto

import subDTO "rumble_backend/internals/features/contest/submissions/dto"

type TopTen struct {
	Subs     []subDTO.SubItem `json:"subs"`
	HasVoted bool             `json:"hasVoted"`
}

// Tally is the point total of one finalist.
type Tally struct {
	SubmissionID uint `json:"submissionId"`
	Points       int  `json:"points"`
	Votes        int  `json:"votes"`
}

type SetTop3Request struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,required"`
}

type VoteRequest struct {
	FirstPlace  uint `json:"firstPlaceId" validate:"required"`
	SecondPlace uint `json:"secondPlaceId" validate:"required"`
	ThirdPlace  uint `json:"thirdPlaceId" validate:"required"`
}

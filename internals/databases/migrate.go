package database

import (
	"gorm.io/gorm"

	rumbleModel "rumble_backend/internals/features/classroom/rumbles/model"
	sectionModel "rumble_backend/internals/features/classroom/sections/model"
	leaderboardModel "rumble_backend/internals/features/contest/leaderboard/model"
	promptModel "rumble_backend/internals/features/contest/prompts/model"
	submissionModel "rumble_backend/internals/features/contest/submissions/model"
	userModel "rumble_backend/internals/features/users/user/model"
)

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&userModel.UserValidationModel{},
		&userModel.UserResetModel{},
		&sectionModel.SectionModel{},
		&sectionModel.SectionTeacherModel{},
		&sectionModel.SectionStudentModel{},
		&promptModel.PromptModel{},
		&rumbleModel.RumbleModel{},
		&rumbleModel.RumbleSectionModel{},
		&submissionModel.SubmissionModel{},
		&submissionModel.SubmissionTranscriptionModel{},
		&submissionModel.EnumFlagModel{},
		&submissionModel.SubmissionFlagModel{},
		&leaderboardModel.Top3Model{},
		&leaderboardModel.WinnerModel{},
		&leaderboardModel.VoteModel{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

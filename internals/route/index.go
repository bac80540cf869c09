// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	rumbleRoute "rumble_backend/internals/features/classroom/rumbles/route"
	rumbleService "rumble_backend/internals/features/classroom/rumbles/service"
	sectionController "rumble_backend/internals/features/classroom/sections/controller"
	sectionRoute "rumble_backend/internals/features/classroom/sections/route"
	sectionService "rumble_backend/internals/features/classroom/sections/service"
	contestRoute "rumble_backend/internals/features/contest/leaderboard/route"
	contestService "rumble_backend/internals/features/contest/leaderboard/service"
	promptRoute "rumble_backend/internals/features/contest/prompts/route"
	promptService "rumble_backend/internals/features/contest/prompts/service"
	submissionRoute "rumble_backend/internals/features/contest/submissions/route"
	submissionService "rumble_backend/internals/features/contest/submissions/service"
	authRoute "rumble_backend/internals/features/users/auth/route"
	authService "rumble_backend/internals/features/users/auth/service"

	"rumble_backend/internals/metrics"
	authMiddleware "rumble_backend/internals/middlewares/auth"
)

var startTime time.Time

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth        *authService.Service
	Sections    *sectionService.Service
	Rumbles     *rumbleService.Service
	Prompts     *promptService.Service
	Submissions *submissionService.Service
	Contest     *contestService.Service
}

type Options struct {
	DB        *gorm.DB
	Log       *logrus.Entry
	JWTSecret string
	Metrics   *metrics.Metrics
}

func SetupRoutes(app *fiber.App, opt Options, svc Services) {
	startTime = time.Now()
	log := opt.Log.WithField("component", "routes")

	BaseRoutes(app, opt.DB, opt.Metrics)

	authMW := authMiddleware.AuthMiddleware(opt.DB, opt.JWTSecret, opt.Log)
	optionalAuthMW := authMiddleware.OptionalAuthMiddleware(opt.DB, opt.JWTSecret, opt.Log)

	api := app.Group("/api")

	log.Info("mounting auth routes")
	authRoute.AuthRoutes(api, authMW, svc.Auth)

	log.Info("mounting classroom routes")
	sectionRoute.SectionRoutes(api, authMW, svc.Sections, svc.Submissions)
	teacherOf := sectionController.NewSectionController(svc.Sections, svc.Submissions).RequireTeacherOf
	rumbleRoute.RumbleRoutes(api, authMW, teacherOf, svc.Rumbles, svc.Sections)

	log.Info("mounting contest routes")
	promptRoute.PromptRoutes(api, authMW, svc.Prompts)
	submissionRoute.SubmissionRoutes(api, authMW, optionalAuthMW, svc.Submissions)
	contestRoute.ContestRoutes(api, authMW, svc.Contest)
}

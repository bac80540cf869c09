// Package app wires storage, scoring and the feature services together.
package app

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	rumbleService "rumble_backend/internals/features/classroom/rumbles/service"
	sectionService "rumble_backend/internals/features/classroom/sections/service"
	contestService "rumble_backend/internals/features/contest/leaderboard/service"
	promptService "rumble_backend/internals/features/contest/prompts/service"
	"rumble_backend/internals/features/contest/scoring"
	submissionService "rumble_backend/internals/features/contest/submissions/service"
	authService "rumble_backend/internals/features/users/auth/service"

	"rumble_backend/internals/configs"
	helper "rumble_backend/internals/helpers"
	helperOSS "rumble_backend/internals/helpers/oss"
	"rumble_backend/internals/metrics"
	routes "rumble_backend/internals/route"
)

// NewBlobStore picks OSS when it is configured, memory otherwise, and puts a
// redis read-through cache in front when REDIS_URL is set. The returned
// close func releases the redis client.
func NewBlobStore(log *logrus.Entry, m *metrics.Metrics) (helperOSS.BlobStore, func(), error) {
	var store helperOSS.BlobStore
	if configs.GetEnv("OSS_BUCKET") != "" {
		oss, err := helperOSS.NewOSSBlobStoreFromEnv(configs.GetEnv("OSS_PREFIX", "submissions"))
		if err != nil {
			return nil, nil, err
		}
		store = oss
	} else {
		log.Warn("OSS_BUCKET not set, page images are kept in memory")
		store = helperOSS.NewMemoryBlobStore()
	}

	if configs.RedisURL == "" {
		return store, func() {}, nil
	}
	opt, err := redis.ParseURL(configs.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	cached := helperOSS.NewCachedBlobStore(store, rdb, configs.BlobCacheTTL, log.WithField("component", "blob_cache"), m)
	return cached, func() { _ = rdb.Close() }, nil
}

// NewServices builds every feature service on db.
func NewServices(db *gorm.DB, log *logrus.Entry, blobs helperOSS.BlobStore, m *metrics.Metrics) routes.Services {
	codes := helper.NewCodeGenerator(configs.UUIDNamespace)

	scorer := &scoring.Client{
		BaseURL: configs.DSAPIURL,
		Token:   configs.DSAPIToken,
		Timeout: configs.DSTimeout,
		Log:     log.WithField("component", "scoring"),
		Metrics: m,
	}

	rumbles := rumbleService.New(rumbleService.Deps{DB: db, Log: log, Codes: codes})
	submissions := submissionService.New(submissionService.Deps{
		DB:      db,
		Log:     log,
		Blobs:   blobs,
		Scorer:  scorer,
		Metrics: m,
		Images:  helperOSS.DefaultPageImageOptions(),
	})

	return routes.Services{
		Auth: authService.New(authService.Deps{
			DB:        db,
			Log:       log,
			Codes:     codes,
			Mailer:    authService.NewLogMailer(log),
			JWTSecret: configs.JWTSecret,
			ServerURL: configs.ServerURL,
		}),
		Sections:    sectionService.New(sectionService.Deps{DB: db, Log: log, Codes: codes, Rumbles: rumbles}),
		Rumbles:     rumbles,
		Prompts:     promptService.New(promptService.Deps{DB: db, Log: log}),
		Submissions: submissions,
		Contest:     contestService.New(contestService.Deps{DB: db, Log: log, Items: submissions}),
	}
}

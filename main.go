package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	bootstrap "rumble_backend/internals/app"
	"rumble_backend/internals/configs"
	database "rumble_backend/internals/databases"
	"rumble_backend/internals/metrics"
	middlewares "rumble_backend/internals/middlewares"
	"rumble_backend/internals/middlewares/logger"
	routes "rumble_backend/internals/route"
)

func main() {
	log := configs.InitLogger("rumble-api")
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               12 << 20,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	m := metrics.Default()

	app.Use(middlewares.RecoveryMiddleware(log))
	app.Use(logger.LoggerMiddleware(log))
	app.Use(middlewares.MetricsMiddleware(m))
	app.Use(middlewares.CorsMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.GlobalRateLimiter())

	// DB connect + pool + warm-up
	db := database.ConnectDB()
	database.TunePool(db)
	if configs.GetEnv("AUTO_MIGRATE", "true") == "true" {
		if err := database.AutoMigrate(db); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
	}
	database.WarmUpQueries(db)

	blobs, closeBlobs, err := bootstrap.NewBlobStore(log, m)
	if err != nil {
		log.WithError(err).Fatal("blob store setup failed")
	}
	defer closeBlobs()

	routes.SetupRoutes(app, routes.Options{
		DB:        db,
		Log:       log,
		JWTSecret: configs.JWTSecret,
		Metrics:   m,
	}, bootstrap.NewServices(db, log, blobs, m))

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 60 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")
	go func() {
		log.WithField("port", port).Info("listening")
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown, then close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
	database.Close(db, log)
}

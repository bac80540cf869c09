package database

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"rumble_backend/internals/configs"
)

var DB *gorm.DB

// ConnectDB opens the database selected by DB_DRIVER (postgres by default)
// and stores it in DB.
func ConnectDB() *gorm.DB {
	driver := strings.ToLower(configs.GetEnv("DB_DRIVER", "postgres"))
	log := configs.Log().WithField("driver", driver)
	log.Info("connecting to database")

	db, err := Open(driver, dsnFor(driver))
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	DB = db
	log.Info("database connected")
	return db
}

// Open builds a gorm handle for driver ("postgres" | "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // PgBouncer transaction pooling
		})
	case "sqlite":
		// pure-Go driver registered by modernc.org/sqlite
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:  configs.NewGormLogger(),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
}

func dsnFor(driver string) string {
	if driver == "sqlite" {
		return SQLiteDSN(configs.GetEnv("SQLITE_PATH", "rumble.db"))
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=rumble&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		configs.GetEnv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
		configs.GetEnv("DB_SSLMODE", "require"),
	)
}

// SQLiteDSN enables foreign keys and a busy timeout on every connection.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		configs.Log().WithError(err).Warn("pool tune failed")
		return
	}
	if db.Dialector.Name() == "sqlite" {
		// single writer
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(db); err != nil {
			configs.Log().WithError(err).Warn("warm-up ping failed")
		}
	}()
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB, log *logrus.Entry) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("closing database")
	}
}

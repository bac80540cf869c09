package configs

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret     string
	UUIDNamespace string
	ServerURL     string

	DSAPIURL   string
	DSAPIToken string
	DSTimeout  time.Duration

	RedisURL     string
	BlobCacheTTL time.Duration
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			Log().Warn("no .env file found, using system environment")
		} else {
			Log().Info(".env file loaded")
		}
	} else {
		Log().Info("running in Railway, using system environment")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	UUIDNamespace = GetEnv("UUID_NAMESPACE")
	ServerURL = strings.TrimRight(GetEnv("SERVER_URL", "http://localhost:3000"), "/")

	DSAPIURL = strings.TrimRight(GetEnv("DS_API_URL"), "/")
	DSAPIToken = GetEnv("DS_API_TOKEN")
	DSTimeout = GetDuration("DS_TIMEOUT", 30*time.Second)

	RedisURL = GetEnv("REDIS_URL")
	BlobCacheTTL = GetDuration("BLOB_CACHE_TTL", time.Hour)

	for key, val := range map[string]string{
		"JWT_SECRET":     JWTSecret,
		"UUID_NAMESPACE": UUIDNamespace,
		"DS_API_URL":     DSAPIURL,
	} {
		if val == "" {
			Log().Errorf("%s is not set", key)
		}
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// GetDuration accepts Go durations ("45s") or a plain number of seconds.
func GetDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
	entry         *logrus.Entry
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if Log().Logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
		entry:         Log().WithField("component", "gorm"),
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		l.entry.Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		l.entry.Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		l.entry.Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := logrus.Fields{
		"file":    utils.FileWithLineNum(),
		"elapsed": elapsed.String(),
		"rows":    rows,
		"sql":     sql,
	}

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.entry.WithFields(fields).WithError(err).Error("query failed")
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		l.entry.WithFields(fields).Warn("slow query")
	case l.LogLevel >= gormLogger.Info:
		l.entry.WithFields(fields).Debug("query")
	}
}

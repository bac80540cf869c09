package configs

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logMu  sync.RWMutex
	logger = logrus.NewEntry(logrus.StandardLogger())
)

// InitLogger configures the process-wide JSON logger. Level comes from LOG_LEVEL.
func InitLogger(serviceName string) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetOutput(os.Stdout)

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	entry := l.WithField("service", serviceName)

	logMu.Lock()
	logger = entry
	logMu.Unlock()
	return entry
}

// Log returns the process logger (logrus standard logger until InitLogger runs).
func Log() *logrus.Entry {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

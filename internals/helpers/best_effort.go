package helper

import (
	"context"

	"github.com/sirupsen/logrus"
)

// BestEffort runs a non-critical step. A failure is logged at info level and
// dropped; the caller's operation continues. Critical steps must not use this.
func BestEffort(ctx context.Context, log *logrus.Entry, step string, fn func(ctx context.Context) error) bool {
	if err := fn(ctx); err != nil {
		log.WithError(err).WithField("step", step).Info("non-critical step failed")
		return false
	}
	return true
}

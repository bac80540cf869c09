package middlewares

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// RecoveryMiddleware turns panics into 500s and logs the stack.
func RecoveryMiddleware(log *logrus.Entry) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.WithFields(logrus.Fields{
				"panic":  e,
				"method": c.Method(),
				"path":   c.Path(),
				"stack":  string(debug.Stack()),
			}).Error("panic recovered")
		},
	})
}

package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OptionalAuthMiddleware fills the user Locals when a valid token is sent and
// otherwise lets the request through anonymously.
func OptionalAuthMiddleware(db *gorm.DB, secret string, log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, db, secret); err != nil && err != errNoToken {
			log.WithError(err).WithField("path", c.Path()).Debug("ignoring invalid token")
		}
		return c.Next()
	}
}

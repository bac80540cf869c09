package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	userRepo "rumble_backend/internals/features/users/user/repository"

	helper "rumble_backend/internals/helpers"
)

var errNoToken = errors.New("no token provided")

// AuthMiddleware requires a valid access token for a user that still exists.
// It stores the user id, role and user row in Locals.
func AuthMiddleware(db *gorm.DB, secret string, log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, db, secret); err != nil {
			log.WithError(err).WithField("path", c.Path()).Debug("unauthorized request")
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			if errors.Is(err, errNoToken) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - No token provided")
			}
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid token")
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, db *gorm.DB, secret string) error {
	raw := helper.GetRawAccessToken(c)
	if raw == "" {
		return errNoToken
	}
	claims, err := helper.ParseToken(secret, raw)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}

	user, err := userRepo.FindByID(db.WithContext(c.UserContext()), userID)
	if err != nil {
		return err
	}
	user.Password = ""

	// role comes from the row so demotions apply before the token expires
	c.Locals(helper.LocUserID, user.ID)
	c.Locals(helper.LocUserRole, user.Role)
	c.Locals(helper.LocUser, user)
	return nil
}

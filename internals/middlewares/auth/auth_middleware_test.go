package auth

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userModel "rumble_backend/internals/features/users/user/model"
	userRepo "rumble_backend/internals/features/users/user/repository"

	"rumble_backend/internals/constants"
	helper "rumble_backend/internals/helpers"
	"rumble_backend/internals/testutil"
)

const secret = "mw-secret"

func newApp(t *testing.T) (*fiber.App, *userModel.UserModel) {
	t.Helper()
	db := testutil.NewDB(t)
	log, _ := testutil.NewLogger()

	u := &userModel.UserModel{Codename: "Teach", Email: "t@example.com", Password: "hash", Role: constants.RoleTeacher, IsValidated: true}
	require.NoError(t, userRepo.Create(db, u))

	app := fiber.New()
	who := func(c *fiber.Ctx) error {
		id, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return c.SendString("anonymous")
		}
		return c.SendString(fmt.Sprintf("%d:%s", id, helper.GetUserRole(c)))
	}
	app.Get("/private", AuthMiddleware(db, secret, log), who)
	app.Get("/admin", AuthMiddleware(db, secret, log), OnlyRoles(constants.RoleErrorAdmin("this route"), constants.AdminOnly...), who)
	app.Get("/teacher", AuthMiddleware(db, secret, log), OnlyRoles(constants.RoleErrorTeacher("this route"), constants.TeacherAndAbove...), who)
	app.Get("/optional", OptionalAuthMiddleware(db, secret, log), who)
	return app, u
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	buf := make([]byte, 512)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func TestAuthMiddleware(t *testing.T) {
	app, u := newApp(t)
	token, err := helper.IssueToken(secret, u.ID, u.Email, constants.RoleStudent, u.Codename, time.Now())
	require.NoError(t, err)

	status, _ := get(t, app, "/private", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get(t, app, "/private", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// role is read from the user row, not the token
	status, body := get(t, app, "/private", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, fmt.Sprintf("%d:%s", u.ID, constants.RoleTeacher), body)

	ghost, err := helper.IssueToken(secret, u.ID+100, "ghost@example.com", constants.RoleAdmin, "Ghost", time.Now())
	require.NoError(t, err)
	status, _ = get(t, app, "/private", ghost)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRoleGuard(t *testing.T) {
	app, u := newApp(t)
	token, err := helper.IssueToken(secret, u.ID, u.Email, u.Role, u.Codename, time.Now())
	require.NoError(t, err)

	status, _ := get(t, app, "/teacher", token)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = get(t, app, "/admin", token)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestOptionalAuth(t *testing.T) {
	app, u := newApp(t)
	token, err := helper.IssueToken(secret, u.ID, u.Email, u.Role, u.Codename, time.Now())
	require.NoError(t, err)

	_, body := get(t, app, "/optional", "")
	assert.Equal(t, "anonymous", body)

	_, body = get(t, app, "/optional", "garbage")
	assert.Equal(t, "anonymous", body)

	_, body = get(t, app, "/optional", token)
	assert.Equal(t, fmt.Sprintf("%d:%s", u.ID, constants.RoleTeacher), body)
}

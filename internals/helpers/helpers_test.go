package helper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumble_backend/internals/helpers/apperr"
)

func TestCodeGenerator_JoinCode(t *testing.T) {
	ns := uuid.New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := &CodeGenerator{Namespace: ns, Now: func() time.Time { return now }}

	code := g.JoinCode("Period 3")
	want := uuid.NewSHA1(ns, []byte("Period 3-1714564800000")).String()
	assert.Equal(t, want, code)

	// same key, later instant -> different code
	g.Now = func() time.Time { return now.Add(time.Millisecond) }
	assert.NotEqual(t, code, g.JoinCode("Period 3"))

	// other namespace -> different code
	other := &CodeGenerator{Namespace: uuid.New(), Now: func() time.Time { return now }}
	assert.NotEqual(t, code, other.JoinCode("Period 3"))
}

func TestNewCodeGenerator_NonUUIDNamespace(t *testing.T) {
	a := NewCodeGenerator("not-a-uuid")
	b := NewCodeGenerator("not-a-uuid")
	assert.Equal(t, a.Namespace, b.Namespace)
	assert.Equal(t, a.Code("codename"), b.Code("codename"))

	ns := uuid.New()
	assert.Equal(t, ns, NewCodeGenerator(ns.String()).Namespace)
}

func TestBestEffort(t *testing.T) {
	l, hook := test.NewNullLogger()
	entry := logrus.NewEntry(l)

	ok := BestEffort(context.Background(), entry, "save transcription", func(context.Context) error {
		return errors.New("ds db down")
	})
	assert.False(t, ok)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "save transcription", hook.LastEntry().Data["step"])

	ok = BestEffort(context.Background(), entry, "noop", func(context.Context) error { return nil })
	assert.True(t, ok)
	assert.Len(t, hook.Entries, 1)
}

func TestJsonFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", apperr.NotFound("Invalid section ID"), fiber.StatusNotFound, "NOT_FOUND", "Invalid section ID"},
		{"unauthorized", apperr.Unauthorized("Join code is invalid"), fiber.StatusUnauthorized, "UNAUTHORIZED", "Join code is invalid"},
		{"conflict", apperr.Conflict("dup"), fiber.StatusConflict, "CONFLICT", "dup"},
		{"validation", apperr.Validation("No age sent"), fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "No age sent"},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "bad id"), fiber.StatusBadRequest, "BAD_REQUEST", "bad id"},
		{"unknown", errors.New("pq: connection refused"), fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return JsonFromError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			raw, _ := io.ReadAll(resp.Body)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.ErrorCode)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestValidator_CustomTags(t *testing.T) {
	type in struct {
		Codename string `validate:"required,codename"`
		Password string `validate:"required,password"`
	}

	assert.NoError(t, Validator().Struct(in{Codename: "Sparky42", Password: "Secret123"}))

	err := Validator().Struct(in{Codename: "two words", Password: "alllowercase1"})
	require.Error(t, err)
	fields := FieldErrors(err)
	assert.Contains(t, fields, "Codename")
	assert.Contains(t, fields, "Password")
}

func TestIssueAndParseToken(t *testing.T) {
	now := time.Now()
	raw, err := IssueToken("s3cret", 42, "kid@example.com", "student", "Sparky", now)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", raw)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "kid@example.com", claims.Issuer)

	_, err = ParseToken("other", raw)
	assert.Error(t, err)

	expired, err := IssueToken("s3cret", 42, "kid@example.com", "student", "Sparky", now.Add(-3*TokenTTL))
	require.NoError(t, err)
	_, err = ParseToken("s3cret", expired)
	assert.Error(t, err)

	_, err = IssueToken("", 42, "kid@example.com", "student", "Sparky", now)
	assert.Error(t, err)
}

func TestGetUserIDFromToken(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		_, err := GetUserIDFromToken(c)
		return err
	})
	app.Get("/user", func(c *fiber.Ctx) error {
		c.Locals(LocUserID, uint(7))
		id, err := GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		return c.SendString(fmt.Sprint(id))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/anon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "7", string(body))
}

package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"rumble_backend/internals/helpers/apperr"
)

// IsUniqueViolation reports a unique constraint failure on postgres (23505)
// or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// NotFoundOr turns gorm.ErrRecordNotFound into a NotFound error with msg.
// Unique violations become Conflict. Other errors pass through.
func NotFoundOr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s", msg)
	case IsUniqueViolation(err):
		return apperr.Wrap(apperr.KindConflict, err, "duplicate record")
	default:
		return err
	}
}

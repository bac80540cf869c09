package helper

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	codenameRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	passwordRegex = regexp.MustCompile(`^[a-zA-Z\d]{8,}$`)
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("codename", func(fl validator.FieldLevel) bool {
			return codenameRegex.MatchString(fl.Field().String())
		})
		// at least one lower, one upper, one digit, 8+ alphanumerics
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return passwordRegex.MatchString(s) &&
				strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") &&
				strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") &&
				strings.ContainsAny(s, "0123456789")
		})
	})
	return validate
}

// FieldErrors flattens validator errors into field -> messages.
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = []string{err.Error()}
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[field] = append(out[field], msg)
	}
	return out
}

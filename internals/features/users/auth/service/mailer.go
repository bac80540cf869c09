package service

import (
	"context"

	"github.com/sirupsen/logrus"

	userModel "rumble_backend/internals/features/users/user/model"
)

// Mailer delivers account emails. A returned error aborts the enclosing
// transaction.
type Mailer interface {
	SendValidationEmail(ctx context.Context, to, url string) error
	SendPasswordResetEmail(ctx context.Context, user *userModel.UserModel, code string) error
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	Log *logrus.Entry
}

func NewLogMailer(log *logrus.Entry) *LogMailer {
	return &LogMailer{Log: log.WithField("component", "mailer")}
}

func (m *LogMailer) SendValidationEmail(_ context.Context, to, url string) error {
	m.Log.WithFields(logrus.Fields{"to": to, "url": url}).Info("validation email")
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(_ context.Context, user *userModel.UserModel, code string) error {
	m.Log.WithFields(logrus.Fields{"to": user.Email, "user_id": user.ID, "code": code}).Info("password reset email")
	return nil
}

// MailerFunc adapts plain functions; nil fields succeed.
type MailerFunc struct {
	ValidationFn func(ctx context.Context, to, url string) error
	ResetFn      func(ctx context.Context, user *userModel.UserModel, code string) error
}

func (m MailerFunc) SendValidationEmail(ctx context.Context, to, url string) error {
	if m.ValidationFn == nil {
		return nil
	}
	return m.ValidationFn(ctx, to, url)
}

func (m MailerFunc) SendPasswordResetEmail(ctx context.Context, user *userModel.UserModel, code string) error {
	if m.ResetFn == nil {
		return nil
	}
	return m.ResetFn(ctx, user, code)
}

package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rumble_backend/internals/features/users/auth/dto"
	authRepo "rumble_backend/internals/features/users/auth/repository"
	userModel "rumble_backend/internals/features/users/user/model"
	userRepo "rumble_backend/internals/features/users/user/repository"

	"rumble_backend/internals/constants"
	database "rumble_backend/internals/databases"
	helper "rumble_backend/internals/helpers"
	"rumble_backend/internals/helpers/apperr"
)

const (
	// users younger than this validate through a parent
	minUnsupervisedAge = 13
	resetRequestGap    = 10 * time.Minute
)

type Deps struct {
	DB        *gorm.DB
	Log       *logrus.Entry
	Codes     *helper.CodeGenerator
	Mailer    Mailer
	JWTSecret string
	ServerURL string
	Now       func() time.Time
}

type Service struct {
	db        *gorm.DB
	log       *logrus.Entry
	codes     *helper.CodeGenerator
	mailer    Mailer
	jwtSecret string
	serverURL string
	now       func() time.Time
}

func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:        d.DB,
		log:       d.Log.WithField("service", "auth"),
		codes:     d.Codes,
		mailer:    d.Mailer,
		jwtSecret: d.JWTSecret,
		serverURL: strings.TrimRight(d.ServerURL, "/"),
		now:       now,
	}
}

/* ==========================
   SIGN UP
========================== */

// SignUp creates an unvalidated user and mails a validation link, to the
// parent when the user is under age. All of it commits or none of it does.
func (s *Service) SignUp(ctx context.Context, body dto.SignUpRequest) (*userModel.UserModel, error) {
	if body.Age == nil {
		return nil, apperr.Validation("No age sent")
	}

	sendTo, validator := body.Email, constants.ValidatorUser
	if *body.Age < minUnsupervisedAge {
		if body.ParentEmail == "" || strings.EqualFold(body.ParentEmail, body.Email) {
			return nil, apperr.Validation("Underage users must have a parent email on file")
		}
		sendTo, validator = body.ParentEmail, constants.ValidatorParent
	}

	hash, err := HashPassword(body.Password)
	if err != nil {
		return nil, err
	}
	user := &userModel.UserModel{
		Codename:  body.Codename,
		Email:     body.Email,
		Password:  hash,
		Role:      constants.RoleStudent,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}
	if validator == constants.ValidatorParent {
		user.ParentEmail = &sendTo
	}

	log := s.log.WithField("email", body.Email)
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if err := userRepo.Create(tx, user); err != nil {
			return err
		}
		if user.ID == 0 {
			return apperr.Conflict("Could not create user")
		}

		link, code := s.validationURL(body.Codename, sendTo)
		if err := authRepo.CreateValidation(tx, &userModel.UserValidationModel{
			UserID:    user.ID,
			Code:      code,
			Email:     sendTo,
			Validator: validator,
		}); err != nil {
			return err
		}
		return s.mailer.SendValidationEmail(ctx, sendTo, link)
	})
	if err != nil {
		log.WithError(err).Error("sign up failed")
		return nil, database.NotFoundOr(err, "User not found")
	}

	log.WithField("user_id", user.ID).Debug("user registered")
	return user, nil
}

func (s *Service) validationURL(codename, email string) (string, string) {
	code := s.codes.Code(codename)
	q := url.Values{"token": {code}, "email": {email}}
	return s.serverURL + "/auth/activation?" + q.Encode(), code
}

/* ==========================
   VALIDATE / SIGN IN
========================== */

// Validate confirms the code mailed to email and signs the user in.
func (s *Service) Validate(ctx context.Context, email, code string) (*dto.AuthResponse, error) {
	log := s.log.WithField("email", email)
	db := database.Conn(ctx, s.db)

	v, err := authRepo.FindLatestValidationByEmail(db, email)
	if err != nil {
		log.WithError(err).Info("validation lookup failed")
		return nil, database.NotFoundOr(err, "User not found")
	}
	user, err := userRepo.FindByID(db, v.UserID)
	if err != nil {
		return nil, database.NotFoundOr(err, "User not found")
	}
	if user.IsValidated {
		return nil, apperr.Conflict("User has already been validated")
	}
	if code != v.Code {
		log.Info("activation code mismatch")
		return nil, apperr.Unauthorized("Invalid activation code")
	}

	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		rows, err := userRepo.MarkValidated(tx, user.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("Could not validate user")
		}
		_, err = authRepo.CompleteValidation(tx, v.ID, s.now().UTC())
		return err
	})
	if err != nil {
		log.WithError(err).Error("validate failed")
		return nil, err
	}
	user.IsValidated = true

	return s.authResponse(user)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	user, err := userRepo.FindByEmail(database.Conn(ctx, s.db), email)
	if err != nil {
		return nil, database.NotFoundOr(err, "User not found")
	}
	if !user.IsValidated {
		return nil, apperr.Unauthorized("Account must be validated")
	}
	if !checkPassword(user.Password, password) {
		s.log.WithField("user_id", user.ID).Info("invalid password")
		return nil, apperr.Unauthorized("Invalid password")
	}
	return s.authResponse(user)
}

func (s *Service) authResponse(user *userModel.UserModel) (*dto.AuthResponse, error) {
	token, err := helper.IssueToken(s.jwtSecret, user.ID, user.Email, user.Role, user.Codename, s.now())
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("sign token failed")
		return nil, err
	}
	return &dto.AuthResponse{User: user, Token: token}, nil
}

/* ==========================
   PASSWORD RESET
========================== */

// RequestPasswordReset issues a reset code at most once per ten minutes.
// The gate reads the last request before the transaction starts, so two
// concurrent requests can both pass it.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, prior, err := s.lookupReset(ctx, email)
	if err != nil {
		return err
	}
	return s.issueReset(ctx, user, prior)
}

func (s *Service) lookupReset(ctx context.Context, email string) (*userModel.UserModel, *userModel.UserResetModel, error) {
	db := database.Conn(ctx, s.db)
	user, err := userRepo.FindByEmail(db, email)
	if err != nil {
		return nil, nil, database.NotFoundOr(err, "Email not found")
	}
	prior, err := authRepo.FindLatestReset(db, user.ID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("reset lookup failed")
		return nil, nil, err
	}
	return user, prior, nil
}

func (s *Service) issueReset(ctx context.Context, user *userModel.UserModel, prior *userModel.UserResetModel) error {
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if prior != nil {
			if s.now().Sub(prior.CreatedAt) < resetRequestGap {
				return apperr.Conflict("Cannot get another code so soon")
			}
			if _, err := authRepo.CompleteReset(tx, prior.ID); err != nil {
				return err
			}
		}

		code := s.codes.Code(user.Codename)
		return database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
			if err := authRepo.CreateReset(tx, &userModel.UserResetModel{UserID: user.ID, Code: code}); err != nil {
				return err
			}
			return s.mailer.SendPasswordResetEmail(ctx, user, code)
		})
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("password reset request failed")
		return err
	}
	return nil
}

// ResetPassword replaces the password when code matches the active reset.
func (s *Service) ResetPassword(ctx context.Context, email, password, code string) error {
	db := database.Conn(ctx, s.db)
	user, err := userRepo.FindByEmail(db, email)
	if err != nil {
		return database.NotFoundOr(err, "Email not found")
	}
	log := s.log.WithField("user_id", user.ID)

	reset, err := authRepo.FindActiveReset(db, user.ID)
	if err != nil {
		log.WithError(err).Error("reset lookup failed")
		return err
	}
	if reset == nil {
		return apperr.Conflict("No password resets are active")
	}
	if reset.Code != code {
		log.Info("reset code mismatch")
		return apperr.Unauthorized("Invalid password reset code")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := userRepo.UpdatePassword(tx, user.ID, hash); err != nil {
			return err
		}
		_, err := authRepo.CompleteReset(tx, reset.ID)
		return err
	})
	if err != nil {
		log.WithError(err).Error("reset password failed")
		return err
	}
	return nil
}

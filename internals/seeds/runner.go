// Package seeds loads starter users, prompts and moderation flags. Every
// seeder is idempotent: rows that already exist are skipped.
package seeds

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	promptModel "rumble_backend/internals/features/contest/prompts/model"
	promptRepo "rumble_backend/internals/features/contest/prompts/repository"
	subModel "rumble_backend/internals/features/contest/submissions/model"
	subRepo "rumble_backend/internals/features/contest/submissions/repository"
	authService "rumble_backend/internals/features/users/auth/service"
	userModel "rumble_backend/internals/features/users/user/model"
	userRepo "rumble_backend/internals/features/users/user/repository"

	"rumble_backend/internals/constants"
)

//go:embed data/seed.json
var defaultSeed []byte

type UserSeed struct {
	Codename  string `json:"codename"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type PromptSeed struct {
	Prompt string `json:"prompt"`
	Active bool   `json:"active"`
}

type Data struct {
	Users   []UserSeed   `json:"users"`
	Prompts []PromptSeed `json:"prompts"`
	Flags   []string     `json:"flags"`
}

// Load reads seed data from path, or the embedded defaults when path is empty.
func Load(path string) (*Data, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	var d Data
	if err := sonic.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &d, nil
}

// Result counts inserted rows.
type Result struct {
	Users, Prompts, Flags int
}

func RunAllSeeds(db *gorm.DB, d *Data, log *logrus.Entry) (Result, error) {
	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if res.Flags, err = SeedFlags(tx, d.Flags, log); err != nil {
			return err
		}
		if res.Users, err = SeedUsers(tx, d.Users, log); err != nil {
			return err
		}
		res.Prompts, err = SeedPrompts(tx, d.Prompts, log)
		return err
	})
	return res, err
}

// SeedUsers inserts validated users. Unknown roles abort the run.
func SeedUsers(db *gorm.DB, users []UserSeed, log *logrus.Entry) (int, error) {
	n := 0
	for _, u := range users {
		if !constants.IsValidRole(u.Role) {
			return n, fmt.Errorf("user %s: unknown role %q (want one of %v)", u.Email, u.Role, constants.AllRoles)
		}
		_, err := userRepo.FindByEmail(db, u.Email)
		if err == nil {
			log.WithField("email", u.Email).Info("user exists, skipped")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return n, err
		}

		hash, err := authService.HashPassword(u.Password)
		if err != nil {
			return n, err
		}
		if err := userRepo.Create(db, &userModel.UserModel{
			Codename:    u.Codename,
			Email:       u.Email,
			Password:    hash,
			Role:        u.Role,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			IsValidated: true,
		}); err != nil {
			return n, fmt.Errorf("insert user %s: %w", u.Email, err)
		}
		n++
	}
	return n, nil
}

// SeedPrompts inserts prompts when the table is empty.
func SeedPrompts(db *gorm.DB, prompts []PromptSeed, log *logrus.Entry) (int, error) {
	existing, err := promptRepo.List(db, 1, 0)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.Info("prompts exist, skipped")
		return 0, nil
	}
	for i, p := range prompts {
		if err := promptRepo.Create(db, &promptModel.PromptModel{Prompt: p.Prompt, Active: p.Active}); err != nil {
			return i, err
		}
	}
	return len(prompts), nil
}

func SeedFlags(db *gorm.DB, flags []string, log *logrus.Entry) (int, error) {
	have, err := subRepo.ListEnumFlags(db)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(have))
	for _, f := range have {
		seen[f.Flag] = true
	}

	n := 0
	for _, f := range flags {
		if seen[f] {
			continue
		}
		if err := subRepo.CreateEnumFlag(db, &subModel.EnumFlagModel{Flag: f}); err != nil {
			return n, err
		}
		seen[f] = true
		n++
	}
	log.WithField("inserted", n).Debug("flags seeded")
	return n, nil
}

// Package migrations seeds the data a fresh deployment needs before anyone can log in.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pgmanager/config"
	adminRepo "pgmanager/database/repository/admin"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Deterministic ids make concurrent seed runs collide instead of duplicating.
const (
	DefaultPGID    = "pg-default"
	DefaultPGKey   = "default"
	DefaultAdminID = "admin-default"

	generatedPasswordLength = 20
)

type Options struct {
	AdminEmail    string
	AdminPassword string
	PGName        string
	Now           func() time.Time
}

// OptionsFromConfig reads the SEED_* settings.
func OptionsFromConfig() Options {
	return Options{
		AdminEmail:    config.AppConfig.SeedAdminEmail,
		AdminPassword: config.AppConfig.SeedAdminPassword,
		PGName:        config.AppConfig.SeedPGName,
		Now:           time.Now,
	}
}

// Result reports what a run created. GeneratedPassword is set only when the
// admin was created with a random password.
type Result struct {
	PGCreated         bool
	AdminCreated      bool
	GeneratedPassword string
}

type Seeder struct {
	PGs    resourceRepo.Repository[models.PG]
	Admins adminRepo.AdminRepository
}

// Run creates the default PG and administrator when none exist. It is safe to
// run repeatedly and from several processes at once.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	res := &Result{}

	created, err := s.seedPG(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.PGCreated = created

	created, password, err := s.seedAdmin(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.AdminCreated = created
	res.GeneratedPassword = password
	return res, nil
}

func (s *Seeder) seedPG(ctx context.Context, opts Options) (bool, error) {
	logger := utils.GetLogger()

	n, err := s.PGs.Count(ctx, bson.M{})
	if err != nil {
		return false, fmt.Errorf("failed to count PGs: %w", err)
	}
	if n > 0 {
		logger.Debug("PG already present, skipping seed", zap.Int64("count", n))
		return false, nil
	}

	name := opts.PGName
	if name == "" {
		name = "Main PG"
	}
	pg := &models.PG{Name: name, Address: "Not set", SeedKey: DefaultPGKey}
	pg.ID = DefaultPGID
	pg.Activate()
	pg.Stamp(opts.Now())

	if err := s.PGs.Create(ctx, pg); err != nil {
		if utils.IsKind(err, utils.KindConflict) {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed PG: %w", err)
	}
	logger.Info("Seeded default PG", zap.String("pgID", pg.ID), zap.String("name", pg.Name))
	return true, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, opts Options) (bool, string, error) {
	logger := utils.GetLogger()

	n, err := s.Admins.Count(ctx)
	if err != nil {
		return false, "", fmt.Errorf("failed to count admins: %w", err)
	}
	if n > 0 {
		logger.Debug("Admin already present, skipping seed", zap.Int64("count", n))
		return false, "", nil
	}
	if opts.AdminEmail == "" {
		return false, "", errors.New("seed admin email is empty")
	}

	password, generated := opts.AdminPassword, ""
	if password == "" {
		password, err = utils.RandomSecret(generatedPasswordLength)
		if err != nil {
			return false, "", err
		}
		generated = password
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, "", fmt.Errorf("failed to hash seed password: %w", err)
	}

	admin := &models.Admin{
		Name:               "Administrator",
		Email:              opts.AdminEmail,
		Role:               models.AdminRoleOwner,
		PasswordHash:       string(hash),
		MustChangePassword: true,
	}
	admin.ID = DefaultAdminID
	admin.Activate()
	admin.Stamp(opts.Now())

	created, err := s.Admins.InsertIfAbsent(ctx, admin)
	if err != nil {
		return false, "", err
	}
	if !created {
		return false, "", nil
	}
	if generated != "" {
		logger.Warn("Seeded administrator with a generated password; change it after first login",
			zap.String("email", admin.Email), zap.String("password", generated))
	} else {
		logger.Info("Seeded administrator", zap.String("email", admin.Email))
	}
	return true, generated, nil
}

package bootstrap

import (
	"context"
	"errors"

	"anoa.com/droneanalytics/internal/entity"
	userRepo "anoa.com/droneanalytics/internal/modules/user/repository"
	"anoa.com/droneanalytics/pkg/credential"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Upload{},
		&entity.Violation{},
	)
}

// AdminSeed describes the account SeedAdminUser ensures exists.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// SeedAdminUser creates the admin account unless one with the same email
// already exists. An empty password skips seeding.
func SeedAdminUser(ctx context.Context, repo userRepo.UserRepository, credentials *credential.Manager, seed AdminSeed) error {
	if seed.Password == "" {
		logrus.Info("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	_, err := repo.FindByEmail(ctx, seed.Email)
	if err == nil {
		logrus.WithField("email", seed.Email).Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := credentials.HashPassword(seed.Password)
	if err != nil {
		return err
	}

	admin := &entity.User{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"username": admin.Username,
		"email":    admin.Email,
	}).Info("admin user seeded")
	return nil
}

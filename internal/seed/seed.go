package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/lorebase/internal/app/models"
	appRepos "github.com/yigit/lorebase/internal/app/repositories"
	"github.com/yigit/lorebase/internal/config"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
	"github.com/yigit/lorebase/internal/pkg/auth"
)

// CreateDefaultData upserts the configured file types and creates the
// admin account when a password is configured. Failures are collected
// and returned together so one bad row does not block the rest.
func CreateDefaultData(
	ctx context.Context,
	cfg *config.Config,
	fileTypes appRepos.IFileTypeRepository,
	users appRepos.IUserRepository,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (file types, admin user)...")
	var finalErr error

	for _, ftc := range cfg.Storage.FileTypes {
		ft := &appModels.FileType{Alias: ftc.Alias, Name: ftc.Name, RootPath: ftc.RootPath}
		if ft.Name == "" {
			ft.Name = ft.Alias
		}
		id, err := fileTypes.Upsert(ctx, ft)
		if err != nil {
			lgr.Error().Err(err).Str("alias", ft.Alias).Msg("Error seeding file type")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Debug().Int64("id", id).Str("alias", ft.Alias).Str("rootPath", ft.RootPath).Msg("File type seeded")
	}

	if err := createAdmin(ctx, cfg, users, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation process completed.")
	return finalErr
}

func createAdmin(ctx context.Context, cfg *config.Config, users appRepos.IUserRepository, lgr zerolog.Logger) error {
	email := cfg.Seed.AdminEmail
	if email == "" || cfg.Seed.AdminPassword == "" {
		lgr.Warn().Msg("Seed admin password not configured, skipping admin user creation")
		return nil
	}

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		lgr.Info().Str("email", email).Msg("Admin user already exists.")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Str("email", email).Msg("Error checking for admin user")
		return err
	}

	hashed, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to hash admin password")
		return err
	}

	admin := &appModels.User{
		Email:     email,
		Password:  hashed,
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
	}
	id, err := users.Create(ctx, admin)
	if err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("id", id).Str("email", email).Msg("Admin user created")
	return nil
}

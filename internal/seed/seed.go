package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appModels "github.com/svpddu/studentrecords/internal/app/models"
	appRepos "github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/auth"
)

// CreateDefaultUsers creates the configured login accounts when no user exists yet.
// It returns the number of users created.
func CreateDefaultUsers(ctx context.Context, userRepo appRepos.UserRepository, emails []string, password string, lgr zerolog.Logger) (int, error) {
	count, err := userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	if count > 0 {
		lgr.Info().Int64("users", count).Msg("Users already exist, skipping default user creation")
		return 0, nil
	}
	return CreateUsers(ctx, userRepo, emails, password, lgr)
}

// CreateUsers creates one account per email with the same password. Existing
// emails are skipped; other failures are collected and creation carries on.
func CreateUsers(ctx context.Context, userRepo appRepos.UserRepository, emails []string, password string, lgr zerolog.Logger) (int, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	if password == "" {
		return 0, errors.New("a default password is required to create users")
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}

	created := 0
	var finalErr error // To collect potential errors without stopping the process
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}

		user := &appModels.User{Email: email, PasswordHash: hashedPassword}
		err := userRepo.Create(ctx, user)
		switch {
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			lgr.Info().Str("email", email).Msg("User already exists, skipping")
		case err != nil:
			lgr.Error().Err(err).Str("email", email).Msg("Error creating user")
			finalErr = errors.Join(finalErr, err)
		default:
			created++
			lgr.Info().Str("email", email).Str("userID", user.ID).Msg("Default user created")
		}
	}
	return created, finalErr
}

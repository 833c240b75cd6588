package db

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/security"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the configured admin account when it does not exist yet.
// It is a no-op when no admin credentials are configured.
func EnsureAdminUser(ctx context.Context, users AdminStore, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = users.Create(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         user.RoleAdmin,
	})

	// another instance won the race
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	return err
}

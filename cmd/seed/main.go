package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"catapi/internal/config"
	"catapi/internal/logger"
	"catapi/internal/model"
	"catapi/internal/repository"
	"catapi/internal/service"
	"catapi/internal/store"
)

// seed creates the initial admin account so the admin-only cat routes can be
// used on a fresh database.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("store init", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() { _ = st.Close(ctx) }()

	created, err := seedAdmin(ctx, st.Users, cfg)
	if err != nil {
		log.Fatal("seed admin", zap.String("email", cfg.AdminEmail), zap.Error(err))
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.AdminEmail))
	} else {
		log.Info("admin account already exists", zap.String("email", cfg.AdminEmail))
	}
}

// seedAdmin creates the configured admin unless a user with that email
// already exists.
func seedAdmin(ctx context.Context, users repository.UserRepository, cfg *config.Config) (bool, error) {
	if cfg.AdminPassword == "" {
		return false, fmt.Errorf("ADMIN_PASSWORD is not set")
	}

	existing, err := users.FindByEmail(ctx, cfg.AdminEmail)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("lookup %s: %w", cfg.AdminEmail, err)
	}
	if existing != nil {
		return false, nil
	}

	_, err = service.NewUserService(users).Create(ctx, service.NewUser{
		UserName: cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     string(model.RoleAdmin),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

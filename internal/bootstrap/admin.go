package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Gagan3036/compliance-platform-api/internal/config"
	"github.com/Gagan3036/compliance-platform-api/internal/domain"
	"github.com/Gagan3036/compliance-platform-api/internal/password"
	"github.com/Gagan3036/compliance-platform-api/internal/repository"
)

// EnsureAdmin creates a canViewAllUsers user at startup when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured. Without them the step is skipped; admin
// permissions are otherwise never granted by the API.
func EnsureAdmin(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureAdmin(ctx, cfg, users, node, logger)
		},
	})
}

func ensureAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("bootstrap lookup user: %w", err)
	}

	hashed, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	user := domain.AuthUser{
		ID:           node.Generate().Int64(),
		Email:        email,
		PasswordHash: hashed,
		UserType:     domain.UserTypeUser,
		Profile: domain.Profile{
			Name:     "Admin",
			IsActive: true,
		},
		Permissions: domain.Permissions{CanViewAllUsers: true},
	}

	created, err := users.Create(ctx, user)
	if err != nil {
		return fmt.Errorf("bootstrap create user: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap admin user created",
			zap.String("email", created.Email),
			zap.Int64("user_id", created.ID),
		)
	}
	return nil
}

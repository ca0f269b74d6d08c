// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	userstore "github.com/qprep/qprep/internal/app/store/users"
	"github.com/qprep/qprep/internal/app/system/authutil"
	"github.com/qprep/qprep/internal/app/system/authz"
	"github.com/qprep/qprep/internal/domain/models"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SuperAdminEmail == "" {
		return nil
	}
	return ensureSuperAdmin(ctx, deps, appCfg.SuperAdminEmail, appCfg.SuperAdminPassword, logger)
}

// ensureSuperAdmin guarantees a super admin account exists for the
// configured email: an existing account is promoted, a missing one is
// created when a password was configured.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	store := userstore.New(deps.QPrepMongoDatabase)

	existing, err := store.GetByIdentifier(ctx, email)
	switch {
	case err == nil:
		if existing.Role == authz.RoleSuperAdmin {
			logger.Info("super admin already present", zap.String("email", email))
			return nil
		}
		if err := store.UpdateRole(ctx, existing.ID, authz.RoleSuperAdmin); err != nil {
			return fmt.Errorf("promote super admin: %w", err)
		}
		logger.Info("promoted existing user to super admin",
			zap.String("email", email),
			zap.String("previous_role", existing.Role))
		return nil

	case errors.Is(err, userstore.ErrNotFound):
		if password == "" {
			logger.Warn("super admin account missing and no superadmin_password configured; skipping creation",
				zap.String("email", email))
			return nil
		}
		hash, err := authutil.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash super admin password: %w", err)
		}

		username := email
		if at := strings.IndexByte(email, '@'); at > 0 {
			username = email[:at]
		}
		_, err = store.Create(ctx, models.User{
			FullName:     "Super Admin",
			Username:     username,
			Email:        email,
			Role:         authz.RoleSuperAdmin,
			PasswordHash: &hash,
		})
		if err != nil {
			return fmt.Errorf("create super admin: %w", err)
		}
		logger.Info("created super admin account",
			zap.String("email", email),
			zap.String("username", username))
		return nil

	default:
		return fmt.Errorf("look up super admin: %w", err)
	}
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	userstore "github.com/cyscom-vit/clubportal/internal/app/store/users"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// The portal prepares the attachment storage directory and promotes the
// configured superadmin account. Promotion only applies to an existing
// account: the user signs in with Google once, then restarts pick up
// the role.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.StorageLocalPath != "" {
		if err := os.MkdirAll(appCfg.StorageLocalPath, 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
	}

	if appCfg.SuperAdminEmail != "" {
		promoteCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()

		promoted, err := userstore.New(deps.MongoDatabase).PromoteByEmail(promoteCtx, appCfg.SuperAdminEmail, "superadmin")
		if err != nil {
			return fmt.Errorf("promote superadmin: %w", err)
		}
		if promoted {
			logger.Info("superadmin promoted", zap.String("email", appCfg.SuperAdminEmail))
		} else {
			logger.Info("superadmin account not found yet; will promote after first sign-in",
				zap.String("email", appCfg.SuperAdminEmail))
		}
	}

	return nil
}

// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background jobs, closes the browser pool and the
// directory, and disconnects MongoDB. Jobs stop first so none runs against
// a closed backend.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if svc := deps.Services; svc != nil {
		if svc.Runner != nil {
			svc.Runner.Stop()
		}
		if svc.ValidateLimiter != nil {
			svc.ValidateLimiter.Stop()
		}
		if svc.Chrome != nil {
			logger.Info("closing browser pool")
			svc.Chrome.Close()
		}
	}
	if deps.Directory != nil {
		if err := deps.Directory.Close(); err != nil {
			logger.Warn("member directory close failed", zap.Error(err))
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	auditlogfeature "github.com/dalemusser/chapterhub/internal/app/features/auditlog"
	documentsfeature "github.com/dalemusser/chapterhub/internal/app/features/documents"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/chapterhub/internal/app/features/health"
	logoutfeature "github.com/dalemusser/chapterhub/internal/app/features/logout"
	sessionsfeature "github.com/dalemusser/chapterhub/internal/app/features/sessions"
	settingsfeature "github.com/dalemusser/chapterhub/internal/app/features/settings"
	userinfofeature "github.com/dalemusser/chapterhub/internal/app/features/userinfo"
	validatefeature "github.com/dalemusser/chapterhub/internal/app/features/validate"
	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
	"github.com/dalemusser/chapterhub/internal/app/system/ratelimit"
)

// storageProbeKey is looked up by the health check; it need not exist.
const storageProbeKey = "health/probe"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// ChapterHub applies session and bearer-token middleware and mounts the
// document, session, validation, health and metrics routes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.Services
	if svc == nil || svc.Generator == nil {
		return nil, errors.New("build handler: startup did not complete")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SecretKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(appCfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Global auth middleware: loads SessionUser into context from the
	// session cookie or a bearer token.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, healthChecks(deps), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{}))

	// Public validation of signed minutes, rate limited per client
	validateHandler := validatefeature.NewHandler(svc.Generator, errLog, logger)
	r.With(ratelimit.Middleware(svc.ValidateLimiter, logger)).
		Mount("/validate", validatefeature.Routes(validateHandler))

	// Documents: templates, drafts, previews, signing and downloads
	documentsHandler := documentsfeature.NewHandler(svc.Generator, svc.Audit, errLog, logger)
	documentsHandler.MountRoutes(r, sessionMgr)

	// Session lifecycle
	sessionsHandler := sessionsfeature.NewHandler(svc.Sessions, svc.Members, svc.Attendance, svc.Audit, errLog, logger)
	sessionsHandler.MountRoutes(r, sessionMgr)

	// Chapter document settings and logo
	settingsHandler := settingsfeature.NewHandler(svc.Chapters, svc.Artifacts, svc.Audit, errLog, logger)
	settingsHandler.MountRoutes(r, sessionMgr)

	// Audit trail
	auditHandler := auditlogfeature.NewHandler(audit.New(deps.MongoDatabase), errLog, logger)
	auditHandler.MountRoutes(r, sessionMgr)

	// Identity: cookie exchange, logout and /me
	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	logoutHandler.MountRoutes(r, sessionMgr)
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

func healthChecks(deps DBDeps) map[string]healthfeature.Check {
	checks := map[string]healthfeature.Check{}
	if svc := deps.Services; svc != nil && svc.Artifacts != nil {
		store := svc.Artifacts
		checks["storage"] = func(ctx context.Context) error {
			_, err := store.Exists(ctx, storageProbeKey)
			return err
		}
	}
	if deps.Directory != nil {
		checks["directory"] = deps.Directory.Ping
	}
	return checks
}

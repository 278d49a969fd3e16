// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/assets"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	"github.com/dalemusser/chapterhub/internal/app/documents/paginate"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	"github.com/dalemusser/chapterhub/internal/app/documents/templates"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	attendancestore "github.com/dalemusser/chapterhub/internal/app/store/attendance"
	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	chapterstore "github.com/dalemusser/chapterhub/internal/app/store/chapters"
	"github.com/dalemusser/chapterhub/internal/app/store/docsource"
	documentstore "github.com/dalemusser/chapterhub/internal/app/store/documents"
	draftstore "github.com/dalemusser/chapterhub/internal/app/store/drafts"
	ledgerstore "github.com/dalemusser/chapterhub/internal/app/store/ledger"
	memberstore "github.com/dalemusser/chapterhub/internal/app/store/members"
	officerstore "github.com/dalemusser/chapterhub/internal/app/store/officers"
	"github.com/dalemusser/chapterhub/internal/app/store/sessions"
	templatestore "github.com/dalemusser/chapterhub/internal/app/store/templates"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/app/system/metrics"
	"github.com/dalemusser/chapterhub/internal/app/system/ratelimit"
	"github.com/dalemusser/chapterhub/internal/app/system/tasks"
	"github.com/dalemusser/chapterhub/internal/app/system/timeouts"
	"github.com/dalemusser/chapterhub/internal/app/system/workers"
)

// noticeWindow bounds the notice expedient when a session has no previous
// completed session.
const noticeWindow = 30 * 24 * time.Hour

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// assembles the document pipeline and starts the background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Services == nil {
		return errors.New("startup: services not allocated")
	}
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}
	if timeouts.EnsureLong(appCfg.RenderTimeout * 2) {
		logger.Info("long timeout raised to cover rendering", zap.Duration("long", timeouts.Long()))
	}

	store, err := openArtifacts(ctx, appCfg)
	if err != nil {
		logger.Error("artifact storage init failed", zap.String("type", appCfg.StorageType), zap.Error(err))
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipeline := metrics.New(reg)

	svc := buildServices(appCfg, deps, store, pipeline, logger)
	svc.Registry = reg
	*deps.Services = *svc

	deps.Services.Runner.Start()
	logger.Info("document pipeline ready",
		zap.String("storage", appCfg.StorageType),
		zap.Int("browser_pool", appCfg.BrowserPoolSize),
		zap.Bool("directory", deps.Directory != nil))
	return nil
}

func openArtifacts(ctx context.Context, appCfg AppConfig) (artifacts.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		return artifacts.NewS3(ctx, appCfg.StorageS3Region, appCfg.StorageS3Bucket, appCfg.StorageS3Prefix)
	case "local", "":
		return artifacts.NewLocal(appCfg.StorageRoot)
	default:
		return nil, fmt.Errorf("unknown storage type %q", appCfg.StorageType)
	}
}

// buildServices wires stores, the generator and the background jobs over
// an already opened artifact store.
func buildServices(appCfg AppConfig, deps DBDeps, store artifacts.Store, pipeline *metrics.Pipeline, logger *zap.Logger) *Services {
	db := deps.MongoDatabase

	sessStore := sessions.New(db)
	memberStore := memberstore.New(db)
	attendanceStore := attendancestore.New(db)
	chapterStore := chapterstore.New(db)

	var dir docsource.Directory
	if deps.Directory != nil {
		dir = deps.Directory
	}
	source := docsource.New(docsource.Stores{
		Chapters:   chapterStore,
		Members:    memberStore,
		Officers:   officerstore.New(db),
		Sessions:   sessStore,
		Attendance: attendanceStore,
		Ledger:     ledgerstore.New(db),
	}, dir, logger.Named("docsource"))

	base := &strategies.Base{
		Source:             source,
		Settings:           docsettings.NewResolver(logger),
		Assets:             assets.New(store, logger),
		Log:                logger.Named("strategies"),
		CollectionCategory: appCfg.CollectionCategory,
		NoticeWindow:       noticeWindow,
	}

	chrome := paginate.NewChrome(paginate.ChromeConfig{
		ExecPath: appCfg.ChromePath,
		PoolSize: appCfg.BrowserPoolSize,
		Timeout:  appCfg.RenderTimeout,
		Metrics:  pipeline,
	}, logger.Named("paginate"))

	gen := generator.New(generator.Deps{
		Source:     source,
		Strategies: strategies.NewRegistry(base),
		Templates:  templates.New(store, logger.Named("templates")),
		Stored:     templatestore.New(db),
		Records:    documentstore.New(db, logger),
		Locker:     sessStore,
		Drafts:     draftstore.New(store),
		Paginator:  chrome,
		Artifacts:  store,
		Metrics:    pipeline,
		Log:        logger.Named("generator"),
	}, generator.Config{
		ValidationBaseURL: appCfg.ValidationBaseURL,
		LockTTL:           appCfg.RenderTimeout * 3,
	})

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Documents: appCfg.AuditLogDocuments,
		Sessions:  appCfg.AuditLogSessions,
		Templates: appCfg.AuditLogTemplates,
	})

	jobsLog := logger.Named("jobs")
	runner := workers.NewRunner(jobsLog, pipeline,
		tasks.SessionAutoHoldJob(sessStore, auditLog, jobsLog, appCfg.AutoHoldInterval, nil),
		tasks.NoticeAutogenJob(sessStore, gen, auditLog, jobsLog, appCfg.NoticeInterval, appCfg.NoticeLeadDays, nil),
	)

	var limiter *ratelimit.Limiter
	if appCfg.ValidateRateLimit > 0 {
		limiter = ratelimit.New(appCfg.ValidateRateLimit, time.Minute)
	}

	return &Services{
		Metrics:         pipeline,
		Artifacts:       store,
		Chrome:          chrome,
		Generator:       gen,
		Audit:           auditLog,
		Runner:          runner,
		ValidateLimiter: limiter,
		Chapters:        chapterStore,
		Sessions:        sessStore,
		Members:         memberStore,
		Attendance:      attendanceStore,
	}
}

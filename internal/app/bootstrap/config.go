// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/attest"
)

// appConfigKeys defines the configuration keys for ChapterHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, storage_root, etc.
//   - Environment variables: CHAPTERHUB_MONGO_URI, CHAPTERHUB_STORAGE_ROOT, etc.
//   - Command-line flags: --mongo_uri, --storage_root, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "chapterhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "directory_dsn", Default: "", Desc: "Read-only Postgres member directory DSN (blank disables)"},

	{Name: "secret_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Cookie and bearer token signing key (must be strong in production)"},
	{Name: "session_name", Default: "chapterhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// Artifact storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_root", Default: "./storage", Desc: "Root directory of local artifact storage"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "chapterhub/", Desc: "S3 key prefix"},

	// Documents
	{Name: "validation_base_url", Default: attest.DefaultBaseURL, Desc: "Base URL of validation links on signed minutes"},
	{Name: "chrome_path", Default: "", Desc: "Chrome/Chromium executable (blank uses the default lookup)"},
	{Name: "browser_pool_size", Default: 2, Desc: "Concurrent headless browser instances"},
	{Name: "render_timeout", Default: "30s", Desc: "Hard limit for one pagination"},
	{Name: "collection_category", Default: "tronco", Desc: "Credit description matched as the session collection"},

	// Background jobs
	{Name: "notice_lead_days", Default: 7, Desc: "Days ahead of a session its convocation notice is generated"},
	{Name: "notice_interval", Default: "1h", Desc: "Notice autogeneration period (0 disables)"},
	{Name: "autohold_interval", Default: "5m", Desc: "Session auto-hold period (0 disables)"},

	// HTTP
	{Name: "cors_origins", Default: "", Desc: "Comma-separated origins allowed for browser API clients"},
	{Name: "validate_rate_limit", Default: 60, Desc: "Validation lookups per client per minute (0 disables)"},

	// Audit logging settings
	{Name: "audit_log_documents", Default: "all", Desc: "Document event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_sessions", Default: "all", Desc: "Session event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_templates", Default: "all", Desc: "Template event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CHAPTERHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CHAPTERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		DirectoryDSN:     appValues.String("directory_dsn"),

		SecretKey:     appValues.String("secret_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		// Artifact storage
		StorageType:     strings.ToLower(appValues.String("storage_type")),
		StorageRoot:     appValues.String("storage_root"),
		StorageS3Region: appValues.String("storage_s3_region"),
		StorageS3Bucket: appValues.String("storage_s3_bucket"),
		StorageS3Prefix: appValues.String("storage_s3_prefix"),

		// Documents
		ValidationBaseURL:  strings.TrimRight(appValues.String("validation_base_url"), "/"),
		ChromePath:         appValues.String("chrome_path"),
		BrowserPoolSize:    appValues.Int("browser_pool_size"),
		RenderTimeout:      appValues.Duration("render_timeout", 30*time.Second),
		CollectionCategory: appValues.String("collection_category"),

		// Background jobs
		NoticeLeadDays:   appValues.Int("notice_lead_days"),
		NoticeInterval:   appValues.Duration("notice_interval", time.Hour),
		AutoHoldInterval: appValues.Duration("autohold_interval", 5*time.Minute),

		CORSOrigins:       splitList(appValues.String("cors_origins")),
		ValidateRateLimit: appValues.Int("validate_rate_limit"),

		// Audit logging
		AuditLogDocuments: appValues.String("audit_log_documents"),
		AuditLogSessions:  appValues.String("audit_log_sessions"),
		AuditLogTemplates: appValues.String("audit_log_templates"),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// ChapterHub validates the MongoDB URI, the storage backend, and the
// validation URL before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
		if strings.TrimSpace(appCfg.StorageRoot) == "" {
			return fmt.Errorf("storage_root is required for local storage")
		}
	case "s3":
		if appCfg.StorageS3Region == "" || appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("s3 storage requires storage_s3_region and storage_s3_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want local or s3)", appCfg.StorageType)
	}

	u, err := url.Parse(appCfg.ValidationBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("validation_base_url must be an absolute URL, got %q", appCfg.ValidationBaseURL)
	}

	if appCfg.BrowserPoolSize < 1 {
		return fmt.Errorf("browser_pool_size must be at least 1")
	}
	if appCfg.ValidateRateLimit < 0 {
		return fmt.Errorf("validate_rate_limit must not be negative")
	}
	if appCfg.NoticeLeadDays < 0 {
		return fmt.Errorf("notice_lead_days must not be negative")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SecretKey) < 32 {
		return fmt.Errorf("secret_key must be at least 32 characters in production")
	}

	return nil
}

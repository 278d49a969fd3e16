// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig carries everything specific to the document service: the
// primary and directory databases, artifact storage, the browser pool,
// validation links, and the background jobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// DirectoryDSN is the optional read-only Postgres member directory.
	// Blank disables the directory overlay.
	DirectoryDSN string

	// Session and token configuration. SecretKey signs session cookies and
	// bearer tokens; it plays no part in document hashing.
	SecretKey     string
	SessionName   string        // Cookie name for sessions (default: chapterhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Artifact storage configuration
	StorageType string // Storage backend: "local" or "s3"
	StorageRoot string // Root directory of the local backend

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string
	StorageS3Bucket string
	StorageS3Prefix string

	// ValidationBaseURL prefixes the validation links printed on signed
	// minutes.
	ValidationBaseURL string

	// Browser pool
	ChromePath      string        // blank uses the chromedp default lookup
	BrowserPoolSize int           // concurrent browser instances
	RenderTimeout   time.Duration // hard limit per pagination

	// CollectionCategory is matched against credit descriptions to find the
	// session's collection.
	CollectionCategory string

	// Background jobs
	NoticeLeadDays   int           // days ahead a convocation notice is generated
	NoticeInterval   time.Duration // notice-autogen period; 0 disables
	AutoHoldInterval time.Duration // session-auto-hold period; 0 disables

	// CORSOrigins lists origins allowed to call the API from browsers.
	CORSOrigins []string

	// ValidateRateLimit caps public validation lookups per client per
	// minute; 0 disables the limit.
	ValidateRateLimit int

	// Audit logging: "all", "db", "log" or "off" per category.
	AuditLogDocuments string
	AuditLogSessions  string
	AuditLogTemplates string
}

// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	"github.com/dalemusser/chapterhub/internal/app/documents/paginate"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	attendancestore "github.com/dalemusser/chapterhub/internal/app/store/attendance"
	chapterstore "github.com/dalemusser/chapterhub/internal/app/store/chapters"
	memberstore "github.com/dalemusser/chapterhub/internal/app/store/members"
	"github.com/dalemusser/chapterhub/internal/app/store/sessions"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/app/system/metrics"
	"github.com/dalemusser/chapterhub/internal/app/system/ratelimit"
	"github.com/dalemusser/chapterhub/internal/app/system/workers"
)

// Services are the long-lived components built at startup and shared by
// the HTTP handler and shutdown.
type Services struct {
	Registry *prometheus.Registry
	Metrics  *metrics.Pipeline

	Artifacts artifacts.Store
	Chrome    *paginate.Chrome
	Generator *generator.Generator
	Audit     *auditlog.Logger
	Runner    *workers.Runner

	// ValidateLimiter is nil when validation lookups are unlimited.
	ValidateLimiter *ratelimit.Limiter

	Chapters   *chapterstore.Store
	Sessions   *sessions.Store
	Members    *memberstore.Store
	Attendance *attendancestore.Store
}

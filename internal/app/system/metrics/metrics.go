// Package metrics holds the Prometheus instruments of the document pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chapterhub"

// Pipeline counts generated documents, signatures, failures and render time.
// A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	generated    *prometheus.CounterVec
	failures     *prometheus.CounterVec
	signatures   prometheus.Counter
	conflicts    prometheus.Counter
	renderTime   *prometheus.HistogramVec
	browserInUse prometheus.Gauge
	jobRuns      *prometheus.CounterVec

	registerOnce sync.Once
}

// New creates a Pipeline registered with registry. A nil registry yields
// instruments that are never exported.
func New(registry prometheus.Registerer) *Pipeline {
	p := &Pipeline{}
	p.registerOnce.Do(func() {
		factory := promauto.With(registry)
		p.generated = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_generated_total",
			Help:      "Documents rendered, by document type",
		}, []string{"type"})
		p.failures = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_failures_total",
			Help:      "Failed document operations, by error kind",
		}, []string{"kind"})
		p.signatures = factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signatures_total",
			Help:      "Signature rows created",
		})
		p.conflicts = factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_conflicts_total",
			Help:      "Sign requests rejected because another sign held the session",
		})
		p.renderTime = factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "paginate_seconds",
			Help:      "Wall-clock time spent paginating HTML into artifacts",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"type"})
		p.browserInUse = factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "browser_instances_in_use",
			Help:      "Headless browser instances currently leased",
		})
		p.jobRuns = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs, by job and result",
		}, []string{"job", "result"})
	})
	return p
}

// Generated records one rendered document of docType.
func (p *Pipeline) Generated(docType string) {
	if p == nil {
		return
	}
	p.generated.WithLabelValues(docType).Inc()
}

// Failed records a failure of the given kind (not_found, invalid_state, ...).
func (p *Pipeline) Failed(kind string) {
	if p == nil {
		return
	}
	p.failures.WithLabelValues(kind).Inc()
}

// Signed records a created signature.
func (p *Pipeline) Signed() {
	if p == nil {
		return
	}
	p.signatures.Inc()
}

// Conflict records a rejected concurrent sign.
func (p *Pipeline) Conflict() {
	if p == nil {
		return
	}
	p.conflicts.Inc()
}

// ObservePaginate records pagination seconds for docType.
func (p *Pipeline) ObservePaginate(docType string, seconds float64) {
	if p == nil {
		return
	}
	p.renderTime.WithLabelValues(docType).Observe(seconds)
}

// BrowserLeased adjusts the in-use gauge by delta (+1 on acquire, -1 on release).
func (p *Pipeline) BrowserLeased(delta float64) {
	if p == nil {
		return
	}
	p.browserInUse.Add(delta)
}

// JobRun records one background job run; result is "ok", "error" or "panic".
func (p *Pipeline) JobRun(job, result string) {
	if p == nil {
		return
	}
	p.jobRuns.WithLabelValues(job, result).Inc()
}

// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/system/metrics"
	"github.com/dalemusser/chapterhub/internal/app/system/tasks"
)

// Runner runs background jobs, each on its own ticker. A failed or
// panicking run is logged and the job continues at its next tick.
type Runner struct {
	jobs    []tasks.Job
	log     *zap.Logger
	metrics *metrics.Pipeline

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewRunner creates a runner for jobs. Jobs with a non-positive interval
// are skipped.
func NewRunner(logger *zap.Logger, m *metrics.Pipeline, jobs ...tasks.Job) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{jobs: jobs, log: logger, metrics: m, ctx: ctx, cancel: cancel}
}

// Start launches every job loop. Calling it twice is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	for _, j := range r.jobs {
		if j.Interval <= 0 || j.Run == nil {
			r.log.Warn("background job disabled", zap.String("job", j.Name))
			continue
		}
		r.wg.Add(1)
		go r.loop(j)
		r.log.Info("background job started", zap.String("job", j.Name), zap.Duration("interval", j.Interval))
	}
}

// Stop cancels running jobs and waits for their loops to exit.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	r.log.Info("background jobs stopped")
}

func (r *Runner) loop(j tasks.Job) {
	defer r.wg.Done()

	if j.RunAtStart {
		r.runOnce(j)
	}
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(j)
		}
	}
}

func (r *Runner) runOnce(j tasks.Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = j.Interval
	}
	ctx, cancel := context.WithTimeout(r.ctx, timeout)
	defer cancel()

	result := "ok"
	defer func() {
		if p := recover(); p != nil {
			result = "panic"
			r.log.Error("background job panicked", zap.String("job", j.Name), zap.String("panic", fmt.Sprint(p)))
		}
		r.metrics.JobRun(j.Name, result)
	}()

	if err := j.Run(ctx); err != nil {
		result = "error"
		r.log.Error("background job failed", zap.String("job", j.Name), zap.Error(err))
	}
}

// Package timeouts provides centralized timeout values for handler and
// document-pipeline operations.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks
//   - Short: single-document reads (session, chapter, signature lookup)
//   - Medium: context building, list queries, draft writes
//   - Long: sign and generate operations (render + paginate + persist)
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 60 * time.Second
)

type kind int

const (
	kindPing kind = iota
	kindShort
	kindMedium
	kindLong
	numKinds
)

var defaults = [numKinds]time.Duration{DefaultPing, DefaultShort, DefaultMedium, DefaultLong}

// envNames holds the CHAPTERHUB_TIMEOUT_* variable of each kind.
var envNames = [numKinds]string{
	"CHAPTERHUB_TIMEOUT_PING",
	"CHAPTERHUB_TIMEOUT_SHORT",
	"CHAPTERHUB_TIMEOUT_MEDIUM",
	"CHAPTERHUB_TIMEOUT_LONG",
}

var (
	mu      sync.RWMutex
	current = defaults
)

func get(k kind) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return current[k]
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(kindPing) }

// Short returns the timeout for single-document reads.
func Short() time.Duration { return get(kindShort) }

// Medium returns the timeout for moderate operations.
func Medium() time.Duration { return get(kindMedium) }

// Long returns the timeout for whole generate/sign operations.
func Long() time.Duration { return get(kindLong) }

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func (c Config) values() [numKinds]time.Duration {
	return [numKinds]time.Duration{c.Ping, c.Short, c.Medium, c.Long}
}

// Configure sets custom timeout values. Zero values are ignored.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for k, d := range cfg.values() {
		if d > 0 {
			current[k] = d
		}
	}
}

// EnsureLong raises the Long timeout to at least d. A sign operation holds
// the session lock across a full render, so Long must outlast it.
func EnsureLong(d time.Duration) bool {
	mu.Lock()
	defer mu.Unlock()
	if current[kindLong] >= d {
		return false
	}
	current[kindLong] = d
	return true
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults
}

// ConfigureFromEnv reads CHAPTERHUB_TIMEOUT_{PING,SHORT,MEDIUM,LONG}
// (Go duration strings). Invalid or non-positive values are skipped.
// Returns the number of timeouts configured.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	configured := 0
	for k, name := range envNames {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			current[k] = d
			configured++
		}
	}
	return configured
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:   current[kindPing],
		Short:  current[kindShort],
		Medium: current[kindMedium],
		Long:   current[kindLong],
	}
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "sign minutes")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}

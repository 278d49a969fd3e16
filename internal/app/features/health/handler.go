// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/system/timeouts"
)

// Check probes one optional dependency.
type Check func(ctx context.Context) error

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Checks map[string]Check
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
// Checks name optional dependencies (artifact storage, directory database);
// their failures degrade the status without failing the probe.
func NewHandler(client *mongo.Client, checks map[string]Check, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Checks: checks,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Message      string            `json:"message,omitempty"`
	Error        string            `json:"error,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "dependencies":{"storage":"ok"} }
//
// A failing optional dependency keeps 200 with "status":"degraded".
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	// Check database
	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if resp.Dependencies == nil {
			resp.Dependencies = map[string]string{}
		}
		if err := h.Checks[name](ctx); err != nil {
			h.Log.Warn("health-check: dependency failed", zap.String("dependency", name), zap.Error(err))
			resp.Dependencies[name] = "error"
			resp.Status = "degraded"
			continue
		}
		resp.Dependencies[name] = "ok"
	}

	_ = json.NewEncoder(w).Encode(resp)
}

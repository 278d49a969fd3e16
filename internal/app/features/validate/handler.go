// internal/app/features/validate/handler.go
package validate

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
)

// Validator looks up a signed document by content hash.
type Validator interface {
	Validate(ctx context.Context, hash string) (generator.Validation, error)
}

// Handler serves the public validation endpoint printed on signed minutes.
type Handler struct {
	V      Validator
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a validate Handler.
func NewHandler(v Validator, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{V: v, ErrLog: errLog, Log: logger}
}

// Serve handles GET /validate/{hash}. Unknown and malformed hashes both
// answer 404. Hashes are matched case-insensitively.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	hash := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "hash")))
	v, err := h.V.Validate(r.Context(), hash)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Debug("signature validated", zap.String("hash", hash), zap.Bool("verified", v.Verified))
	w.Header().Set("Cache-Control", "no-store")
	errorsfeature.JSON(w, http.StatusOK, v)
}

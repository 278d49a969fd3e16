// internal/app/features/settings/settings.go
package settings

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
)

const maxSettingsBody = 256 << 10

// ServeSettings handles GET /chapters/{id}/settings. The response carries the
// stored blob and the effective settings of every document type.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ch, _, err := h.chapter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.respond(w, ch)
}

// UpdateSettings handles PUT /chapters/{id}/settings. The blob replaces the
// stored one only if every document type still resolves to valid settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ch, u, err := h.chapter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	var blob map[string]any
	r.Body = http.MaxBytesReader(w, r.Body, maxSettingsBody)
	if err := json.NewDecoder(r.Body).Decode(&blob); err != nil {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: document settings must be a JSON object", docerr.ErrInvalidInput))
		return
	}
	if blob == nil {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: document settings must be a JSON object", docerr.ErrInvalidInput))
		return
	}
	for _, key := range docsettings.TypeKeys {
		if _, err := docsettings.Compute(blob, key); err != nil {
			h.ErrLog.Write(w, r, fmt.Errorf("%w: %s: %v", docerr.ErrInvalidInput, key, err))
			return
		}
	}

	if err := h.Chapters.UpdateDocumentSettings(r.Context(), ch.ID, blob); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.SettingsUpdated(r.Context(), auditlog.Actor{ID: u.ID, R: r}, ch.ID, "document_settings")
	h.Log.Info("document settings updated", zap.String("chapter_id", ch.ID.Hex()))

	updated, err := h.Chapters.GetByID(r.Context(), ch.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.respond(w, updated)
}

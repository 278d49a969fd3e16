// internal/app/features/settings/logo.go
package settings

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// MaxLogoSize bounds an uploaded logo.
const MaxLogoSize = 2 << 20

var logoTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// UploadLogo handles POST /chapters/{id}/logo with a multipart "logo" file.
// The file is stored in the chapter's partition under a fresh name and the
// previous logo is removed.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	ch, u, err := h.chapter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxLogoSize+(64<<10))
	if err := r.ParseMultipartForm(MaxLogoSize); err != nil {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: logo upload too large or malformed", docerr.ErrInvalidInput))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil || header.Size == 0 {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: logo file required", docerr.ErrInvalidInput))
		return
	}
	defer file.Close()
	if header.Size > MaxLogoSize {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: logo exceeds %d bytes", docerr.ErrInvalidInput, MaxLogoSize))
		return
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	contentType, ok := logoTypes[ext]
	if !ok {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: logo must be a png, jpeg, gif, webp or svg image", docerr.ErrInvalidInput))
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: logo must be an image", docerr.ErrInvalidInput))
		return
	}

	tenant := artifacts.TenantOf(ch)
	key, err := tenant.Key("assets", "logo-"+uuid.NewString()[:8]+ext)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if err := h.Storage.Put(r.Context(), key, file, contentType); err != nil {
		h.ErrLog.Write(w, r, fmt.Errorf("store logo: %w", err))
		return
	}
	if err := h.Chapters.UpdateLogo(r.Context(), ch.ID, key); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.removeOld(r, ch, key)
	h.Audit.SettingsUpdated(r.Context(), auditlog.Actor{ID: u.ID, R: r}, ch.ID, "logo")
	h.Log.Info("chapter logo updated", zap.String("chapter_id", ch.ID.Hex()), zap.String("key", key))

	ch.LogoPath = key
	h.respond(w, ch)
}

// DeleteLogo handles DELETE /chapters/{id}/logo. Documents fall back to the
// packaged logo afterwards.
func (h *Handler) DeleteLogo(w http.ResponseWriter, r *http.Request) {
	ch, u, err := h.chapter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if err := h.Chapters.UpdateLogo(r.Context(), ch.ID, ""); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.removeOld(r, ch, "")
	h.Audit.SettingsUpdated(r.Context(), auditlog.Actor{ID: u.ID, R: r}, ch.ID, "logo")

	ch.LogoPath = ""
	h.respond(w, ch)
}

// removeOld deletes the chapter's previous logo when it lives in the
// chapter's own partition. Failures are logged only.
func (h *Handler) removeOld(r *http.Request, ch models.Chapter, replacement string) {
	old := ch.LogoPath
	if old == "" || old == replacement || !artifacts.TenantOf(ch).Owns(old) {
		return
	}
	if err := h.Storage.Delete(r.Context(), old); err != nil {
		h.Log.Warn("failed to delete old logo", zap.String("key", old), zap.Error(err))
	}
}

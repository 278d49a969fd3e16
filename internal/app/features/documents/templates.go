// internal/app/features/documents/templates.go
package documents

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/system/limits"
	"github.com/dalemusser/chapterhub/internal/app/system/timeouts"
)

// readScope is the chapter whose template a read resolves. Admins without a
// chapter_id query parameter see the packaged defaults.
func readScope(r *http.Request) (primitive.ObjectID, error) {
	if q := r.URL.Query().Get("chapter_id"); q != "" {
		return chapterFor(r, q)
	}
	return scope(r)
}

// GetTemplate handles GET /templates/{type}.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Short(), "load template")
	defer cancel()
	chapterID, err := readScope(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	v, err := h.Gen.Template(r.Context(), chapterID, chi.URLParam(r, "type"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	errorsfeature.JSON(w, http.StatusOK, v)
}

type saveTemplateRequest struct {
	ChapterID string `json:"chapter_id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
}

type templateResponse struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Type      string    `json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveTemplate handles POST /templates.
func (h *Handler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Medium(), "save template")
	defer cancel()
	var req saveTemplateRequest
	if err := decode(w, r, limits.MaxTemplateSize+4096, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if len(req.Content) > limits.MaxTemplateSize {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: template exceeds %d bytes", docerr.ErrInvalidInput, limits.MaxTemplateSize))
		return
	}
	chapterID, err := chapterFor(r, req.ChapterID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	kind := strings.TrimSpace(req.Type)
	saved, err := h.Gen.SaveTemplate(r.Context(), chapterID, kind, req.Content)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.TemplateSaved(r.Context(), actor(r), chapterID, kind)
	errorsfeature.JSON(w, http.StatusOK, templateResponse{
		ID:        saved.ID.Hex(),
		ChapterID: saved.ChapterID.Hex(),
		Type:      saved.Type,
		UpdatedAt: saved.UpdatedAt,
	})
}

type previewTemplateRequest struct {
	ChapterID string         `json:"chapter_id"`
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Styles    map[string]any `json:"styles"`
	Format    string         `json:"format"`
}

// PreviewTemplate handles POST /templates/preview. The artifact is rendered
// from sample data and never stored.
func (h *Handler) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Long(), "preview template")
	defer cancel()
	var req previewTemplateRequest
	if err := decode(w, r, limits.MaxTemplateSize+limits.MaxDocumentRequestSize, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	format, err := previewFormat(req.Format)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var chapterID primitive.ObjectID
	if req.ChapterID != "" {
		chapterID, err = chapterFor(r, req.ChapterID)
	} else {
		chapterID, err = scope(r)
	}
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	a, err := h.Gen.TemplatePreview(r.Context(), generator.TemplatePreviewRequest{
		ChapterID:      chapterID,
		Kind:           strings.TrimSpace(req.Type),
		Content:        req.Content,
		StyleOverrides: req.Styles,
		Format:         format,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	writeArtifact(w, a)
}

// previewFormat parses a requested preview format; PDF when empty.
func previewFormat(s string) (generator.PreviewFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(generator.FormatPDF):
		return generator.FormatPDF, nil
	case string(generator.FormatHTML):
		return generator.FormatHTML, nil
	}
	return "", fmt.Errorf("%w: unknown preview format %q", docerr.ErrInvalidInput, s)
}

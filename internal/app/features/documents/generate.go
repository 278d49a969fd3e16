// internal/app/features/documents/generate.go
package documents

import (
	"fmt"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/system/limits"
	"github.com/dalemusser/chapterhub/internal/app/system/timeouts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// generated writes the outcome of a document generation and audits it.
func (h *Handler) generated(w http.ResponseWriter, r *http.Request, chapterID primitive.ObjectID, sessionID *primitive.ObjectID, kind string, g generator.Generated, err error) {
	if err != nil {
		if chapterID.IsZero() && sessionID != nil {
			chapterID = h.sessionChapter(r.Context(), chapterID, *sessionID)
		}
		h.Audit.DocumentFailed(r.Context(), actor(r), chapterID, sessionID, kind, err)
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.DocumentGenerated(r.Context(), actor(r), g.Document)
	errorsfeature.JSON(w, http.StatusCreated, newDocumentResponse(g.Document))
}

type noticeRequest struct {
	Message string         `json:"message"`
	Styles  map[string]any `json:"styles"`
}

// GenerateNotice handles POST /sessions/{id}/notice/generate.
func (h *Handler) GenerateNotice(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Long(), "generate notice")
	defer cancel()
	sessionID, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	restrict, err := scope(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var req noticeRequest
	if err := decode(w, r, limits.MaxDocumentRequestSize, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	g, err := h.Gen.GenerateNotice(r.Context(), generator.NoticeRequest{
		ChapterID:      restrict,
		SessionID:      sessionID,
		Message:        req.Message,
		StyleOverrides: req.Styles,
		IssuedBy:       issuedBy(r),
	})
	h.generated(w, r, restrict, &sessionID, models.KindNotice, g, err)
}

type certificateRequest struct {
	MemberID string         `json:"member_id"`
	Styles   map[string]any `json:"styles"`
}

// IssueCertificate handles POST /sessions/{id}/certificate.
func (h *Handler) IssueCertificate(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Long(), "issue certificate")
	defer cancel()
	sessionID, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	restrict, err := scope(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	var req certificateRequest
	if err := decode(w, r, limits.MaxDocumentRequestSize, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	memberID, err := optionalID("member_id", req.MemberID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if memberID.IsZero() {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: member_id required", docerr.ErrInvalidInput))
		return
	}
	g, err := h.Gen.IssueCertificate(r.Context(), generator.CertificateRequest{
		ChapterID:      restrict,
		SessionID:      sessionID,
		MemberID:       memberID,
		StyleOverrides: req.Styles,
		IssuedBy:       issuedBy(r),
	})
	h.generated(w, r, restrict, &sessionID, models.KindCertificate, g, err)
}

type recipient struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
}

type freeFormRequest struct {
	SessionID string         `json:"session_id"`
	Recipient *recipient     `json:"recipient"`
	Message   string         `json:"message"`
	Styles    map[string]any `json:"styles"`
}

// FreeForm returns the handler of POST /chapters/{id}/{kind} for invitations
// and congratulations.
func (h *Handler) FreeForm(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, cancel := h.bound(r, timeouts.Long(), "generate "+kind)
		defer cancel()
		chapterID, err := pathID(r, "id")
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		if chapterID, err = chapterFor(r, chapterID.Hex()); err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		var req freeFormRequest
		if err := decode(w, r, limits.MaxDocumentRequestSize, &req); err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		sessionID, err := optionalID("session_id", req.SessionID)
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		ff := generator.FreeFormRequest{
			ChapterID:      chapterID,
			SessionID:      sessionID,
			Message:        req.Message,
			StyleOverrides: req.Styles,
			IssuedBy:       issuedBy(r),
		}
		if req.Recipient != nil && strings.TrimSpace(req.Recipient.Name) != "" {
			ff.Recipient = &strategies.RecipientView{
				Name:         strings.TrimSpace(req.Recipient.Name),
				Title:        strings.TrimSpace(req.Recipient.Title),
				Organization: strings.TrimSpace(req.Recipient.Organization),
			}
		}
		var sid *primitive.ObjectID
		if !sessionID.IsZero() {
			sid = &sessionID
		}
		g, err := h.Gen.GenerateFreeForm(r.Context(), kind, ff)
		h.generated(w, r, chapterID, sid, kind, g, err)
	}
}

// Download handles GET /documents/{id}/download: the stored artifact of a
// previously generated document.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Medium(), "download document")
	defer cancel()
	docID, err := pathID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	restrict, err := scope(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	doc, data, err := h.Gen.Download(r.Context(), restrict, docID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.DocumentDownloaded(r.Context(), actor(r), doc)
	writeArtifact(w, generator.Artifact{
		Bytes:       data,
		FileName:    doc.FileName,
		ContentType: generator.ContentTypePDF,
		Title:       doc.Title,
	})
}

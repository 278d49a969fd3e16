// internal/app/features/documents/handler.go
package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
	"github.com/dalemusser/chapterhub/internal/app/system/timeouts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Handler serves templates, minutes drafts, previews, signing, generated
// documents and re-prints.
type Handler struct {
	Gen    *generator.Generator
	Audit  *auditlog.Logger
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a documents Handler.
func NewHandler(gen *generator.Generator, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gen:    gen,
		Audit:  audit,
		ErrLog: errLog,
		Log:    logger,
	}
}

// scope returns the chapter restriction of the caller: none for admins,
// the caller's own chapter otherwise.
func scope(r *http.Request) (primitive.ObjectID, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("%w: no user", docerr.ErrNotFound)
	}
	if u.IsAdmin() {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(u.ChapterID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: user has no chapter", docerr.ErrNotFound)
	}
	return id, nil
}

// chapterFor resolves the chapter an operation writes to. Admins name it
// explicitly; other users act on their own chapter and may only name it.
func chapterFor(r *http.Request, explicit string) (primitive.ObjectID, error) {
	explicit = strings.TrimSpace(explicit)
	u, _ := auth.CurrentUser(r)
	if u.IsAdmin() {
		id, err := primitive.ObjectIDFromHex(explicit)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("%w: chapter_id required", docerr.ErrInvalidInput)
		}
		return id, nil
	}
	own, err := scope(r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if explicit != "" && explicit != own.Hex() {
		return primitive.NilObjectID, fmt.Errorf("chapter %s: %w", explicit, docerr.ErrNotFound)
	}
	return own, nil
}

// pathID parses a hex ObjectID route parameter. Malformed ids are reported
// as missing.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s %q: %w", name, raw, docerr.ErrNotFound)
	}
	return id, nil
}

// optionalID parses a hex ObjectID body field; empty is the zero id.
func optionalID(field, raw string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is not a valid id", docerr.ErrInvalidInput, field)
	}
	return id, nil
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body exceeds %d bytes", docerr.ErrInvalidInput, tooLarge.Limit)
	}
	return fmt.Errorf("%w: malformed JSON: %v", docerr.ErrInvalidInput, err)
}

// bound attaches an operation deadline to r.
func (h *Handler) bound(r *http.Request, d time.Duration, op string) (*http.Request, context.CancelFunc) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), d, h.Log, op)
	return r.WithContext(ctx), cancel
}

func actor(r *http.Request) auditlog.Actor {
	a := auditlog.Actor{R: r}
	if u, ok := auth.CurrentUser(r); ok {
		a.ID = u.ID
	}
	return a
}

// issuedBy is the caller as a document uploader, when their id is an
// ObjectID. Token subjects of service accounts are not.
func issuedBy(r *http.Request) *primitive.ObjectID {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil
	}
	return &id
}

// writeArtifact streams produced bytes inline.
func writeArtifact(w http.ResponseWriter, a generator.Artifact) {
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": a.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Bytes)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Bytes)
}

// documentResponse describes a persisted document.
type documentResponse struct {
	DocumentID  string    `json:"document_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	SessionID   string    `json:"session_id,omitempty"`
	MemberID    string    `json:"member_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url"`
}

func newDocumentResponse(doc models.Document) documentResponse {
	resp := documentResponse{
		DocumentID:  doc.ID.Hex(),
		Type:        doc.Type,
		Title:       doc.Title,
		FileName:    doc.FileName,
		Size:        doc.Size,
		CreatedAt:   doc.CreatedAt,
		DownloadURL: "/documents/" + doc.ID.Hex() + "/download",
	}
	if doc.SessionID != nil {
		resp.SessionID = doc.SessionID.Hex()
	}
	if doc.MemberID != nil {
		resp.MemberID = doc.MemberID.Hex()
	}
	return resp
}

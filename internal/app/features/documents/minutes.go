// internal/app/features/documents/minutes.go
package documents

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
	"github.com/dalemusser/chapterhub/internal/app/system/limits"
	"github.com/dalemusser/chapterhub/internal/app/system/timeouts"
)

// sessionChapter is the chapter of a session already checked against
// restrict, for audit records.
func (h *Handler) sessionChapter(ctx context.Context, restrict, sessionID primitive.ObjectID) primitive.ObjectID {
	if !restrict.IsZero() {
		return restrict
	}
	s, err := h.Gen.Source.Session(ctx, sessionID)
	if err != nil {
		return primitive.NilObjectID
	}
	return s.ChapterID
}

// GetDraft handles GET /sessions/{id}/minutes-draft.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Medium(), "load minutes draft")
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
	v, err := h.Gen.MinutesDraft(r.Context(), restrict, sessionID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	errorsfeature.JSON(w, http.StatusOK, v)
}

type saveDraftRequest struct {
	Text   string         `json:"text"`
	Styles map[string]any `json:"styles"`
}

// SaveDraft handles POST /sessions/{id}/minutes-draft.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Medium(), "save minutes draft")
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
	var req saveDraftRequest
	if err := decode(w, r, limits.MaxDraftSize+4096, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if len(req.Text) > limits.MaxDraftSize {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: draft exceeds %d bytes", docerr.ErrInvalidInput, limits.MaxDraftSize))
		return
	}
	var by string
	if u, ok := auth.CurrentUser(r); ok {
		by = u.Name
	}
	d, err := h.Gen.SaveDraft(r.Context(), restrict, sessionID, req.Text, req.Styles, by)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.DraftSaved(r.Context(), actor(r), h.sessionChapter(r.Context(), restrict, sessionID), sessionID)
	errorsfeature.JSON(w, http.StatusOK, d)
}

type minutesRequest struct {
	Body   *string        `json:"body"`
	Styles map[string]any `json:"styles"`
	Format string         `json:"format"`
}

// minutesRequest decodes the request body into dst and maps req, the minutes
// fields of dst, into a generator request. dst may embed req.
func (h *Handler) minutesRequest(w http.ResponseWriter, r *http.Request, dst any, req *minutesRequest) (generator.MinutesRequest, error) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		return generator.MinutesRequest{}, err
	}
	restrict, err := scope(r)
	if err != nil {
		return generator.MinutesRequest{}, err
	}
	if err := decode(w, r, limits.MaxDocumentRequestSize, dst); err != nil {
		return generator.MinutesRequest{}, err
	}
	return generator.MinutesRequest{
		ChapterID:      restrict,
		SessionID:      sessionID,
		BodyOverride:   req.Body,
		StyleOverrides: req.Styles,
	}, nil
}

// PreviewMinutes handles POST /sessions/{id}/minutes/preview. Nothing is
// persisted.
func (h *Handler) PreviewMinutes(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Long(), "preview minutes")
	defer cancel()
	var body minutesRequest
	req, err := h.minutesRequest(w, r, &body, &body)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	format, err := previewFormat(body.Format)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	a, err := h.Gen.Preview(r.Context(), req, format)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	writeArtifact(w, a)
}

type signRequest struct {
	minutesRequest
	SignerID   string `json:"signer_id"`
	SignerName string `json:"signer_name"`
}

type signResponse struct {
	Document      documentResponse `json:"document"`
	Hash          string           `json:"hash"`
	Algorithm     string           `json:"algorithm"`
	Signer        string           `json:"signer"`
	SignedAt      time.Time        `json:"signed_at"`
	ValidationURL string           `json:"validation_url"`
}

// SignMinutes handles POST /sessions/{id}/minutes/sign.
func (h *Handler) SignMinutes(w http.ResponseWriter, r *http.Request) {
	r, cancel := h.bound(r, timeouts.Long(), "sign minutes")
	defer cancel()
	var body signRequest
	req, err := h.minutesRequest(w, r, &body, &body.minutesRequest)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	signerID, err := optionalID("signer_id", body.SignerID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	res, err := h.Gen.Sign(r.Context(), generator.SignRequest{
		MinutesRequest: req,
		SignerID:       signerID,
		SignerName:     body.SignerName,
	})
	if err != nil {
		h.Audit.SignFailed(r.Context(), actor(r), h.sessionChapter(r.Context(), req.ChapterID, req.SessionID), req.SessionID, err)
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.MinutesSigned(r.Context(), actor(r), res.Document, res.Signature)
	errorsfeature.JSON(w, http.StatusCreated, signResponse{
		Document:      newDocumentResponse(res.Document),
		Hash:          res.Signature.Hash,
		Algorithm:     res.Signature.Algorithm,
		Signer:        res.Signature.SignerName,
		SignedAt:      res.Signature.SignedAt,
		ValidationURL: res.URL,
	})
}

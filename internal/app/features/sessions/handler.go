// internal/app/features/sessions/handler.go
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// SessionStore reads sessions and applies lifecycle transitions.
type SessionStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error)
	Transition(ctx context.Context, id primitive.ObjectID, to string, privileged bool) (models.Session, error)
}

// MemberLister lists the members expected at a chapter's sessions.
type MemberLister interface {
	ActiveIDs(ctx context.Context, chapterID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// AttendanceCreator creates pending attendance rows idempotently.
type AttendanceCreator interface {
	BulkCreate(ctx context.Context, sessionID primitive.ObjectID, memberIDs []primitive.ObjectID) (int, error)
}

// Handler serves session lifecycle transitions.
type Handler struct {
	Sessions   SessionStore
	Members    MemberLister
	Attendance AttendanceCreator
	Audit      *auditlog.Logger
	ErrLog     *errorsfeature.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs a sessions Handler.
func NewHandler(sessions SessionStore, members MemberLister, attendance AttendanceCreator, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions:   sessions,
		Members:    members,
		Attendance: attendance,
		Audit:      audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type transitionRequest struct {
	To string `json:"to"`
}

type transitionResponse struct {
	Session           models.Session `json:"session"`
	From              string         `json:"from"`
	AttendanceCreated int            `json:"attendance_created"`
}

// Transition handles POST /sessions/{id}/transition. Only documented edges
// are applied; reopening a closed session is reserved to admins.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, fmt.Errorf("session: %w", docerr.ErrNotFound))
		return
	}
	var req transitionRequest
	r.Body = http.MaxBytesReader(w, r.Body, 4096)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: malformed JSON", docerr.ErrInvalidInput))
		return
	}
	to := strings.ToLower(strings.TrimSpace(req.To))
	if to == "" {
		h.ErrLog.Write(w, r, fmt.Errorf("%w: target state required", docerr.ErrInvalidInput))
		return
	}

	u, _ := auth.CurrentUser(r)
	cur, err := h.Sessions.GetByID(r.Context(), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if !u.CanAccessChapter(cur.ChapterID.Hex()) {
		h.ErrLog.Write(w, r, fmt.Errorf("session %s: %w", id.Hex(), docerr.ErrNotFound))
		return
	}

	s, err := h.Sessions.Transition(r.Context(), id, to, u.IsAdmin())
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	a := auditlog.Actor{ID: u.ID, R: r}
	h.Audit.SessionTransitioned(r.Context(), a, s, cur.State)
	h.Log.Info("session transitioned",
		zap.String("session_id", s.ID.Hex()),
		zap.String("from", cur.State),
		zap.String("to", s.State))

	resp := transitionResponse{Session: s, From: cur.State}
	if cur.State == models.StateScheduled && s.State == models.StateInProgress {
		n, err := h.openAttendance(r.Context(), s)
		if err != nil {
			// The transition stands.
			h.Log.Error("bulk attendance failed", zap.String("session_id", s.ID.Hex()), zap.Error(err))
		} else {
			resp.AttendanceCreated = n
			h.Audit.AttendanceCreated(r.Context(), a, s, n)
		}
	}
	errorsfeature.JSON(w, http.StatusOK, resp)
}

// openAttendance creates a pending row for every active member.
func (h *Handler) openAttendance(ctx context.Context, s models.Session) (int, error) {
	ids, err := h.Members.ActiveIDs(ctx, s.ChapterID)
	if err != nil {
		return 0, fmt.Errorf("members: %w", err)
	}
	return h.Attendance.BulkCreate(ctx, s.ID, ids)
}

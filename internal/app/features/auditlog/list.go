// internal/app/features/auditlog/list.go
package auditlog

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
	"github.com/dalemusser/chapterhub/internal/app/system/paging"
	"github.com/dalemusser/chapterhub/internal/app/system/timeouts"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /audit: audit events newest first, with optional
// category, event_type, session_id, start_date and end_date filters.
// Admins see every chapter and may narrow with chapter_id; other callers
// see only their own chapter.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, p, err := buildFilter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, newListItem(e))
	}
	w.Header().Set("Cache-Control", "no-store")
	errorsfeature.JSON(w, http.StatusOK, listResponse{Items: items, Page: paging.NewPage(p, total)})
}

func buildFilter(r *http.Request) (audit.QueryFilter, paging.Params, error) {
	q := r.URL.Query()
	p := paging.Parse(r)
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     p.Limit(),
		Offset:    p.Offset(),
	}

	types := eventTypesForCategory(filter.Category)
	if types == nil {
		return filter, p, fmt.Errorf("%w: unknown category %q", docerr.ErrInvalidInput, filter.Category)
	}
	if filter.EventType != "" && !slices.Contains(types, filter.EventType) {
		return filter, p, fmt.Errorf("%w: unknown event type %q", docerr.ErrInvalidInput, filter.EventType)
	}

	chapterID, err := chapterScope(r, strings.TrimSpace(q.Get("chapter_id")))
	if err != nil {
		return filter, p, err
	}
	filter.ChapterID = chapterID

	if raw := strings.TrimSpace(q.Get("session_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, p, fmt.Errorf("%w: session_id", docerr.ErrInvalidInput)
		}
		filter.SessionID = &id
	}

	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, p, fmt.Errorf("%w: start_date must be YYYY-MM-DD", docerr.ErrInvalidInput)
		}
		filter.StartTime = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, p, fmt.Errorf("%w: end_date must be YYYY-MM-DD", docerr.ErrInvalidInput)
		}
		// End of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}
	if filter.StartTime != nil && filter.EndTime != nil && filter.EndTime.Before(*filter.StartTime) {
		return filter, p, fmt.Errorf("%w: end_date before start_date", docerr.ErrInvalidInput)
	}
	return filter, p, nil
}

// chapterScope returns the chapter filter for the caller. Nil means every
// chapter and is only possible for admins.
func chapterScope(r *http.Request, explicit string) (*primitive.ObjectID, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil, fmt.Errorf("audit: %w", docerr.ErrNotFound)
	}
	if u.IsAdmin() {
		if explicit == "" {
			return nil, nil
		}
		id, err := primitive.ObjectIDFromHex(explicit)
		if err != nil {
			return nil, fmt.Errorf("%w: chapter_id", docerr.ErrInvalidInput)
		}
		return &id, nil
	}
	if explicit != "" && explicit != u.ChapterID {
		return nil, fmt.Errorf("chapter %s: %w", explicit, docerr.ErrNotFound)
	}
	id, err := primitive.ObjectIDFromHex(u.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", docerr.ErrNotFound)
	}
	return &id, nil
}

package auditlog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

type fakeEvents struct {
	events []audit.Event
	total  int64
	got    audit.QueryFilter
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.got = filter
	return f.events, nil
}

func (f *fakeEvents) CountByFilter(context.Context, audit.QueryFilter) (int64, error) {
	return f.total, nil
}

func newTestHandler(events *fakeEvents) *auditlog.Handler {
	logger := zap.NewNop()
	return auditlog.NewHandler(events, errorsfeature.NewErrorLogger(logger), logger)
}

func TestServeList_AdminSeesAll(t *testing.T) {
	chapterID := primitive.NewObjectID()
	sessionID := primitive.NewObjectID()
	events := &fakeEvents{
		events: []audit.Event{{
			ID:        primitive.NewObjectID(),
			Timestamp: time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC),
			ChapterID: &chapterID,
			SessionID: &sessionID,
			Category:  audit.CategoryDocument,
			EventType: audit.EventMinutesSigned,
			ActorID:   "u1",
			Success:   true,
		}},
		total: 120,
	}
	h := newTestHandler(events)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/audit?page=2&page_size=50", testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeList(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if events.got.ChapterID != nil {
		t.Errorf("admin filter scoped to %v", events.got.ChapterID)
	}
	if events.got.Offset != 50 || events.got.Limit != 50 {
		t.Errorf("offset=%d limit=%d", events.got.Offset, events.got.Limit)
	}

	var body struct {
		Items []map[string]any `json:"items"`
		Page  struct {
			TotalPages int  `json:"total_pages"`
			HasNext    bool `json:"has_next"`
		} `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 1 || body.Items[0]["session_id"] != sessionID.Hex() || body.Items[0]["event_type"] != audit.EventMinutesSigned {
		t.Errorf("items = %+v", body.Items)
	}
	if body.Page.TotalPages != 3 || !body.Page.HasNext {
		t.Errorf("page = %+v", body.Page)
	}
}

func TestServeList_SecretaryScopedToChapter(t *testing.T) {
	chapterID := primitive.NewObjectID()
	events := &fakeEvents{}
	h := newTestHandler(events)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/audit?category=session&start_date=2026-10-01&end_date=2026-10-19", testutil.SecretaryUser(chapterID))
	rec := testutil.NewRecorder()
	h.ServeList(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if events.got.ChapterID == nil || *events.got.ChapterID != chapterID {
		t.Errorf("chapter filter = %v", events.got.ChapterID)
	}
	if events.got.Category != audit.CategorySession {
		t.Errorf("category = %q", events.got.Category)
	}
	if events.got.StartTime == nil || events.got.EndTime == nil || events.got.EndTime.Day() != 19 || events.got.EndTime.Hour() != 23 {
		t.Errorf("time range = %v .. %v", events.got.StartTime, events.got.EndTime)
	}
	rec.AssertContains(t, `"items":[]`)

	// Naming another chapter is indistinguishable from a missing one.
	other := primitive.NewObjectID().Hex()
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/audit?chapter_id="+other, testutil.SecretaryUser(chapterID))
	rec = testutil.NewRecorder()
	h.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeList_InvalidFilters(t *testing.T) {
	h := newTestHandler(&fakeEvents{})
	admin := testutil.AdminUser()

	for _, target := range []string{
		"/audit?category=auth",
		"/audit?category=session&event_type=minutes_signed",
		"/audit?session_id=nope",
		"/audit?start_date=19/10/2026",
		"/audit?start_date=2026-10-19&end_date=2026-10-01",
		"/audit?chapter_id=zzz",
	} {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, target, admin)
		rec := testutil.NewRecorder()
		h.ServeList(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", target, rec.Code)
		}
	}
}

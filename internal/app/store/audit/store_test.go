package audit_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

func TestStore_Log_SetsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	before := time.Now().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryDocument,
		EventType: audit.EventDocumentGenerated,
		ActorID:   "system",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	after := time.Now().Add(time.Second)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be set")
	}
	if events[0].Timestamp.Before(before) || events[0].Timestamp.After(after) {
		t.Errorf("expected timestamp to be set to current time, got %v", events[0].Timestamp)
	}
}

func TestStore_SessionHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1, s2 := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)
	for i, to := range []string{"in_progress", "held", "closed"} {
		err := store.Log(ctx, audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  audit.CategorySession,
			EventType: audit.EventSessionTransitioned,
			SessionID: &s1,
			Success:   true,
			Details:   map[string]string{"to": to},
		})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if err := store.Log(ctx, audit.Event{Category: audit.CategorySession, EventType: audit.EventSessionTransitioned, SessionID: &s2, Success: true}); err != nil {
		t.Fatal(err)
	}

	events, err := store.SessionHistory(ctx, s1, 10)
	if err != nil {
		t.Fatalf("SessionHistory failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Details["to"] != "closed" {
		t.Errorf("expected newest first, got %q", events[0].Details["to"])
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ch1, ch2 := primitive.NewObjectID(), primitive.NewObjectID()
	logs := []audit.Event{
		{ChapterID: &ch1, Category: audit.CategoryDocument, EventType: audit.EventMinutesSigned, Success: true},
		{ChapterID: &ch1, Category: audit.CategoryDocument, EventType: audit.EventSignFailed, FailureReason: "conflict"},
		{ChapterID: &ch1, Category: audit.CategoryTemplate, EventType: audit.EventTemplateSaved, Success: true},
		{ChapterID: &ch2, Category: audit.CategoryDocument, EventType: audit.EventMinutesSigned, Success: true},
	}
	for _, e := range logs {
		if err := store.Log(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int64
	}{
		{"chapter", audit.QueryFilter{ChapterID: &ch1}, 3},
		{"chapter and category", audit.QueryFilter{ChapterID: &ch1, Category: audit.CategoryDocument}, 2},
		{"event type", audit.QueryFilter{EventType: audit.EventMinutesSigned}, 2},
		{"nothing", audit.QueryFilter{Category: audit.CategorySession}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := store.CountByFilter(ctx, tc.filter)
			if err != nil {
				t.Fatalf("CountByFilter failed: %v", err)
			}
			if n != tc.want {
				t.Errorf("count = %d, want %d", n, tc.want)
			}
			tc.filter.Limit = 1
			got, err := store.Query(ctx, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if tc.want > 0 && len(got) != 1 {
				t.Errorf("limit not applied: %d rows", len(got))
			}
		})
	}
}

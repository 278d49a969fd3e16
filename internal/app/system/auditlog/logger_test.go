package auditlog_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.DocumentGenerated(ctx, auditlog.System, models.Document{})
	logger.SignFailed(ctx, auditlog.System, primitive.NewObjectID(), primitive.NewObjectID(), errors.New("x"))
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Documents: "off", Sessions: "log"})
	logger.DocumentGenerated(ctx, auditlog.System, models.Document{ID: primitive.NewObjectID(), ChapterID: primitive.NewObjectID()})
	logger.SessionTransitioned(ctx, auditlog.System, models.Session{ID: primitive.NewObjectID(), State: models.StateHeld}, models.StateInProgress)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no stored events, got %d", len(events))
	}
}

func TestLogger_MinutesSigned_Stored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Documents: "db"})
	sessionID := primitive.NewObjectID()
	doc := models.Document{ID: primitive.NewObjectID(), ChapterID: primitive.NewObjectID(), Type: models.DocSignedMinutes}
	sig := models.Signature{SessionID: sessionID, Hash: "abc", SignerName: "VM"}

	req := httptest.NewRequest("POST", "/sessions/x/sign", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	logger.MinutesSigned(ctx, auditlog.Actor{ID: "u1", R: req}, doc, sig)

	events, err := store.SessionHistory(ctx, sessionID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventMinutesSigned || e.ActorID != "u1" || e.IP != "10.0.0.1" {
		t.Errorf("event = %+v", e)
	}
	if e.Details["hash"] != "abc" || e.DocumentID == nil || *e.DocumentID != doc.ID {
		t.Errorf("event details = %+v", e)
	}
}

func TestLogger_SystemActor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{})
	s := models.Session{ID: primitive.NewObjectID(), ChapterID: primitive.NewObjectID(), State: models.StateHeld}
	logger.SessionTransitioned(ctx, auditlog.System, s, models.StateInProgress)
	logger.AttendanceCreated(ctx, auditlog.Actor{}, s, 12)

	events, _ := store.SessionHistory(ctx, s.ID, 10)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.ActorID != auditlog.SystemActor {
			t.Errorf("actor = %q, want system", e.ActorID)
		}
	}
}

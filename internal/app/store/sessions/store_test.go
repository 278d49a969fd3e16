package sessions_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/store/sessions"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

var day = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func newSession(chapterID primitive.ObjectID, date time.Time) models.Session {
	return models.Session{ChapterID: chapterID, Type: models.SessionOrdinary, Subtype: "regular", Date: date, StartTime: "20:00"}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	chapterID := primitive.NewObjectID()
	first, err := store.Create(ctx, newSession(chapterID, day))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.Number != 1 || first.State != models.StateScheduled {
		t.Errorf("first = %+v", first)
	}
	second, err := store.Create(ctx, newSession(chapterID, day.AddDate(0, 0, 7)))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if second.Number != 2 {
		t.Errorf("second number = %d, want 2", second.Number)
	}

	bad := newSession(chapterID, day)
	bad.Subtype = "initiation"
	if _, err := store.Create(ctx, bad); !errors.Is(err, sessions.ErrInvalidSubtype) {
		t.Errorf("invalid subtype err = %v", err)
	}
}

func TestStore_Transition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s, err := store.Create(ctx, newSession(primitive.NewObjectID(), day))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Transition(ctx, s.ID, models.StateHeld, false); !errors.Is(err, docerr.ErrInvalidState) {
		t.Fatalf("scheduled -> held err = %v", err)
	}
	got, _ := store.GetByID(ctx, s.ID)
	if got.State != models.StateScheduled {
		t.Fatalf("rejected transition changed state to %q", got.State)
	}

	for _, to := range []string{models.StateInProgress, models.StateHeld, models.StateClosed} {
		if s, err = store.Transition(ctx, s.ID, to, false); err != nil || s.State != to {
			t.Fatalf("-> %s: %v (state %q)", to, err, s.State)
		}
	}
	if _, err := store.Transition(ctx, s.ID, models.StateHeld, false); !errors.Is(err, docerr.ErrInvalidState) {
		t.Errorf("unprivileged reopen err = %v", err)
	}
	if s, err = store.Transition(ctx, s.ID, models.StateHeld, true); err != nil || s.State != models.StateHeld {
		t.Errorf("privileged reopen: %v", err)
	}

	if _, err := store.Transition(ctx, primitive.NewObjectID(), models.StateHeld, false); !errors.Is(err, docerr.ErrNotFound) {
		t.Errorf("missing session err = %v", err)
	}
}

func TestStore_SigningLease(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s, err := store.Create(ctx, newSession(primitive.NewObjectID(), day))
	if err != nil {
		t.Fatal(err)
	}
	ok, err := store.TryLockSigning(ctx, s.ID, "a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock = %v, %v", ok, err)
	}
	if ok, _ := store.TryLockSigning(ctx, s.ID, "b", time.Minute); ok {
		t.Error("second owner took a held lease")
	}
	if ok, _ := store.TryLockSigning(ctx, s.ID, "a", time.Minute); !ok {
		t.Error("owner could not renew its lease")
	}
	if err := store.UnlockSigning(ctx, s.ID, "b"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.TryLockSigning(ctx, s.ID, "b", time.Minute); ok {
		t.Error("non-owner unlock released the lease")
	}
	if err := store.UnlockSigning(ctx, s.ID, "a"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.TryLockSigning(ctx, s.ID, "b", -time.Second); !ok {
		t.Error("released lease not available")
	}
	// b's lease is already expired.
	if ok, _ := store.TryLockSigning(ctx, s.ID, "c", time.Minute); !ok {
		t.Error("expired lease not available")
	}
}

func TestStore_PreviousCompleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	chapterID := primitive.NewObjectID()

	advance := func(s models.Session, states ...string) models.Session {
		for _, to := range states {
			var err error
			if s, err = store.Transition(ctx, s.ID, to, false); err != nil {
				t.Fatal(err)
			}
		}
		return s
	}

	old, _ := store.Create(ctx, newSession(chapterID, day.AddDate(0, 0, -14)))
	advance(old, models.StateInProgress, models.StateHeld, models.StateClosed)
	canceled, _ := store.Create(ctx, newSession(chapterID, day.AddDate(0, 0, -7)))
	advance(canceled, models.StateCanceled)
	cur, _ := store.Create(ctx, newSession(chapterID, day))

	prev, err := store.PreviousCompleted(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	if prev == nil || prev.ID != old.ID {
		t.Errorf("previous = %+v, want %s", prev, old.ID.Hex())
	}

	first, _ := store.Create(ctx, newSession(primitive.NewObjectID(), day))
	if prev, _ := store.PreviousCompleted(ctx, first); prev != nil {
		t.Errorf("first session has previous %+v", prev)
	}
}

func TestStore_DueForHold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	chapterID := primitive.NewObjectID()

	noEnd, _ := store.Create(ctx, newSession(chapterID, day))
	if _, err := store.Transition(ctx, noEnd.ID, models.StateInProgress, false); err != nil {
		t.Fatal(err)
	}
	withEnd := newSession(chapterID, day)
	withEnd.EndTime = "23:30"
	withEnd, _ = store.Create(ctx, withEnd)
	if _, err := store.Transition(ctx, withEnd.ID, models.StateInProgress, false); err != nil {
		t.Fatal(err)
	}

	// 20:00 + the default two hours has passed at 22:30; 23:30 has not.
	due, err := store.DueForHold(ctx, day.Add(22*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != noEnd.ID {
		t.Errorf("due = %+v", due)
	}
}

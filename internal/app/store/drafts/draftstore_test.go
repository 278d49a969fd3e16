package draftstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	draftstore "github.com/dalemusser/chapterhub/internal/app/store/drafts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newStore(t *testing.T) *draftstore.Store {
	t.Helper()
	objects, err := artifacts.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return draftstore.New(objects)
}

func TestStore_GetMissing(t *testing.T) {
	s := newStore(t)
	_, ok, err := s.Get(context.Background(), primitive.NewObjectID())
	if err != nil || ok {
		t.Fatalf("Get missing = %v, %v", ok, err)
	}
}

func TestStore_SaveOverwritesWholeObject(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sess := models.Session{ID: primitive.NewObjectID(), State: models.StateHeld}

	_, err := s.Save(ctx, sess, models.Draft{
		Text:   "first",
		Styles: map[string]any{"content.alignment": "left"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Save(ctx, sess, models.Draft{Text: "second"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	d, ok, err := s.Get(ctx, sess.ID)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if d.Text != "second" {
		t.Errorf("Text = %q, want second", d.Text)
	}
	if len(d.Styles) != 0 {
		t.Errorf("styles from the first write should be gone, got %v", d.Styles)
	}
}

func TestStore_ClosedSessionIsHistorical(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sess := models.Session{ID: primitive.NewObjectID(), State: models.StateHeld}
	if _, err := s.Save(ctx, sess, models.Draft{Text: "kept"}); err != nil {
		t.Fatal(err)
	}

	sess.State = models.StateClosed
	if _, err := s.Save(ctx, sess, models.Draft{Text: "new"}); !errors.Is(err, draftstore.ErrHistorical) {
		t.Fatalf("Save on closed session err = %v", err)
	}
	d, ok, err := s.Get(ctx, sess.ID)
	if err != nil || !ok || d.Text != "kept" {
		t.Fatalf("historical draft not readable: %+v %v %v", d, ok, err)
	}
}

func TestStore_ConcurrentWritesLastWriterWins(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sess := models.Session{ID: primitive.NewObjectID(), State: models.StateInProgress}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Save(ctx, sess, models.Draft{Text: fmt.Sprintf("v%d", i)}); err != nil {
				t.Errorf("Save: %v", err)
			}
		}(i)
	}
	wg.Wait()

	d, ok, err := s.Get(ctx, sess.ID)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if len(d.Text) < 2 || d.Text[0] != 'v' {
		t.Errorf("draft corrupted: %q", d.Text)
	}
	if n := s.LockEntries(); n != 0 {
		t.Errorf("lock entries after writes = %d, want 0", n)
	}
}

func TestStore_LocksReleasedPerSession(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for i := 0; i < 50; i++ {
		sess := models.Session{ID: primitive.NewObjectID(), State: models.StateHeld}
		if _, err := s.Save(ctx, sess, models.Draft{Text: "ata"}); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, sess); err != nil {
			t.Fatal(err)
		}
	}
	if n := s.LockEntries(); n != 0 {
		t.Errorf("lock entries = %d, want 0", n)
	}
}

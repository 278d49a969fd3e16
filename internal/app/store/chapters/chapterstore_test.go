package chapterstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	chapterstore "github.com/dalemusser/chapterhub/internal/app/store/chapters"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chapterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	body, err := store.CreateBody(ctx, models.UmbrellaBody{Name: "Grande Oriente"})
	if err != nil {
		t.Fatal(err)
	}
	ch, err := store.Create(ctx, models.Chapter{BodyID: body.ID, Name: "Estrela do Norte", Number: "12"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ch.Status != "active" || ch.NameCI == "" {
		t.Errorf("defaults not applied: %+v", ch)
	}
	if _, err := store.Create(ctx, models.Chapter{BodyID: body.ID, Name: "Outra", Number: "12"}); !errors.Is(err, chapterstore.ErrDuplicateChapter) {
		t.Errorf("duplicate number err = %v", err)
	}

	got, err := store.GetByID(ctx, ch.ID)
	if err != nil || got.Name != ch.Name {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, docerr.ErrNotFound) {
		t.Errorf("missing chapter err = %v", err)
	}
	if b, err := store.GetBody(ctx, body.ID); err != nil || b.Name != "Grande Oriente" {
		t.Errorf("GetBody = %+v, %v", b, err)
	}
}

func TestStore_UpdateDocumentSettingsWrapsLegacy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chapterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ch, err := store.Create(ctx, models.Chapter{BodyID: primitive.NewObjectID(), Name: "Luz", Number: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateDocumentSettings(ctx, ch.ID, map[string]any{"font_family": "Georgia"}); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetByID(ctx, ch.ID)
	if _, ok := got.DocumentSettings["balaustre"]; !ok {
		t.Errorf("legacy blob stored unwrapped: %v", got.DocumentSettings)
	}
	if err := store.UpdateDocumentSettings(ctx, primitive.NewObjectID(), map[string]any{}); !errors.Is(err, docerr.ErrNotFound) {
		t.Errorf("missing chapter err = %v", err)
	}
}

package documentstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	documentstore "github.com/dalemusser/chapterhub/internal/app/store/documents"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

func signed(chapterID, sessionID primitive.ObjectID, hash string) (models.Document, models.Signature) {
	sid := sessionID
	doc := models.Document{
		ChapterID: chapterID, SessionID: &sid, Type: models.DocSignedMinutes,
		Title: "Balaústre", StorageKey: "b/c/x.pdf", FileName: "balaustre-1.pdf",
	}
	sig := models.Signature{
		SessionID: sessionID, Hash: hash, Algorithm: "sha256",
		Canonical: []byte("{}"), SignerName: "VM", SignedAt: time.Now().UTC(),
	}
	return doc, sig
}

func hashOf(c byte) string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

func setup(t *testing.T) (*documentstore.Store, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := documentstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	return store, ctx
}

func TestStore_RecordSigned(t *testing.T) {
	store, ctx := setup(t)
	chapterID, sessionID := primitive.NewObjectID(), primitive.NewObjectID()

	doc, sig := signed(chapterID, sessionID, hashOf('a'))
	if err := store.RecordSigned(ctx, doc, sig); err != nil {
		t.Fatalf("RecordSigned: %v", err)
	}
	got, err := store.SignedMinutes(ctx, sessionID)
	if err != nil || got == nil {
		t.Fatalf("SignedMinutes = %v, %v", got, err)
	}
	s, err := store.SignatureByHash(ctx, hashOf('a'))
	if err != nil {
		t.Fatal(err)
	}
	if s.DocumentID != got.ID {
		t.Errorf("signature points at %s, want %s", s.DocumentID.Hex(), got.ID.Hex())
	}

	doc2, sig2 := signed(chapterID, sessionID, hashOf('b'))
	if err := store.RecordSigned(ctx, doc2, sig2); !errors.Is(err, docerr.ErrAlreadySigned) {
		t.Errorf("second signing err = %v, want ErrAlreadySigned", err)
	}

	doc3, sig3 := signed(chapterID, primitive.NewObjectID(), hashOf('a'))
	if err := store.RecordSigned(ctx, doc3, sig3); !errors.Is(err, docerr.ErrHashExists) {
		t.Errorf("hash clash err = %v, want ErrHashExists", err)
	}
	// The losing document must not survive its signature.
	if d, _ := store.SignedMinutes(ctx, *doc3.SessionID); d != nil {
		t.Errorf("orphan signed minutes left behind: %+v", d)
	}
}

func TestStore_RecordSigned_ConcurrentOneWinner(t *testing.T) {
	store, ctx := setup(t)
	chapterID, sessionID := primitive.NewObjectID(), primitive.NewObjectID()

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, sig := signed(chapterID, sessionID, hashOf(byte('a'+i)))
			errs[i] = store.RecordSigned(ctx, doc, sig)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, docerr.ErrAlreadySigned), errors.Is(err, docerr.ErrConflict):
		default:
			t.Errorf("unexpected err %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want 1", wins)
	}
}

func TestStore_DocumentsAndLookups(t *testing.T) {
	store, ctx := setup(t)
	chapterID, sessionID := primitive.NewObjectID(), primitive.NewObjectID()
	sid := sessionID

	notice := models.Document{ChapterID: chapterID, SessionID: &sid, Type: models.DocNotice, Title: "Prancha", StorageKey: "k1"}
	if err := store.RecordDocument(ctx, notice); err != nil {
		t.Fatal(err)
	}
	// Notices may be regenerated.
	if err := store.RecordDocument(ctx, notice); err != nil {
		t.Fatalf("regenerated notice: %v", err)
	}
	ok, err := store.HasDocument(ctx, sessionID, models.DocNotice)
	if err != nil || !ok {
		t.Errorf("HasDocument = %v, %v", ok, err)
	}
	if ok, _ := store.HasDocument(ctx, sessionID, models.DocSignedMinutes); ok {
		t.Error("HasDocument reported missing signed minutes")
	}
	docs, err := store.ListByChapter(ctx, chapterID, models.DocNotice, 0)
	if err != nil || len(docs) != 2 {
		t.Errorf("ListByChapter = %d, %v", len(docs), err)
	}
	if _, err := store.Document(ctx, primitive.NewObjectID()); !errors.Is(err, docerr.ErrNotFound) {
		t.Errorf("missing document err = %v", err)
	}
	if _, err := store.SignatureByHash(ctx, hashOf('z')); !errors.Is(err, docerr.ErrNotFound) {
		t.Errorf("missing signature err = %v", err)
	}
}

package attendancestore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	attendancestore "github.com/dalemusser/chapterhub/internal/app/store/attendance"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

func TestStore_BulkCreateIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := attendancestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}
	sessionID := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	n, err := store.BulkCreate(ctx, sessionID, []primitive.ObjectID{a, b, a})
	if err != nil || n != 2 {
		t.Fatalf("BulkCreate = %d, %v; want 2", n, err)
	}
	n, err = store.BulkCreate(ctx, sessionID, []primitive.ObjectID{a, b})
	if err != nil || n != 0 {
		t.Fatalf("second BulkCreate = %d, %v; want 0", n, err)
	}

	rows, err := store.ForSession(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.Status != models.AttendancePending || r.Method != models.MethodBulk {
			t.Errorf("row = %+v", r)
		}
	}
}

func TestStore_MarkAndVisitors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := attendancestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}
	sessionID, member, visitor := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	if _, err := store.BulkCreate(ctx, sessionID, []primitive.ObjectID{member}); err != nil {
		t.Fatal(err)
	}
	if err := store.Mark(ctx, sessionID, member, models.AttendancePresent, models.MethodCheckIn); err != nil {
		t.Fatal(err)
	}
	if err := store.Mark(ctx, sessionID, member, "late", models.MethodManual); !errors.Is(err, attendancestore.ErrUnknownStatus) {
		t.Errorf("unknown status err = %v", err)
	}
	if err := store.AddVisitor(ctx, sessionID, visitor); err != nil {
		t.Fatal(err)
	}
	if err := store.AddVisitor(ctx, sessionID, visitor); err != nil {
		t.Errorf("repeated visitor: %v", err)
	}

	rows, _ := store.ForSession(ctx, sessionID)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.Status != models.AttendancePresent || r.CheckedAt == nil {
			t.Errorf("row = %+v", r)
		}
	}
}

package docsource_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	attendancestore "github.com/dalemusser/chapterhub/internal/app/store/attendance"
	chapterstore "github.com/dalemusser/chapterhub/internal/app/store/chapters"
	"github.com/dalemusser/chapterhub/internal/app/store/directory"
	"github.com/dalemusser/chapterhub/internal/app/store/docsource"
	ledgerstore "github.com/dalemusser/chapterhub/internal/app/store/ledger"
	memberstore "github.com/dalemusser/chapterhub/internal/app/store/members"
	officerstore "github.com/dalemusser/chapterhub/internal/app/store/officers"
	"github.com/dalemusser/chapterhub/internal/app/store/sessions"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

var _ strategies.Source = (*docsource.Source)(nil)

type fakeDirectory struct {
	entries map[string]directory.Entry
	err     error
}

func (f fakeDirectory) Lookup(_ context.Context, ids []string) (map[string]directory.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]directory.Entry{}
	for _, id := range ids {
		if e, ok := f.entries[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func TestOverlay(t *testing.T) {
	ms := []models.Member{
		{FullName: "Local A", Degree: "M", DirectoryID: "d1"},
		{FullName: "Local B", Degree: "M", DirectoryID: "d2"},
		{FullName: "Local C"},
	}
	got := docsource.Overlay(ms, map[string]directory.Entry{
		"d1": {ID: "d1", FullName: "Registry A", Degree: "MI"},
		"d2": {ID: "d2", FullName: "Registry B"},
		"":   {FullName: "never"},
	})
	if got[0].FullName != "Registry A" || got[0].Degree != "MI" {
		t.Errorf("d1 = %+v", got[0])
	}
	if got[1].FullName != "Registry B" || got[1].Degree != "M" {
		t.Errorf("blank registry degree replaced local: %+v", got[1])
	}
	if got[2].FullName != "Local C" {
		t.Errorf("unlinked member changed: %+v", got[2])
	}
	if ms[0].FullName != "Local A" {
		t.Error("Overlay mutated its input")
	}
}

func TestSource_ReadsStores(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := docsource.Stores{
		Chapters:   chapterstore.New(db),
		Members:    memberstore.New(db),
		Officers:   officerstore.New(db),
		Sessions:   sessions.New(db),
		Attendance: attendancestore.New(db),
		Ledger:     ledgerstore.New(db),
	}
	if err := st.Attendance.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}
	dir := fakeDirectory{entries: map[string]directory.Entry{"reg-1": {ID: "reg-1", FullName: "Nome Civil Completo"}}}
	src := docsource.New(st, dir, zap.NewNop())

	ch, err := st.Chapters.Create(ctx, models.Chapter{Name: "Estrela do Norte", Number: "7", BodyID: primitive.NewObjectID()})
	if err != nil {
		t.Fatal(err)
	}
	m, err := st.Members.Create(ctx, models.Member{ChapterID: ch.ID, FullName: "Apelido", DirectoryID: "reg-1", Status: "active"})
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	s, err := st.Sessions.Create(ctx, models.Session{ChapterID: ch.ID, Type: models.SessionOrdinary, Subtype: "regular", Date: day, StartTime: "20:00"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Attendance.BulkCreate(ctx, s.ID, []primitive.ObjectID{m.ID}); err != nil {
		t.Fatal(err)
	}

	if got, err := src.Chapter(ctx, ch.ID); err != nil || got.Name != ch.Name {
		t.Errorf("Chapter = %+v, %v", got, err)
	}
	got, err := src.Member(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FullName != "Nome Civil Completo" {
		t.Errorf("member name = %q, want registry name", got.FullName)
	}
	rows, err := src.Attendance(ctx, s.ID)
	if err != nil || len(rows) != 1 {
		t.Errorf("Attendance = %d, %v", len(rows), err)
	}

	broken := docsource.New(st, fakeDirectory{err: errors.New("down")}, zap.NewNop())
	ms, err := broken.Members(ctx, []primitive.ObjectID{m.ID})
	if err != nil || len(ms) != 1 || ms[0].FullName != "Apelido" {
		t.Errorf("directory outage: %+v, %v", ms, err)
	}
}

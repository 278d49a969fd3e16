package tasks_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	"github.com/dalemusser/chapterhub/internal/app/system/tasks"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

var now = time.Date(2026, time.October, 19, 23, 0, 0, 0, time.UTC)

type fakeSessions struct {
	mu      sync.Mutex
	rows    []models.Session
	failOn  primitive.ObjectID
	raceOn  primitive.ObjectID
	listErr error
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeSessions) DueForHold(_ context.Context, at time.Time) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.rows {
		if s.State == models.StateInProgress && s.EffectiveEnd().Before(at) {
			out = append(out, s)
		}
	}
	return out, f.listErr
}

func (f *fakeSessions) Transition(_ context.Context, id primitive.ObjectID, to string, _ bool) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch id {
	case f.failOn:
		return models.Session{}, errors.New("db down")
	case f.raceOn:
		return models.Session{}, fmt.Errorf("%w: changed", docerr.ErrInvalidState)
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].State = to
			return f.rows[i], nil
		}
	}
	return models.Session{}, docerr.ErrNotFound
}

func (f *fakeSessions) InState(_ context.Context, state string, from, to time.Time) ([]models.Session, error) {
	f.gotFrom, f.gotTo = from, to
	var out []models.Session
	for _, s := range f.rows {
		if s.State == state && !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, f.listErr
}

func (f *fakeSessions) state(id primitive.ObjectID) string {
	for _, s := range f.rows {
		if s.ID == id {
			return s.State
		}
	}
	return ""
}

func session(state string, date time.Time, start, end string) models.Session {
	return models.Session{ID: primitive.NewObjectID(), ChapterID: primitive.NewObjectID(), State: state, Date: date, StartTime: start, EndTime: end}
}

func TestSessionAutoHoldJob(t *testing.T) {
	day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	over := session(models.StateInProgress, day, "20:00", "")
	running := session(models.StateInProgress, day, "20:00", "23:30")
	failing := session(models.StateInProgress, day, "19:00", "")
	raced := session(models.StateInProgress, day, "18:00", "")
	scheduled := session(models.StateScheduled, day, "08:00", "")
	st := &fakeSessions{rows: []models.Session{over, running, failing, raced, scheduled}, failOn: failing.ID, raceOn: raced.ID}

	job := tasks.SessionAutoHoldJob(st, nil, zap.NewNop(), time.Minute, func() time.Time { return now })
	if job.Name != "session-auto-hold" || job.Interval != time.Minute {
		t.Errorf("job = %+v", job)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := st.state(over.ID); got != models.StateHeld {
		t.Errorf("finished session state = %q, want held", got)
	}
	if got := st.state(running.ID); got != models.StateInProgress {
		t.Errorf("running session state = %q", got)
	}
	if got := st.state(scheduled.ID); got != models.StateScheduled {
		t.Errorf("scheduled session state = %q", got)
	}

	st.listErr = errors.New("query failed")
	if err := job.Run(context.Background()); err == nil {
		t.Error("list failure not reported")
	}
}

type fakeNotices struct {
	mu     sync.Mutex
	have   map[primitive.ObjectID]bool
	failOn primitive.ObjectID
	made   []primitive.ObjectID
}

func (f *fakeNotices) HasNotice(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.have[id], nil
}

func (f *fakeNotices) GenerateNotice(_ context.Context, req generator.NoticeRequest) (generator.Generated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.SessionID == f.failOn {
		return generator.Generated{}, fmt.Errorf("%w: chrome died", docerr.ErrRender)
	}
	f.made = append(f.made, req.SessionID)
	f.have[req.SessionID] = true
	sid := req.SessionID
	return generator.Generated{Document: models.Document{ID: primitive.NewObjectID(), ChapterID: req.ChapterID, SessionID: &sid, Type: models.DocNotice}}, nil
}

func TestNoticeAutogenJob(t *testing.T) {
	today := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	soon := session(models.StateScheduled, today.AddDate(0, 0, 3), "20:00", "")
	already := session(models.StateScheduled, today.AddDate(0, 0, 1), "20:00", "")
	broken := session(models.StateScheduled, today.AddDate(0, 0, 2), "20:00", "")
	far := session(models.StateScheduled, today.AddDate(0, 0, 30), "20:00", "")
	held := session(models.StateHeld, today, "20:00", "")
	st := &fakeSessions{rows: []models.Session{soon, already, broken, far, held}}
	gen := &fakeNotices{have: map[primitive.ObjectID]bool{already.ID: true}, failOn: broken.ID}

	job := tasks.NoticeAutogenJob(st, gen, nil, zap.NewNop(), time.Hour, 7, func() time.Time { return now })
	if !job.RunAtStart {
		t.Error("notice autogen should run at start")
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(gen.made) != 1 || gen.made[0] != soon.ID {
		t.Errorf("generated for %v, want only %s", gen.made, soon.ID.Hex())
	}
	if !st.gotFrom.Equal(today) || !st.gotTo.Equal(today.AddDate(0, 0, 7)) {
		t.Errorf("window = [%v, %v]", st.gotFrom, st.gotTo)
	}

	// A second run finds nothing new.
	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(gen.made) != 1 {
		t.Errorf("second run generated again: %v", gen.made)
	}
}

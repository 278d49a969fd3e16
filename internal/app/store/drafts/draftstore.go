// internal/app/store/drafts/draftstore.go
package draftstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrHistorical is returned when writing the draft of a closed or canceled
// session. Such drafts stay readable.
var ErrHistorical = errors.New("draft is historical; session no longer accepts edits")

// Store persists minutes drafts as JSON objects at
// sessions/{session_id}/minutes_draft.json. Writes replace the whole object;
// concurrent writers for one session are serialized and the last one wins.
type Store struct {
	objects artifacts.Store

	mu    sync.Mutex
	locks map[primitive.ObjectID]*sessionLock
}

// sessionLock serializes writers of one session. refs counts the writers
// holding or waiting for it; the entry is dropped when it reaches zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// New wraps the object store.
func New(objects artifacts.Store) *Store {
	return &Store{objects: objects, locks: make(map[primitive.ObjectID]*sessionLock)}
}

// lock takes the session's write lock and returns its release.
func (s *Store) lock(id primitive.ObjectID) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Get returns the draft of a session. ok is false when none exists.
func (s *Store) Get(ctx context.Context, sessionID primitive.ObjectID) (models.Draft, bool, error) {
	raw, err := s.objects.Get(ctx, artifacts.DraftKey(sessionID.Hex()))
	if errors.Is(err, artifacts.ErrNotFound) {
		return models.Draft{}, false, nil
	}
	if err != nil {
		return models.Draft{}, false, err
	}
	var d models.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Draft{}, false, err
	}
	d.SessionID = sessionID
	return d, true, nil
}

// Save overwrites the draft of a session. The session state decides whether
// the draft is still editable.
func (s *Store) Save(ctx context.Context, sess models.Session, d models.Draft) (models.Draft, error) {
	if sess.State == models.StateClosed || sess.State == models.StateCanceled {
		return models.Draft{}, ErrHistorical
	}
	defer s.lock(sess.ID)()

	d.SessionID = sess.ID
	d.UpdatedAt = time.Now().UTC()
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return models.Draft{}, err
	}
	if err := s.objects.Put(ctx, artifacts.DraftKey(sess.ID.Hex()), bytes.NewReader(raw), "application/json"); err != nil {
		return models.Draft{}, err
	}
	return d, nil
}

// Delete removes the draft of an editable session.
func (s *Store) Delete(ctx context.Context, sess models.Session) error {
	if sess.State == models.StateClosed || sess.State == models.StateCanceled {
		return ErrHistorical
	}
	defer s.lock(sess.ID)()
	return s.objects.Delete(ctx, artifacts.DraftKey(sess.ID.Hex()))
}

// Package docfake provides an in-memory entity source and a canned chapter
// scenario for document pipeline tests.
package docfake

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Source is an in-memory implementation of strategies.Source.
type Source struct {
	mu sync.RWMutex

	Chapters     map[primitive.ObjectID]models.Chapter
	Bodies       map[primitive.ObjectID]models.UmbrellaBody
	Sessions     map[primitive.ObjectID]models.Session
	MemberRows   map[primitive.ObjectID]models.Member
	VisitorRows  map[primitive.ObjectID]models.Visitor
	Officers     []models.OfficerAssignment
	Attendances  []models.Attendance
	Transactions []models.Transaction
	NoticeRows   []models.Notice
}

// New returns an empty Source.
func New() *Source {
	return &Source{
		Chapters:    map[primitive.ObjectID]models.Chapter{},
		Bodies:      map[primitive.ObjectID]models.UmbrellaBody{},
		Sessions:    map[primitive.ObjectID]models.Session{},
		MemberRows:  map[primitive.ObjectID]models.Member{},
		VisitorRows: map[primitive.ObjectID]models.Visitor{},
	}
}

func notFound(what string, id primitive.ObjectID) error {
	return fmt.Errorf("%s %s: %w", what, id.Hex(), docerr.ErrNotFound)
}

func (s *Source) Chapter(_ context.Context, id primitive.ObjectID) (models.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.Chapters[id]
	if !ok {
		return models.Chapter{}, notFound("chapter", id)
	}
	return c, nil
}

func (s *Source) Body(_ context.Context, id primitive.ObjectID) (models.UmbrellaBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.Bodies[id]
	if !ok {
		return models.UmbrellaBody{}, notFound("body", id)
	}
	return b, nil
}

func (s *Source) Session(_ context.Context, id primitive.ObjectID) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.Sessions[id]
	if !ok {
		return models.Session{}, notFound("session", id)
	}
	return v, nil
}

// PutSession replaces a session row (state changes in tests).
func (s *Source) PutSession(v models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sessions[v.ID] = v
}

func (s *Source) Member(_ context.Context, id primitive.ObjectID) (models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.MemberRows[id]
	if !ok {
		return models.Member{}, notFound("member", id)
	}
	return m, nil
}

func (s *Source) Members(_ context.Context, ids []primitive.ObjectID) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Member
	for _, id := range ids {
		if m, ok := s.MemberRows[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Source) Visitors(_ context.Context, ids []primitive.ObjectID) ([]models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Visitor
	for _, id := range ids {
		if v, ok := s.VisitorRows[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Source) OfficerHistory(_ context.Context, chapterID primitive.ObjectID) ([]models.OfficerAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.OfficerAssignment
	for _, a := range s.Officers {
		if a.ChapterID == chapterID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Source) OfficeHolders(_ context.Context, chapterID primitive.ObjectID) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Member
	for _, m := range s.MemberRows {
		if m.ChapterID == chapterID && m.Office != "" && m.Status != "inactive" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Source) Attendance(_ context.Context, sessionID primitive.ObjectID) ([]models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Attendance
	for _, a := range s.Attendances {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Source) PreviousCompleted(_ context.Context, cur models.Session) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var prev []models.Session
	for _, v := range s.Sessions {
		if v.ChapterID != cur.ChapterID || v.ID == cur.ID {
			continue
		}
		if v.State != models.StateHeld && v.State != models.StateClosed {
			continue
		}
		if v.StartsAt().Before(cur.StartsAt()) {
			prev = append(prev, v)
		}
	}
	if len(prev) == 0 {
		return nil, nil
	}
	sort.Slice(prev, func(i, j int) bool { return prev[i].StartsAt().After(prev[j].StartsAt()) })
	return &prev[0], nil
}

func (s *Source) CreditsOn(_ context.Context, chapterID primitive.ObjectID, day time.Time) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	y, m, d := day.Date()
	var out []models.Transaction
	for _, tx := range s.Transactions {
		ty, tm, td := tx.Date.Date()
		if tx.ChapterID == chapterID && tx.Kind == models.TxCredit && ty == y && tm == m && td == d {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Source) NoticesBetween(_ context.Context, chapterID primitive.ObjectID, from, to time.Time) ([]models.Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Notice
	for _, n := range s.NoticeRows {
		if n.ChapterID == chapterID && n.PublishedAt.After(from) && !n.PublishedAt.After(to) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.Before(out[j].PublishedAt) })
	return out, nil
}

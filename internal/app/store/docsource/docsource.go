// internal/app/store/docsource/docsource.go
//
// Package docsource is the Mongo-backed read side of document generation.
// It adapts the per-collection stores to strategies.Source and, when a
// directory is configured, replaces member names and degrees with the
// registry's authoritative values.
package docsource

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	attendancestore "github.com/dalemusser/chapterhub/internal/app/store/attendance"
	chapterstore "github.com/dalemusser/chapterhub/internal/app/store/chapters"
	"github.com/dalemusser/chapterhub/internal/app/store/directory"
	ledgerstore "github.com/dalemusser/chapterhub/internal/app/store/ledger"
	memberstore "github.com/dalemusser/chapterhub/internal/app/store/members"
	officerstore "github.com/dalemusser/chapterhub/internal/app/store/officers"
	"github.com/dalemusser/chapterhub/internal/app/store/sessions"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Directory resolves linked members to registry entries.
type Directory interface {
	Lookup(ctx context.Context, ids []string) (map[string]directory.Entry, error)
}

// Stores are the collections the source reads.
type Stores struct {
	Chapters   *chapterstore.Store
	Members    *memberstore.Store
	Officers   *officerstore.Store
	Sessions   *sessions.Store
	Attendance *attendancestore.Store
	Ledger     *ledgerstore.Store
}

// Source implements strategies.Source.
type Source struct {
	st  Stores
	dir Directory
	log *zap.Logger
}

// New builds a Source. dir may be nil.
func New(st Stores, dir Directory, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{st: st, dir: dir, log: log}
}

func (s *Source) Chapter(ctx context.Context, id primitive.ObjectID) (models.Chapter, error) {
	return s.st.Chapters.GetByID(ctx, id)
}

func (s *Source) Body(ctx context.Context, id primitive.ObjectID) (models.UmbrellaBody, error) {
	return s.st.Chapters.GetBody(ctx, id)
}

func (s *Source) Session(ctx context.Context, id primitive.ObjectID) (models.Session, error) {
	return s.st.Sessions.GetByID(ctx, id)
}

func (s *Source) Member(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	m, err := s.st.Members.GetByID(ctx, id)
	if err != nil {
		return models.Member{}, err
	}
	out := s.enrich(ctx, []models.Member{m})
	return out[0], nil
}

func (s *Source) Members(ctx context.Context, ids []primitive.ObjectID) ([]models.Member, error) {
	ms, err := s.st.Members.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, ms), nil
}

func (s *Source) Visitors(ctx context.Context, ids []primitive.ObjectID) ([]models.Visitor, error) {
	return s.st.Members.VisitorsByIDs(ctx, ids)
}

func (s *Source) OfficerHistory(ctx context.Context, chapterID primitive.ObjectID) ([]models.OfficerAssignment, error) {
	return s.st.Officers.History(ctx, chapterID)
}

func (s *Source) OfficeHolders(ctx context.Context, chapterID primitive.ObjectID) ([]models.Member, error) {
	ms, err := s.st.Members.OfficeHolders(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, ms), nil
}

func (s *Source) Attendance(ctx context.Context, sessionID primitive.ObjectID) ([]models.Attendance, error) {
	return s.st.Attendance.ForSession(ctx, sessionID)
}

func (s *Source) PreviousCompleted(ctx context.Context, cur models.Session) (*models.Session, error) {
	return s.st.Sessions.PreviousCompleted(ctx, cur)
}

func (s *Source) CreditsOn(ctx context.Context, chapterID primitive.ObjectID, day time.Time) ([]models.Transaction, error) {
	return s.st.Ledger.CreditsOn(ctx, chapterID, day)
}

func (s *Source) NoticesBetween(ctx context.Context, chapterID primitive.ObjectID, from, to time.Time) ([]models.Notice, error) {
	return s.st.Ledger.NoticesBetween(ctx, chapterID, from, to)
}

// enrich overlays directory names. A directory failure keeps the local
// values; documents are still produced.
func (s *Source) enrich(ctx context.Context, ms []models.Member) []models.Member {
	if s.dir == nil {
		return ms
	}
	var ids []string
	for _, m := range ms {
		if m.DirectoryID != "" {
			ids = append(ids, m.DirectoryID)
		}
	}
	if len(ids) == 0 {
		return ms
	}
	entries, err := s.dir.Lookup(ctx, ids)
	if err != nil {
		s.log.Warn("directory lookup failed; using local member names", zap.Error(err))
		return ms
	}
	return Overlay(ms, entries)
}

// Overlay returns ms with names and degrees replaced by matching entries.
// Blank entry fields keep the local value.
func Overlay(ms []models.Member, entries map[string]directory.Entry) []models.Member {
	out := make([]models.Member, len(ms))
	for i, m := range ms {
		if e, ok := entries[m.DirectoryID]; ok && m.DirectoryID != "" {
			if e.FullName != "" {
				m.FullName = e.FullName
			}
			if e.Degree != "" {
				m.Degree = e.Degree
			}
		}
		out[i] = m
	}
	return out
}

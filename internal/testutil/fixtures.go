package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateBody creates an umbrella body.
func (f *Fixtures) CreateBody(ctx context.Context, name string) models.UmbrellaBody {
	f.t.Helper()

	b := models.UmbrellaBody{ID: primitive.NewObjectID(), Name: name, Level: "federal"}
	if _, err := f.db.Collection("umbrella_bodies").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test body: %v", err)
	}
	return b
}

// CreateChapter creates an active chapter under a new umbrella body.
func (f *Fixtures) CreateChapter(ctx context.Context, name, number string) models.Chapter {
	f.t.Helper()

	body := f.CreateBody(ctx, "Test Grand Body")
	now := time.Now().UTC()
	ch := models.Chapter{
		ID:          primitive.NewObjectID(),
		BodyID:      body.ID,
		TitlePrefix: "ARLS",
		Name:        name,
		NameCI:      text.Fold(name),
		Number:      number,
		City:        "Test City",
		State:       "TS",
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("chapters").InsertOne(ctx, ch); err != nil {
		f.t.Fatalf("failed to create test chapter: %v", err)
	}
	return ch
}

// CreateMember creates an active member of a chapter.
func (f *Fixtures) CreateMember(ctx context.Context, chapterID primitive.ObjectID, fullName, degree string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:         primitive.NewObjectID(),
		ChapterID:  chapterID,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Degree:     degree,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateInactiveMember creates a member that bulk attendance skips.
func (f *Fixtures) CreateInactiveMember(ctx context.Context, chapterID primitive.ObjectID, fullName string) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:         primitive.NewObjectID(),
		ChapterID:  chapterID,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Status:     "inactive",
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateSession creates an ordinary session in the given state.
func (f *Fixtures) CreateSession(ctx context.Context, chapterID primitive.ObjectID, date time.Time, number int, state string) models.Session {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Session{
		ID:        primitive.NewObjectID(),
		ChapterID: chapterID,
		Type:      models.SessionOrdinary,
		Subtype:   "regular",
		Degree:    "apprentice",
		Date:      date,
		StartTime: "20:00",
		Number:    number,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("chapter_sessions").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test session: %v", err)
	}
	return s
}

// CreateOfficer assigns a role to a member from start on.
func (f *Fixtures) CreateOfficer(ctx context.Context, chapterID, memberID primitive.ObjectID, role string, start time.Time) models.OfficerAssignment {
	f.t.Helper()

	a := models.OfficerAssignment{
		ID:        primitive.NewObjectID(),
		ChapterID: chapterID,
		MemberID:  memberID,
		Role:      role,
		StartDate: start,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("officer_assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test officer: %v", err)
	}
	return a
}

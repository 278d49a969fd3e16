// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// ErrInvalidSubtype is returned when a subtype does not belong to the type.
var ErrInvalidSubtype = errors.New("subtype not valid for session type")

// Store manages chapter sessions (meetings) and their lifecycle.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chapter_sessions")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Chapter agenda and previous-session lookups
		{
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_sessions_chapter_date"),
		},
		// Session numbers are unique per chapter
		{
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetName("uniq_sessions_chapter_number").SetUnique(true),
		},
		// Background jobs scan by state
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_sessions_state_date"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create schedules a session. The number is the next one for the chapter
// when not given.
func (s *Store) Create(ctx context.Context, sess models.Session) (models.Session, error) {
	if !models.ValidSubtype(sess.Type, sess.Subtype) {
		return models.Session{}, fmt.Errorf("%w: %s/%s", ErrInvalidSubtype, sess.Type, sess.Subtype)
	}
	if sess.Number == 0 {
		n, err := s.nextNumber(ctx, sess.ChapterID)
		if err != nil {
			return models.Session{}, err
		}
		sess.Number = n
	}
	now := time.Now().UTC()
	sess.ID = primitive.NewObjectID()
	sess.State = models.StateScheduled
	sess.SigningLock, sess.SigningLockUntil = "", nil
	sess.CreatedAt = now
	sess.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (s *Store) nextNumber(ctx context.Context, chapterID primitive.ObjectID) (int, error) {
	var last models.Session
	err := s.c.FindOne(ctx, bson.M{"chapter_id": chapterID},
		options.FindOne().SetSort(bson.D{{Key: "number", Value: -1}}).SetProjection(bson.M{"number": 1})).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Number + 1, nil
}

// GetByID returns a session.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error) {
	var sess models.Session
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Session{}, fmt.Errorf("session %s: %w", id.Hex(), docerr.ErrNotFound)
	}
	return sess, err
}

// Transition moves a session along one documented edge. The update is
// conditional on the current state, so a concurrent transition makes this
// one fail with ErrInvalidState and leaves the row untouched.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, to string, privileged bool) (models.Session, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	if !models.CanTransition(cur.State, to, privileged) {
		return models.Session{}, fmt.Errorf("%w: %s -> %s", docerr.ErrInvalidState, cur.State, to)
	}
	var out models.Session
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "state": cur.State},
		bson.M{"$set": bson.M{"state": to, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Session{}, fmt.Errorf("%w: session changed state concurrently", docerr.ErrInvalidState)
	}
	return out, err
}

// TryLockSigning takes the signing lease of a session for owner. It
// succeeds when the lease is free, expired or already held by owner.
func (s *Store) TryLockSigning(ctx context.Context, id primitive.ObjectID, owner string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"$or": bson.A{
				bson.M{"signing_lock": bson.M{"$in": bson.A{"", nil}}},
				bson.M{"signing_lock": owner},
				bson.M{"signing_lock_until": bson.M{"$lt": now}},
			},
		},
		bson.M{"$set": bson.M{"signing_lock": owner, "signing_lock_until": now.Add(ttl)}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// UnlockSigning releases the lease if owner still holds it.
func (s *Store) UnlockSigning(ctx context.Context, id primitive.ObjectID, owner string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "signing_lock": owner},
		bson.M{"$unset": bson.M{"signing_lock": "", "signing_lock_until": ""}},
	)
	return err
}

// PreviousCompleted returns the most recent held or closed session of the
// chapter that started before cur; nil when there is none.
func (s *Store) PreviousCompleted(ctx context.Context, cur models.Session) (*models.Session, error) {
	cursor, err := s.c.Find(ctx,
		bson.M{
			"chapter_id": cur.ChapterID,
			"_id":        bson.M{"$ne": cur.ID},
			"state":      bson.M{"$in": bson.A{models.StateHeld, models.StateClosed}},
			"date":       bson.M{"$lte": cur.Date},
		},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "number", Value: -1}}).SetLimit(8),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rows []models.Session
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	// Same-day rows are compared by start instant.
	start := cur.StartsAt()
	for i := range rows {
		if rows[i].StartsAt().Before(start) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// InState returns sessions in state dated within [from, to].
func (s *Store) InState(ctx context.Context, state string, from, to time.Time) ([]models.Session, error) {
	cursor, err := s.c.Find(ctx,
		bson.M{"state": state, "date": bson.M{"$gte": from, "$lte": to}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []models.Session
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DueForHold returns in-progress sessions whose effective end is before now.
func (s *Store) DueForHold(ctx context.Context, now time.Time) ([]models.Session, error) {
	// The end instant depends on the "HH:MM" strings, so the date filter is
	// a coarse bound refined in memory.
	rows, err := s.InState(ctx, models.StateInProgress, time.Time{}, now)
	if err != nil {
		return nil, err
	}
	var due []models.Session
	for _, r := range rows {
		if r.EffectiveEnd().Before(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

// ListByChapter returns a chapter's sessions, most recent first.
func (s *Store) ListByChapter(ctx context.Context, chapterID primitive.ObjectID, limit int64) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "number", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.c.Find(ctx, bson.M{"chapter_id": chapterID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []models.Session
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

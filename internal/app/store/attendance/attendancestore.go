// internal/app/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// ErrUnknownStatus is returned for statuses outside the documented set.
var ErrUnknownStatus = errors.New("unknown attendance status")

// Store manages session attendance.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attendance")}
}

// EnsureIndexes creates the uniqueness guards: one row per member and one
// per visitor in each session.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "member_id", Value: 1}},
			Options: options.Index().SetName("uniq_attendance_session_member").SetUnique(true).
				SetPartialFilterExpression(bson.M{"member_id": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "visitor_id", Value: 1}},
			Options: options.Index().SetName("uniq_attendance_session_visitor").SetUnique(true).
				SetPartialFilterExpression(bson.M{"visitor_id": bson.M{"$exists": true}}),
		},
	})
	return err
}

// BulkCreate inserts a pending row for every member without one. Running it
// again inserts nothing; the result is the number of rows created.
func (s *Store) BulkCreate(ctx context.Context, sessionID primitive.ObjectID, memberIDs []primitive.ObjectID) (int, error) {
	if len(memberIDs) == 0 {
		return 0, nil
	}
	existing, err := s.memberSet(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	var docs []any
	seen := map[primitive.ObjectID]bool{}
	for _, id := range memberIDs {
		if existing[id] || seen[id] {
			continue
		}
		seen[id] = true
		mid := id
		docs = append(docs, models.Attendance{
			ID:        primitive.NewObjectID(),
			SessionID: sessionID,
			MemberID:  &mid,
			Status:    models.AttendancePending,
			Method:    models.MethodBulk,
			CreatedAt: now,
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}
	res, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && wafflemongo.IsDup(err) {
		// A concurrent run inserted some rows first; the unique index kept
		// the set intact.
		n := 0
		if res != nil {
			n = len(res.InsertedIDs)
		}
		return n, nil
	}
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (s *Store) memberSet(ctx context.Context, sessionID primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID, "member_id": bson.M{"$exists": true}},
		options.Find().SetProjection(bson.M{"member_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := map[primitive.ObjectID]bool{}
	for cur.Next(ctx) {
		var row struct {
			MemberID primitive.ObjectID `bson:"member_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.MemberID] = true
	}
	return out, cur.Err()
}

// Mark sets a member's status, creating the row when missing.
func (s *Store) Mark(ctx context.Context, sessionID, memberID primitive.ObjectID, status, method string) error {
	switch status {
	case models.AttendancePending, models.AttendancePresent, models.AttendanceAbsent, models.AttendanceExcused:
	default:
		return ErrUnknownStatus
	}
	now := time.Now().UTC()
	set := bson.M{"status": status, "method": method}
	if status == models.AttendancePresent {
		set["checked_at"] = now
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "member_id": memberID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if wafflemongo.IsDup(err) {
		// Lost an upsert race; the row exists now.
		_, err = s.c.UpdateOne(ctx, bson.M{"session_id": sessionID, "member_id": memberID}, bson.M{"$set": set})
	}
	return err
}

// AddVisitor records a present visitor.
func (s *Store) AddVisitor(ctx context.Context, sessionID, visitorID primitive.ObjectID) error {
	now := time.Now().UTC()
	vid := visitorID
	_, err := s.c.InsertOne(ctx, models.Attendance{
		ID: primitive.NewObjectID(), SessionID: sessionID, VisitorID: &vid,
		Status: models.AttendancePresent, Method: models.MethodCheckIn, CheckedAt: &now, CreatedAt: now,
	})
	if wafflemongo.IsDup(err) {
		return nil
	}
	return err
}

// ForSession returns every attendance row of a session.
func (s *Store) ForSession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Attendance, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Attendance
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

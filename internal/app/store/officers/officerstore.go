// internal/app/store/officers/officerstore.go
package officerstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// ErrInvalidInterval is returned for assignments that end before they start.
var ErrInvalidInterval = errors.New("officer assignment ends before it starts")

// ErrUnknownRole is returned for roles outside models.OfficerRoles.
var ErrUnknownRole = errors.New("unknown officer role")

// Store manages officer role history.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("officer_assignments")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "role", Value: 1}, {Key: "start_date", Value: -1}},
		Options: options.Index().SetName("idx_officers_chapter_role_start"),
	})
	return err
}

// Create inserts a role-history row.
func (s *Store) Create(ctx context.Context, a models.OfficerAssignment) (models.OfficerAssignment, error) {
	if _, ok := models.RoleLabels[a.Role]; !ok {
		return models.OfficerAssignment{}, ErrUnknownRole
	}
	if a.EndDate != nil && a.EndDate.Before(a.StartDate) {
		return models.OfficerAssignment{}, ErrInvalidInterval
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.OfficerAssignment{}, err
	}
	return a, nil
}

// End closes an open assignment on the given day.
func (s *Store) End(ctx context.Context, id primitive.ObjectID, end time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "start_date": bson.M{"$lte": end}},
		bson.M{"$set": bson.M{"end_date": end}})
	return err
}

// History returns every role-history row of a chapter.
func (s *Store) History(ctx context.Context, chapterID primitive.ObjectID) ([]models.OfficerAssignment, error) {
	cur, err := s.c.Find(ctx, bson.M{"chapter_id": chapterID},
		options.Find().SetSort(bson.D{{Key: "role", Value: 1}, {Key: "start_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.OfficerAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

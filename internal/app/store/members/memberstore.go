// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Store manages members and visitors.
type Store struct {
	c        *mongo.Collection
	visitors *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members"), visitors: db.Collection("visitors")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "status", Value: 1}, {Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_members_chapter_status_name"),
		},
		{
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "office", Value: 1}},
			Options: options.Index().SetName("idx_members_chapter_office").SetSparse(true),
		},
	})
	return err
}

func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.FullNameCI = text.Fold(m.FullName)
	if m.Status == "" {
		m.Status = "active"
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	var m models.Member
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Member{}, fmt.Errorf("member %s: %w", id.Hex(), docerr.ErrNotFound)
	}
	return m, err
}

// GetByIDs loads the members that exist among ids.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ActiveIDs returns the ids of a chapter's active members.
func (s *Store) ActiveIDs(ctx context.Context, chapterID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"chapter_id": chapterID, "status": "active"},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// OfficeHolders returns active members with a direct office association.
func (s *Store) OfficeHolders(ctx context.Context, chapterID primitive.ObjectID) ([]models.Member, error) {
	return s.find(ctx, bson.M{
		"chapter_id": chapterID,
		"status":     "active",
		"office":     bson.M{"$nin": bson.A{"", nil}},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateVisitor(ctx context.Context, v models.Visitor) (models.Visitor, error) {
	v.ID = primitive.NewObjectID()
	v.CreatedAt = time.Now().UTC()
	if _, err := s.visitors.InsertOne(ctx, v); err != nil {
		return models.Visitor{}, err
	}
	return v, nil
}

// VisitorsByIDs loads the visitors that exist among ids.
func (s *Store) VisitorsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Visitor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.visitors.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Visitor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

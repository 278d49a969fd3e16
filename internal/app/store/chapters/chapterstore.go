// internal/app/store/chapters/chapterstore.go
package chapterstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

var ErrDuplicateChapter = errors.New("a chapter with this number already exists in the body")

// Store manages chapters and their umbrella bodies.
type Store struct {
	c      *mongo.Collection
	bodies *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chapters"), bodies: db.Collection("umbrella_bodies")}
}

// EnsureIndexes creates the chapter indexes. Chapter numbers are unique
// within an umbrella body.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "body_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetName("uniq_chapters_body_number").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_chapters_name_ci"),
		},
	})
	return err
}

func (s *Store) Create(ctx context.Context, ch models.Chapter) (models.Chapter, error) {
	now := time.Now().UTC()
	ch.ID = primitive.NewObjectID()
	ch.NameCI = text.Fold(ch.Name)
	if ch.Status == "" {
		ch.Status = "active"
	}
	ch.CreatedAt = now
	ch.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Chapter{}, ErrDuplicateChapter
		}
		return models.Chapter{}, err
	}
	return ch, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Chapter, error) {
	var ch models.Chapter
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Chapter{}, fmt.Errorf("chapter %s: %w", id.Hex(), docerr.ErrNotFound)
	}
	return ch, err
}

// UpdateDocumentSettings stores a settings blob. Legacy flat blobs are
// wrapped into the per-type hierarchy on write.
func (s *Store) UpdateDocumentSettings(ctx context.Context, id primitive.ObjectID, blob map[string]any) error {
	if docsettings.IsLegacy(blob) {
		blob = docsettings.Wrap(blob)
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"document_settings": blob,
		"updated_at":        time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("chapter %s: %w", id.Hex(), docerr.ErrNotFound)
	}
	return nil
}

// UpdateLogo sets the tenant-relative logo path.
func (s *Store) UpdateLogo(ctx context.Context, id primitive.ObjectID, logoPath string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"logo_path": logoPath, "updated_at": time.Now().UTC()}})
	return err
}

// Active returns every active chapter.
func (s *Store) Active(ctx context.Context) ([]models.Chapter, error) {
	cur, err := s.c.Find(ctx, bson.M{"status": "active"}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Chapter
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateBody(ctx context.Context, b models.UmbrellaBody) (models.UmbrellaBody, error) {
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now().UTC()
	if _, err := s.bodies.InsertOne(ctx, b); err != nil {
		return models.UmbrellaBody{}, err
	}
	return b, nil
}

func (s *Store) GetBody(ctx context.Context, id primitive.ObjectID) (models.UmbrellaBody, error) {
	var b models.UmbrellaBody
	err := s.bodies.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.UmbrellaBody{}, fmt.Errorf("umbrella body %s: %w", id.Hex(), docerr.ErrNotFound)
	}
	return b, err
}

// internal/app/store/templates/templatestore.go
package templatestore

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

// Store holds chapter document templates, one per (chapter, type).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("document_templates")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().SetName("uniq_document_templates_chapter_type").SetUnique(true),
	})
	return err
}

// Get returns the stored template, or nil when the chapter uses the
// packaged default.
func (s *Store) Get(ctx context.Context, chapterID primitive.ObjectID, docType string) (*models.DocumentTemplate, error) {
	var t models.DocumentTemplate
	err := s.c.FindOne(ctx, bson.M{"chapter_id": chapterID, "type": docType}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Upsert writes the template content for (chapter, type).
func (s *Store) Upsert(ctx context.Context, t models.DocumentTemplate) (models.DocumentTemplate, error) {
	now := time.Now().UTC()
	var out models.DocumentTemplate
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"chapter_id": t.ChapterID, "type": t.Type},
		bson.M{
			"$set":         bson.M{"content": t.Content, "updated_at": now},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	return out, err
}

// Delete removes the stored template so the packaged default applies again.
func (s *Store) Delete(ctx context.Context, chapterID primitive.ObjectID, docType string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"chapter_id": chapterID, "type": docType})
	return err
}

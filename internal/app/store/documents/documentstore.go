// internal/app/store/documents/documentstore.go
package documentstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/system/txn"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

const (
	idxSignedPerSession = "uniq_documents_signed_minutes_session"
	idxSignatureHash    = "uniq_signatures_hash"
)

// Store persists generated documents and minute signatures.
type Store struct {
	db   *mongo.Database
	docs *mongo.Collection
	sigs *mongo.Collection
	log  *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:   db,
		docs: db.Collection("documents"),
		sigs: db.Collection("signatures"),
		log:  log,
	}
}

// EnsureIndexes creates the lookup indexes and the two uniqueness guards of
// signing: one signed minutes per session and one signature per hash.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.docs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_documents_chapter_created"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetName("idx_documents_session_type"),
		},
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetName(idxSignedPerSession).SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": models.DocSignedMinutes}),
		},
	})
	if err != nil {
		return err
	}
	_, err = s.sigs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "hash", Value: 1}},
			Options: options.Index().SetName(idxSignatureHash).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetName("idx_signatures_session"),
		},
	})
	return err
}

// RecordSigned inserts the signed minutes and their signature in one
// transaction. Without transaction support the document insert is
// compensated when the signature insert fails.
func (s *Store) RecordSigned(ctx context.Context, doc models.Document, sig models.Signature) error {
	if doc.Type != models.DocSignedMinutes || doc.SessionID == nil {
		return fmt.Errorf("%w: signed minutes need a session", docerr.ErrInvalidInput)
	}
	fillDocument(&doc)
	if sig.ID.IsZero() {
		sig.ID = primitive.NewObjectID()
	}
	sig.DocumentID = doc.ID
	if sig.SignedAt.IsZero() {
		sig.SignedAt = time.Now().UTC()
	}

	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.docs.InsertOne(ctx, doc); err != nil {
			return err
		}
		if _, err := s.sigs.InsertOne(ctx, sig); err != nil {
			if !inTxn(ctx) {
				if _, derr := s.docs.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": doc.ID}); derr != nil {
					s.log.Error("compensating document delete failed", zap.String("document_id", doc.ID.Hex()), zap.Error(derr))
				}
			}
			return err
		}
		return nil
	})
	return classify(err)
}

func inTxn(ctx context.Context) bool {
	_, ok := ctx.(mongo.SessionContext)
	return ok
}

// classify maps duplicate-key errors of the signing guards to domain errors.
func classify(err error) error {
	if err == nil || !wafflemongo.IsDup(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, idxSignatureHash):
		return fmt.Errorf("%w: %v", docerr.ErrHashExists, err)
	case strings.Contains(msg, idxSignedPerSession):
		return fmt.Errorf("%w: %v", docerr.ErrAlreadySigned, err)
	}
	return fmt.Errorf("%w: %v", docerr.ErrConflict, err)
}

func fillDocument(doc *models.Document) {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
}

// RecordDocument inserts an unsigned document.
func (s *Store) RecordDocument(ctx context.Context, doc models.Document) error {
	fillDocument(&doc)
	_, err := s.docs.InsertOne(ctx, doc)
	return classify(err)
}

// SignedMinutes returns the signed minutes of a session, or nil.
func (s *Store) SignedMinutes(ctx context.Context, sessionID primitive.ObjectID) (*models.Document, error) {
	var d models.Document
	err := s.docs.FindOne(ctx, bson.M{"session_id": sessionID, "type": models.DocSignedMinutes}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Document returns a document by id.
func (s *Store) Document(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var d models.Document
	err := s.docs.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Document{}, fmt.Errorf("document %s: %w", id.Hex(), docerr.ErrNotFound)
	}
	return d, err
}

// SignatureByHash returns the signature carrying hash.
func (s *Store) SignatureByHash(ctx context.Context, hash string) (models.Signature, error) {
	var sig models.Signature
	err := s.sigs.FindOne(ctx, bson.M{"hash": hash}).Decode(&sig)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Signature{}, fmt.Errorf("signature: %w", docerr.ErrNotFound)
	}
	return sig, err
}

// HasDocument reports whether the session has a document of docType.
func (s *Store) HasDocument(ctx context.Context, sessionID primitive.ObjectID, docType string) (bool, error) {
	n, err := s.docs.CountDocuments(ctx, bson.M{"session_id": sessionID, "type": docType}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByChapter returns a chapter's documents, newest first, optionally
// filtered by type.
func (s *Store) ListByChapter(ctx context.Context, chapterID primitive.ObjectID, docType string, limit int64) ([]models.Document, error) {
	filter := bson.M{"chapter_id": chapterID}
	if docType != "" {
		filter["type"] = docType
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.docs.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Document
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

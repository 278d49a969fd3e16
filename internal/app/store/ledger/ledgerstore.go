// internal/app/store/ledger/ledgerstore.go
package ledgerstore

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

// ErrInvalidKind is returned for transactions that are neither credit nor debit.
var ErrInvalidKind = errors.New("transaction kind must be credit or debit")

// Store holds a chapter's financial transactions and published notices,
// the two feeds of the minutes' expedient sections.
type Store struct {
	tx      *mongo.Collection
	notices *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		tx:      db.Collection("transactions"),
		notices: db.Collection("notices"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.tx.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetName("idx_transactions_chapter_kind_date"),
	}); err != nil {
		return err
	}
	_, err := s.notices.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "published_at", Value: 1}},
		Options: options.Index().SetName("idx_notices_chapter_published"),
	})
	return err
}

// AddTransaction records a ledger entry.
func (s *Store) AddTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.Kind != models.TxCredit && t.Kind != models.TxDebit {
		return models.Transaction{}, ErrInvalidKind
	}
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	_, err := s.tx.InsertOne(ctx, t)
	return t, err
}

// CreditsOn returns credits dated on the UTC calendar day of day.
func (s *Store) CreditsOn(ctx context.Context, chapterID primitive.ObjectID, day time.Time) ([]models.Transaction, error) {
	d := day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	cur, err := s.tx.Find(ctx,
		bson.M{
			"chapter_id": chapterID,
			"kind":       models.TxCredit,
			"date":       bson.M{"$gte": start, "$lt": start.AddDate(0, 0, 1)},
		},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Transaction
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddNotice records a publication.
func (s *Store) AddNotice(ctx context.Context, n models.Notice) (models.Notice, error) {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	if n.PublishedAt.IsZero() {
		n.PublishedAt = n.CreatedAt
	}
	_, err := s.notices.InsertOne(ctx, n)
	return n, err
}

// NoticesBetween returns notices published in (from, to]. A zero from means
// no lower bound.
func (s *Store) NoticesBetween(ctx context.Context, chapterID primitive.ObjectID, from, to time.Time) ([]models.Notice, error) {
	window := bson.M{"$lte": to}
	if !from.IsZero() {
		window["$gt"] = from
	}
	cur, err := s.notices.Find(ctx,
		bson.M{"chapter_id": chapterID, "published_at": window},
		options.Find().SetSort(bson.D{{Key: "published_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Notice
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// internal/domain/models/finance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction kinds.
const (
	TxCredit = "credit"
	TxDebit  = "debit"
)

// Transaction is a ledger entry of a chapter. Amount is in cents.
type Transaction struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ChapterID   primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	Kind        string             `bson:"kind" json:"kind"`
	Description string             `bson:"description" json:"description"`
	AmountCents int64              `bson:"amount_cents" json:"amount_cents"`
	Date        time.Time          `bson:"date" json:"date"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Notice is a publication of a chapter (bulletin, circular) that feeds the
// auto-expedient section of the minutes.
type Notice struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ChapterID   primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	Title       string             `bson:"title" json:"title"`
	Summary     string             `bson:"summary,omitempty" json:"summary,omitempty"`
	PublishedAt time.Time          `bson:"published_at" json:"published_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

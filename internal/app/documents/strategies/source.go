package strategies

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Source is the read side strategies pull entity state from. Lookups of a
// single entity return an error wrapping docerr.ErrNotFound when missing.
type Source interface {
	Chapter(ctx context.Context, id primitive.ObjectID) (models.Chapter, error)
	Body(ctx context.Context, id primitive.ObjectID) (models.UmbrellaBody, error)
	Session(ctx context.Context, id primitive.ObjectID) (models.Session, error)
	Member(ctx context.Context, id primitive.ObjectID) (models.Member, error)

	// Members and Visitors return the rows that exist among ids.
	Members(ctx context.Context, ids []primitive.ObjectID) ([]models.Member, error)
	Visitors(ctx context.Context, ids []primitive.ObjectID) ([]models.Visitor, error)

	// OfficerHistory returns every role-history row of the chapter.
	OfficerHistory(ctx context.Context, chapterID primitive.ObjectID) ([]models.OfficerAssignment, error)
	// OfficeHolders returns active members with a direct office association.
	OfficeHolders(ctx context.Context, chapterID primitive.ObjectID) ([]models.Member, error)

	Attendance(ctx context.Context, sessionID primitive.ObjectID) ([]models.Attendance, error)
	// PreviousCompleted returns the most recent held or closed session of the
	// chapter that started before s; nil when there is none.
	PreviousCompleted(ctx context.Context, s models.Session) (*models.Session, error)
	// CreditsOn returns credit transactions dated on the calendar day of day.
	CreditsOn(ctx context.Context, chapterID primitive.ObjectID, day time.Time) ([]models.Transaction, error)
	// NoticesBetween returns notices published in (from, to].
	NoticesBetween(ctx context.Context, chapterID primitive.ObjectID, from, to time.Time) ([]models.Notice, error)
}

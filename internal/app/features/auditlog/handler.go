// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"go.uber.org/zap"

	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/store/audit"
)

// EventQuerier is the audit store surface the list reads.
type EventQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

type Handler struct {
	Events EventQuerier
	Log    *zap.Logger
	ErrLog *errorsfeature.ErrorLogger
}

// NewHandler constructs an Audit Log feature handler.
func NewHandler(events EventQuerier, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
		ErrLog: errLog,
	}
}

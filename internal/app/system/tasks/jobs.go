// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Job is a unit of periodic background work. Run errors are logged by the
// runner; the job runs again at the next interval.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run; Interval when zero.
	Timeout time.Duration
	// RunAtStart runs the job once as soon as the runner starts.
	RunAtStart bool
	Run        func(ctx context.Context) error
}

// SessionHolder is the session store surface the auto-hold job uses.
type SessionHolder interface {
	DueForHold(ctx context.Context, now time.Time) ([]models.Session, error)
	Transition(ctx context.Context, id primitive.ObjectID, to string, privileged bool) (models.Session, error)
}

// SessionLister lists sessions by state and date.
type SessionLister interface {
	InState(ctx context.Context, state string, from, to time.Time) ([]models.Session, error)
}

// NoticeGenerator produces convocation notices.
type NoticeGenerator interface {
	HasNotice(ctx context.Context, sessionID primitive.ObjectID) (bool, error)
	GenerateNotice(ctx context.Context, req generator.NoticeRequest) (generator.Generated, error)
}

// SessionAutoHoldJob moves in-progress sessions whose effective end has
// passed to held.
func SessionAutoHoldJob(st SessionHolder, audit *auditlog.Logger, logger *zap.Logger, interval time.Duration, now func() time.Time) Job {
	if now == nil {
		now = time.Now
	}
	return Job{
		Name:     "session-auto-hold",
		Interval: interval,
		Run: func(ctx context.Context) error {
			due, err := st.DueForHold(ctx, now().UTC())
			if err != nil {
				return err
			}
			held := 0
			for _, s := range due {
				out, err := st.Transition(ctx, s.ID, models.StateHeld, false)
				if errors.Is(err, docerr.ErrInvalidState) {
					// Someone moved it first.
					logger.Debug("auto-hold skipped", zap.String("session_id", s.ID.Hex()), zap.Error(err))
					continue
				}
				if err != nil {
					logger.Error("auto-hold failed", zap.String("session_id", s.ID.Hex()), zap.Error(err))
					continue
				}
				held++
				audit.SessionTransitioned(ctx, auditlog.System, out, models.StateInProgress)
			}
			if held > 0 {
				logger.Info("sessions auto-held", zap.Int("count", held))
			}
			return nil
		},
	}
}

// NoticeAutogenJob generates the convocation notice of every scheduled
// session starting within leadDays that has none yet.
func NoticeAutogenJob(st SessionLister, gen NoticeGenerator, audit *auditlog.Logger, logger *zap.Logger, interval time.Duration, leadDays int, now func() time.Time) Job {
	if now == nil {
		now = time.Now
	}
	if leadDays <= 0 {
		leadDays = 7
	}
	return Job{
		Name:       "notice-autogen",
		Interval:   interval,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			n := now().UTC()
			from := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
			upcoming, err := st.InState(ctx, models.StateScheduled, from, from.AddDate(0, 0, leadDays))
			if err != nil {
				return err
			}
			made := 0
			for _, s := range upcoming {
				if err := ctx.Err(); err != nil {
					return err
				}
				has, err := gen.HasNotice(ctx, s.ID)
				if err != nil {
					logger.Error("notice lookup failed", zap.String("session_id", s.ID.Hex()), zap.Error(err))
					continue
				}
				if has {
					continue
				}
				out, err := gen.GenerateNotice(ctx, generator.NoticeRequest{ChapterID: s.ChapterID, SessionID: s.ID})
				if err != nil {
					sid := s.ID
					logger.Error("notice autogen failed", zap.String("session_id", s.ID.Hex()), zap.Error(err))
					audit.DocumentFailed(ctx, auditlog.System, s.ChapterID, &sid, models.KindNotice, err)
					continue
				}
				made++
				audit.DocumentGenerated(ctx, auditlog.System, out.Document)
			}
			if made > 0 {
				logger.Info("notices generated", zap.Int("count", made))
			}
			return nil
		},
	}
}

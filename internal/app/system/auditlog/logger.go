// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	"github.com/dalemusser/chapterhub/internal/app/system/ratelimit"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// SystemActor identifies background jobs.
const SystemActor = "system"

// Config holds audit logging configuration. Each value is one of
// "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off".
type Config struct {
	Documents string
	Sessions  string
	Templates string
}

// Logger logs audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// Actor describes who caused an event. A nil request means a background job.
type Actor struct {
	ID string
	R  *http.Request
}

// System is the actor of background jobs.
var System = Actor{ID: SystemActor}

func (a Actor) apply(e *audit.Event) {
	e.ActorID = a.ID
	if e.ActorID == "" {
		e.ActorID = SystemActor
	}
	if a.R != nil {
		e.IP = ratelimit.ClientIP(a.R)
		e.UserAgent = a.R.UserAgent()
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("actor_id", event.ActorID),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.ChapterID != nil {
		fields = append(fields, zap.String("chapter_id", event.ChapterID.Hex()))
	}
	if event.SessionID != nil {
		fields = append(fields, zap.String("session_id", event.SessionID.Hex()))
	}
	if event.DocumentID != nil {
		fields = append(fields, zap.String("document_id", event.DocumentID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryDocument:
		setting = l.config.Documents
	case audit.CategorySession:
		setting = l.config.Sessions
	case audit.CategoryTemplate:
		setting = l.config.Templates
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(context.WithoutCancel(ctx), event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Document Events ---

// DocumentGenerated logs a stored document.
func (l *Logger) DocumentGenerated(ctx context.Context, a Actor, doc models.Document) {
	e := audit.Event{
		Category:   audit.CategoryDocument,
		EventType:  audit.EventDocumentGenerated,
		ChapterID:  &doc.ChapterID,
		SessionID:  doc.SessionID,
		DocumentID: &doc.ID,
		Success:    true,
		Details:    map[string]string{"type": doc.Type},
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// DocumentFailed logs a generation that produced nothing.
func (l *Logger) DocumentFailed(ctx context.Context, a Actor, chapterID primitive.ObjectID, sessionID *primitive.ObjectID, kind string, err error) {
	e := audit.Event{
		Category:      audit.CategoryDocument,
		EventType:     audit.EventDocumentFailed,
		ChapterID:     &chapterID,
		SessionID:     sessionID,
		FailureReason: err.Error(),
		Details:       map[string]string{"type": kind},
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// MinutesSigned logs a successful signing.
func (l *Logger) MinutesSigned(ctx context.Context, a Actor, doc models.Document, sig models.Signature) {
	e := audit.Event{
		Category:   audit.CategoryDocument,
		EventType:  audit.EventMinutesSigned,
		ChapterID:  &doc.ChapterID,
		SessionID:  &sig.SessionID,
		DocumentID: &doc.ID,
		Success:    true,
		Details:    map[string]string{"hash": sig.Hash, "signer": sig.SignerName},
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// SignFailed logs a rejected or failed signing.
func (l *Logger) SignFailed(ctx context.Context, a Actor, chapterID, sessionID primitive.ObjectID, err error) {
	e := audit.Event{
		Category:      audit.CategoryDocument,
		EventType:     audit.EventSignFailed,
		ChapterID:     &chapterID,
		SessionID:     &sessionID,
		FailureReason: err.Error(),
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// DraftSaved logs a minutes draft write.
func (l *Logger) DraftSaved(ctx context.Context, a Actor, chapterID, sessionID primitive.ObjectID) {
	e := audit.Event{
		Category:  audit.CategoryDocument,
		EventType: audit.EventDraftSaved,
		ChapterID: &chapterID,
		SessionID: &sessionID,
		Success:   true,
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// DocumentDownloaded logs a re-print.
func (l *Logger) DocumentDownloaded(ctx context.Context, a Actor, doc models.Document) {
	e := audit.Event{
		Category:   audit.CategoryDocument,
		EventType:  audit.EventDocumentDownload,
		ChapterID:  &doc.ChapterID,
		SessionID:  doc.SessionID,
		DocumentID: &doc.ID,
		Success:    true,
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// --- Session Events ---

// SessionTransitioned logs a lifecycle change.
func (l *Logger) SessionTransitioned(ctx context.Context, a Actor, s models.Session, from string) {
	e := audit.Event{
		Category:  audit.CategorySession,
		EventType: audit.EventSessionTransitioned,
		ChapterID: &s.ChapterID,
		SessionID: &s.ID,
		Success:   true,
		Details:   map[string]string{"from": from, "to": s.State},
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// AttendanceCreated logs bulk attendance creation.
func (l *Logger) AttendanceCreated(ctx context.Context, a Actor, s models.Session, created int) {
	e := audit.Event{
		Category:  audit.CategorySession,
		EventType: audit.EventAttendanceCreated,
		ChapterID: &s.ChapterID,
		SessionID: &s.ID,
		Success:   true,
		Details:   map[string]string{"created": strconv.Itoa(created)},
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// --- Template Events ---

// TemplateSaved logs a chapter template write.
func (l *Logger) TemplateSaved(ctx context.Context, a Actor, chapterID primitive.ObjectID, kind string) {
	e := audit.Event{
		Category:  audit.CategoryTemplate,
		EventType: audit.EventTemplateSaved,
		ChapterID: &chapterID,
		Success:   true,
		Details:   map[string]string{"type": kind},
	}
	a.apply(&e)
	l.Log(ctx, e)
}

// SettingsUpdated logs a change to a chapter's document settings or logo.
func (l *Logger) SettingsUpdated(ctx context.Context, a Actor, chapterID primitive.ObjectID, field string) {
	e := audit.Event{
		Category:  audit.CategoryTemplate,
		EventType: audit.EventSettingsUpdated,
		ChapterID: &chapterID,
		Success:   true,
		Details:   map[string]string{"field": field},
	}
	a.apply(&e)
	l.Log(ctx, e)
}

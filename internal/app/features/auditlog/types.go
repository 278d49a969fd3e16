// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	"github.com/dalemusser/chapterhub/internal/app/system/paging"
)

// listItem is one audit event in the list response.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	ChapterID     string            `json:"chapter_id,omitempty"`
	SessionID     string            `json:"session_id,omitempty"`
	DocumentID    string            `json:"document_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	IP            string            `json:"ip,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func newListItem(e audit.Event) listItem {
	item := listItem{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		ActorID:       e.ActorID,
		IP:            e.IP,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.ChapterID != nil {
		item.ChapterID = e.ChapterID.Hex()
	}
	if e.SessionID != nil {
		item.SessionID = e.SessionID.Hex()
	}
	if e.DocumentID != nil {
		item.DocumentID = e.DocumentID.Hex()
	}
	return item
}

// listResponse is the body of GET /audit.
type listResponse struct {
	Items []listItem  `json:"items"`
	Page  paging.Page `json:"page"`
}

// eventTypesForCategory returns the event types of a category, or every
// type when category is empty. Unknown categories return nil.
func eventTypesForCategory(category string) []string {
	documentEvents := []string{
		audit.EventDocumentGenerated,
		audit.EventDocumentFailed,
		audit.EventMinutesSigned,
		audit.EventSignFailed,
		audit.EventDraftSaved,
		audit.EventDocumentDownload,
	}
	sessionEvents := []string{
		audit.EventSessionTransitioned,
		audit.EventAttendanceCreated,
	}
	templateEvents := []string{
		audit.EventTemplateSaved,
		audit.EventSettingsUpdated,
	}

	switch category {
	case audit.CategoryDocument:
		return documentEvents
	case audit.CategorySession:
		return sessionEvents
	case audit.CategoryTemplate:
		return templateEvents
	case "":
		all := make([]string, 0, len(documentEvents)+len(sessionEvents)+len(templateEvents))
		all = append(all, documentEvents...)
		all = append(all, sessionEvents...)
		return append(all, templateEvents...)
	default:
		return nil
	}
}

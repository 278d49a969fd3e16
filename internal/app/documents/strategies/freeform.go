package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// FreeForm builds invitations and congratulation cards: a message under the
// chapter's branding, addressed to any recipient.
type FreeForm struct {
	*Base
	kind        string
	settingsKey string
	title       string
}

func (f *FreeForm) Kind() string         { return f.kind }
func (f *FreeForm) TemplateName() string { return f.kind }
func (f *FreeForm) SettingsKey() string  { return f.settingsKey }
func (f *FreeForm) DocumentType() string { return f.kind }

// BuildContext needs the chapter; a session is optional and only adds the
// session block.
func (f *FreeForm) BuildContext(ctx context.Context, req Request) (*Context, error) {
	var (
		ch  models.Chapter
		ses *models.Session
		err error
	)
	if !req.SessionID.IsZero() {
		s, c, err := f.sessionAndChapter(ctx, req)
		if err != nil {
			return nil, err
		}
		ch, ses = c, &s
	} else {
		if req.ChapterID.IsZero() {
			return nil, fmt.Errorf("%w: chapter id required", docerr.ErrInvalidInput)
		}
		ch, err = f.Source.Chapter(ctx, req.ChapterID)
		if err != nil {
			return nil, fmt.Errorf("chapter: %w", err)
		}
	}

	c, err := f.common(ctx, ch, f.kind, f.settingsKey, req)
	if err != nil {
		return nil, err
	}
	c.Title = f.title
	if ses != nil {
		c.IDs.SessionID = ses.ID
		c.Session = sessionView(*ses)
	}
	if req.Recipient != nil && strings.TrimSpace(req.Recipient.Name) != "" {
		r := *req.Recipient
		c.Recipient = &r
		c.Title = f.title + " - " + strings.TrimSpace(r.Name)
	}
	if c.Message == "" {
		c.Message, _ = req.body()
	}
	if err := f.withOfficers(ctx, c, ch, f.now(), models.RoleWorshipfulMaster); err != nil {
		return nil, err
	}
	return c, nil
}

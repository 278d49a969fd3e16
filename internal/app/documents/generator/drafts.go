package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/app/documents/render"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	draftstore "github.com/dalemusser/chapterhub/internal/app/store/drafts"
	"github.com/dalemusser/chapterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// DraftView is what the editor loads for a session's minutes.
type DraftView struct {
	// Text is the stored draft text, or the auto-generated body when no
	// draft text exists.
	Text   string         `json:"text"`
	Styles map[string]any `json:"styles"`
	// Source is "draft" or "auto".
	Source  string              `json:"source"`
	Context *strategies.Context `json:"context"`
	// Historical is set once the session no longer accepts edits.
	Historical bool `json:"historical"`
}

// MinutesDraft returns the editable text, styles and context of a session's
// minutes. Inlined assets are left out of the returned context.
func (g *Generator) MinutesDraft(ctx context.Context, chapterID, sessionID primitive.ObjectID) (DraftView, error) {
	s, err := g.session(ctx, chapterID, sessionID, "")
	if err != nil {
		return DraftView{}, err
	}
	cp, err := g.prepareMinutes(ctx, s, MinutesRequest{ChapterID: s.ChapterID, SessionID: s.ID})
	if err != nil {
		return DraftView{}, err
	}

	v := DraftView{
		Historical: !s.AllowsDocument(models.GenMinutesDraft),
		Styles:     map[string]any{},
		Source:     "auto",
	}
	if g.Drafts != nil {
		d, ok, err := g.Drafts.Get(ctx, s.ID)
		if err != nil {
			return DraftView{}, fmt.Errorf("draft: %w", err)
		}
		if ok {
			if d.Styles != nil {
				v.Styles = d.Styles
			}
			if strings.TrimSpace(d.Text) != "" {
				v.Text, v.Source = d.Text, "draft"
			}
		}
	}
	if v.Source == "auto" {
		v.Text, err = render.RenderPartial(cp.tpl, "body", cp.ctx)
		if err != nil {
			return DraftView{}, err
		}
		v.Text = strings.TrimSpace(v.Text)
	}
	c := *cp.ctx
	c.Assets = strategies.AssetsView{}
	v.Context = &c
	return v, nil
}

// SaveDraft overwrites the draft of a session. Markup is sanitized; style
// overrides must resolve to valid settings.
func (g *Generator) SaveDraft(ctx context.Context, chapterID, sessionID primitive.ObjectID, text string, styles map[string]any, by string) (models.Draft, error) {
	s, err := g.session(ctx, chapterID, sessionID, "")
	if err != nil {
		return models.Draft{}, err
	}
	if !htmlsanitize.IsPlainText(text) {
		text = htmlsanitize.Sanitize(text)
	}
	if len(styles) > 0 {
		if _, err := docsettings.Compute(nil, docsettings.KeyMinutes, styles); err != nil {
			return models.Draft{}, fmt.Errorf("%w: styles: %v", docerr.ErrInvalidInput, err)
		}
	}
	d, err := g.Drafts.Save(ctx, s, models.Draft{Text: text, Styles: styles, UpdatedBy: by})
	if errors.Is(err, draftstore.ErrHistorical) {
		return models.Draft{}, fmt.Errorf("%w: %v", docerr.ErrInvalidState, err)
	}
	return d, err
}

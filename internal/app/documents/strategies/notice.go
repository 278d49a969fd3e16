package strategies

import (
	"context"
	"fmt"

	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Notice builds the convocation notice (prancha) of a session.
type Notice struct {
	*Base
}

func (n *Notice) Kind() string         { return models.KindNotice }
func (n *Notice) TemplateName() string { return models.KindNotice }
func (n *Notice) SettingsKey() string  { return docsettings.KeyNotice }
func (n *Notice) DocumentType() string { return models.DocNotice }

// BuildContext renders agenda, session class, start time and attire, plus
// the request's custom message.
func (n *Notice) BuildContext(ctx context.Context, req Request) (*Context, error) {
	s, ch, err := n.sessionAndChapter(ctx, req)
	if err != nil {
		return nil, err
	}
	c, err := n.common(ctx, ch, n.Kind(), n.SettingsKey(), req)
	if err != nil {
		return nil, err
	}
	c.IDs.SessionID = s.ID
	c.Session = sessionView(s)
	c.Title = fmt.Sprintf("Prancha de Convocação da %dª Sessão %s", s.Number, c.Session.TypeLabel)
	if err := n.withOfficers(ctx, c, ch, n.now(),
		models.RoleWorshipfulMaster, models.RoleSecretary); err != nil {
		return nil, err
	}
	return c, nil
}

package strategies

import (
	"context"
	"fmt"

	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Minutes builds session minutes (balaústre).
type Minutes struct {
	*Base
}

func (m *Minutes) Kind() string         { return models.KindSessionMinutes }
func (m *Minutes) TemplateName() string { return models.KindSessionMinutes }
func (m *Minutes) SettingsKey() string  { return docsettings.KeyMinutes }
func (m *Minutes) DocumentType() string { return models.DocSignedMinutes }

// BuildContext resolves officers at the session date, attendance, previous
// session, collection and notices, then applies the body precedence.
func (m *Minutes) BuildContext(ctx context.Context, req Request) (*Context, error) {
	return m.build(ctx, req, m.Kind())
}

func (m *Minutes) build(ctx context.Context, req Request, kind string) (*Context, error) {
	s, ch, err := m.sessionAndChapter(ctx, req)
	if err != nil {
		return nil, err
	}
	c, err := m.common(ctx, ch, kind, m.SettingsKey(), req)
	if err != nil {
		return nil, err
	}
	c.IDs.SessionID = s.ID
	c.Session = sessionView(s)
	c.Title = fmt.Sprintf("Balaústre da %dª Sessão %s", s.Number, c.Session.TypeLabel)

	if err := m.withOfficers(ctx, c, ch, s.Date,
		models.RoleWorshipfulMaster, models.RoleOrator, models.RoleSecretary); err != nil {
		return nil, err
	}
	if err := m.sessionRefs(ctx, c, s); err != nil {
		return nil, err
	}
	c.Body, c.BodySource = req.body()
	return c, nil
}

// ElectoralMinutes extends Minutes with the canonical election script used
// when no edited text is supplied.
type ElectoralMinutes struct {
	*Minutes
}

func (e *ElectoralMinutes) Kind() string         { return models.KindElectoralMinutes }
func (e *ElectoralMinutes) TemplateName() string { return models.KindElectoralMinutes }

// BuildContext builds the minutes and injects the election script.
func (e *ElectoralMinutes) BuildContext(ctx context.Context, req Request) (*Context, error) {
	c, err := e.build(ctx, req, e.Kind())
	if err != nil {
		return nil, err
	}
	if c.Body == "" {
		c.Script = ElectionScript(c)
	}
	return c, nil
}

// ElectionScript returns the canonical sections of electoral minutes.
func ElectionScript(c *Context) []ScriptSection {
	wm := c.Roles[models.RoleWorshipfulMaster]
	sec := c.Roles[models.RoleSecretary]
	orator := c.Roles[models.RoleOrator]
	return []ScriptSection{
		{Title: "Abertura", Text: fmt.Sprintf(
			"O %s %s declarou abertos os trabalhos da sessão eleitoral, verificado o quórum regimental.", wm.Label, wm.Name)},
		{Title: "Leitura do Estatuto", Text: fmt.Sprintf(
			"O %s %s procedeu à leitura dos dispositivos estatutários e regimentais que regem o processo eleitoral.", orator.Label, orator.Name)},
		{Title: "Nomeação dos Escrutinadores", Text: "Foram nomeados os escrutinadores, que prestaram o compromisso de bem e fielmente cumprir seus deveres."},
		{Title: "Votação", Text: "Os obreiros regulares votaram por escrutínio secreto, depositando suas cédulas na urna."},
		{Title: "Apuração", Text: "Encerrada a votação, os escrutinadores procederam à contagem dos votos na presença de todos."},
		{Title: "Proclamação", Text: fmt.Sprintf(
			"O %s proclamou o resultado, e eu, %s, lavrei o presente balaústre.", wm.Label, sec.Name)},
	}
}

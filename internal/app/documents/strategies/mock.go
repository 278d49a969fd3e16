package strategies

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// sampleNames fill the mock roster in role order.
var sampleNames = []string{
	"Antônio Pereira", "Marcos Ribeiro", "Paulo Mendes", "Ricardo Gomes",
	"Sérgio Farias", "Tiago Nunes", "Vítor Carvalho",
}

// Mock returns a context populated with sample data for designing templates
// of kind. When chapter is nil a sample chapter is used. Nothing is read
// from the Source.
func (r *Registry) Mock(ctx context.Context, kind string, chapter *models.Chapter, req Request) (*Context, error) {
	st, err := r.Get(kind)
	if err != nil {
		return nil, err
	}
	ch := models.Chapter{
		ID: primitive.NilObjectID, TitlePrefix: "ARLS", Name: "Loja Exemplo", Number: "1",
		Street: "Rua Principal", StreetNumber: "100", City: "São Paulo", State: "SP",
	}
	if chapter != nil {
		ch = *chapter
	}
	b := *r.base
	b.Source = nil

	c, err := b.mockCommon(ctx, ch, kind, st.SettingsKey(), req)
	if err != nil {
		return nil, err
	}
	day := b.now()
	s := models.Session{
		ID: primitive.NilObjectID, ChapterID: ch.ID, Type: models.SessionOrdinary, Subtype: "regular",
		Degree: "apprentice", Date: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		StartTime: "20:00", EndTime: "22:00", Number: 42,
		Agenda: "Leitura do balaústre anterior; expediente; ordem do dia.",
		State:  models.StateHeld,
	}
	if kind == models.KindElectoralMinutes {
		s.Subtype = models.SubtypeElectoral
	}
	c.Session = sessionView(s)
	c.Session.PreviousDate = LongDate(s.Date.AddDate(0, 0, -7))

	for i, role := range models.OfficerRoles {
		c.Officers = append(c.Officers, OfficerView{Role: role, Label: roleLabel(role), Name: sampleNames[i%len(sampleNames)]})
	}
	c.Roles = rolesIndex(c.Officers)
	c.Signatories = pick(c.Officers, models.RoleWorshipfulMaster, models.RoleOrator, models.RoleSecretary)
	c.Present = []PersonView{
		{Name: "Eduardo Martins", Degree: "master", DegreeLabel: label(degreeLabels, "master")},
		{Name: "Fábio Rocha", Degree: "apprentice", DegreeLabel: label(degreeLabels, "apprentice")},
	}
	c.Visitors = []PersonView{{Name: "Gustavo Dias", Degree: "master", DegreeLabel: label(degreeLabels, "master"), HomeChapter: "ARLS Visitante nº 2"}}
	c.Finance = &FinanceView{Category: DefaultCollectionCategory, Cents: 15075, Total: Currency(15075)}
	c.Notices = []NoticeView{{Title: "Comunicado", Summary: "Texto de exemplo.", PublishedOn: ShortDate(s.Date.AddDate(0, 0, -2))}}
	c.Body, c.BodySource = req.body()

	switch kind {
	case models.KindSessionMinutes:
		c.Title = fmt.Sprintf("Balaústre da %dª Sessão %s", s.Number, c.Session.TypeLabel)
	case models.KindElectoralMinutes:
		c.Title = fmt.Sprintf("Balaústre da %dª Sessão %s", s.Number, c.Session.TypeLabel)
		if c.Body == "" {
			c.Script = ElectionScript(c)
		}
	case models.KindNotice:
		c.Title = "Prancha de Convocação"
		c.Signatories = pick(c.Officers, models.RoleWorshipfulMaster, models.RoleSecretary)
	case models.KindCertificate:
		c.Title = "Certificado de Presença"
		c.Member = &c.Present[0]
		c.Signatories = pick(c.Officers, models.RoleWorshipfulMaster, models.RoleSecretary)
		c.CertificateText = fmt.Sprintf("Certificamos que %s esteve presente à %dª Sessão %s da %s, realizada em %s.",
			c.Member.Name, s.Number, c.Session.TypeLabel, c.Chapter.DisplayName, c.Session.DateLong)
		c.ValidationCode = "000000000000"
	default:
		c.Title = st.Kind()
		if ff, ok := st.(*FreeForm); ok {
			c.Title = ff.title
		}
		c.Recipient = &RecipientView{Name: "Destinatário de Exemplo", Title: "Ir∴", Organization: "Organização"}
		c.Signatories = pick(c.Officers, models.RoleWorshipfulMaster)
		if c.Message == "" {
			c.Message = "Mensagem de exemplo."
		}
	}
	return c, nil
}

// mockCommon is common without the umbrella body lookup.
func (b *Base) mockCommon(ctx context.Context, ch models.Chapter, kind, settingsKey string, req Request) (*Context, error) {
	ch.BodyID = primitive.NilObjectID
	return b.common(ctx, ch, kind, settingsKey, req)
}

package docfake

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Scenario is a chapter with officers, members, a visitor, a held session,
// an earlier closed session, a collection and a notice.
type Scenario struct {
	Source *Source

	Body     models.UmbrellaBody
	Chapter  models.Chapter
	Session  models.Session
	Previous models.Session

	Master    models.Member
	Secretary models.Member
	Orator    models.Member
	Brother   models.Member
	Absent    models.Member
	Visitor   models.Visitor
}

// SessionDay is the date of the scenario's held session.
var SessionDay = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

// NewScenario seeds a Source.
func NewScenario() *Scenario {
	src := New()
	now := SessionDay
	sc := &Scenario{Source: src}

	sc.Body = models.UmbrellaBody{ID: primitive.NewObjectID(), Name: "Grande Oriente do Brasil", Level: "federal"}
	sc.Chapter = models.Chapter{
		ID:           primitive.NewObjectID(),
		BodyID:       sc.Body.ID,
		TitlePrefix:  "ARLS",
		Name:         "Estrela do Sul",
		Number:       "33",
		Street:       "Rua das Acácias",
		StreetNumber: "33",
		District:     "Centro",
		City:         "Curitiba",
		State:        "PR",
		ZipCode:      "80000-000",
		Rite:         "Rito Escocês Antigo e Aceito",
		Status:       "active",
	}
	member := func(name, degree, office string) models.Member {
		m := models.Member{
			ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, FullName: name,
			Degree: degree, Office: office, Status: "active",
		}
		src.MemberRows[m.ID] = m
		return m
	}
	sc.Master = member("João da Silva", "master", "")
	sc.Secretary = member("Pedro Alves", "master", "")
	// Orator only has the legacy direct association.
	sc.Orator = member("Carlos Souza", "master", models.RoleOrator)
	sc.Brother = member("André Lima", "apprentice", "")
	sc.Absent = member("Bruno Costa", "fellow", "")

	sc.Visitor = models.Visitor{ID: primitive.NewObjectID(), FullName: "Luís Prado", Degree: "master", HomeChapter: "ARLS Luz do Oriente nº 7"}
	src.VisitorRows[sc.Visitor.ID] = sc.Visitor

	src.Chapters[sc.Chapter.ID] = sc.Chapter
	src.Bodies[sc.Body.ID] = sc.Body

	start := SessionDay.AddDate(-1, 0, 0)
	src.Officers = []models.OfficerAssignment{
		{ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, MemberID: sc.Master.ID, Role: models.RoleWorshipfulMaster, StartDate: start},
		{ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, MemberID: sc.Secretary.ID, Role: models.RoleSecretary, StartDate: start},
	}

	sc.Previous = models.Session{
		ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, Type: models.SessionOrdinary, Subtype: "regular",
		Date: SessionDay.AddDate(0, 0, -14), StartTime: "20:00", Number: 11, State: models.StateClosed,
	}
	sc.Session = models.Session{
		ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, Type: models.SessionOrdinary, Subtype: "regular",
		Degree: "apprentice", Date: SessionDay, StartTime: "20:00", Number: 12,
		Agenda: "Instrução sobre o painel do grau.", State: models.StateHeld,
		CreatedAt: now, UpdatedAt: now,
	}
	src.Sessions[sc.Previous.ID] = sc.Previous
	src.Sessions[sc.Session.ID] = sc.Session

	present := func(mid primitive.ObjectID) models.Attendance {
		id := mid
		return models.Attendance{ID: primitive.NewObjectID(), SessionID: sc.Session.ID, MemberID: &id, Status: models.AttendancePresent, Method: models.MethodBulk}
	}
	absent := sc.Absent.ID
	visitor := sc.Visitor.ID
	src.Attendances = []models.Attendance{
		present(sc.Master.ID), present(sc.Secretary.ID), present(sc.Brother.ID),
		{ID: primitive.NewObjectID(), SessionID: sc.Session.ID, MemberID: &absent, Status: models.AttendanceAbsent, Method: models.MethodBulk},
		{ID: primitive.NewObjectID(), SessionID: sc.Session.ID, VisitorID: &visitor, Status: models.AttendancePresent, Method: models.MethodCheckIn},
	}

	src.Transactions = []models.Transaction{
		{ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, Kind: models.TxCredit, Description: "Tronco de Beneficência", AmountCents: 123456, Date: SessionDay.Add(21 * time.Hour)},
		{ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, Kind: models.TxCredit, Description: "Mensalidade", AmountCents: 5000, Date: SessionDay},
		{ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, Kind: models.TxCredit, Description: "TRONCO extra", AmountCents: 1000, Date: SessionDay.AddDate(0, 0, -1)},
	}
	src.NoticeRows = []models.Notice{
		{ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, Title: "Boletim de outubro", PublishedAt: SessionDay.AddDate(0, 0, -3)},
		{ID: primitive.NewObjectID(), ChapterID: sc.Chapter.ID, Title: "Circular antiga", PublishedAt: SessionDay.AddDate(0, 0, -20)},
	}
	return sc
}

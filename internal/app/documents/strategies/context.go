// Package strategies assembles render contexts, one strategy per document
// kind. Each strategy selects its entry template and settings profile and
// pulls entity state through a Source.
package strategies

import (
	"html/template"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
)

// Context is the data every document template renders from.
type Context struct {
	Kind  string
	Title string

	Chapter  ChapterView
	Assets   AssetsView
	Settings docsettings.TypeSettings
	Styles   map[string]template.CSS
	// HeaderPartial is the header selected by the settings layout.
	HeaderPartial string

	Session     *SessionView
	Officers    []OfficerView
	Roles       map[string]OfficerView
	Signatories []OfficerView
	Present     []PersonView
	Visitors    []PersonView
	Finance     *FinanceView
	Notices     []NoticeView

	// Body is edited text that replaces the structured body when set.
	Body string
	// BodySource is "override", "draft" or "" (auto-generated).
	BodySource string
	Script     []ScriptSection

	Message   string
	Recipient *RecipientView
	Member    *PersonView

	CertificateText string
	ValidationCode  string

	// IssuedOn is the long date of rendering; outside the signed region.
	IssuedOn    string
	Attestation *AttestationView

	// IDs carries the entity identifiers the context was built from.
	IDs ContextIDs
}

// ContextIDs are the identifiers behind a context.
type ContextIDs struct {
	ChapterID primitive.ObjectID
	SessionID primitive.ObjectID
	MemberID  primitive.ObjectID
}

// ChapterView is the chapter identity block.
type ChapterView struct {
	ID          string
	Name        string
	Number      string
	TitlePrefix string
	DisplayName string
	Address     string
	City        string
	State       string
	Rite        string
	BodyName    string
	Affiliation string
}

// AssetsView holds inlined images and fonts.
type AssetsView struct {
	Logo       template.URL
	Watermark  template.URL
	Background template.URL
	FontFaces  template.CSS
}

// SessionView is the session block.
type SessionView struct {
	ID            string
	Number        int
	Type          string
	TypeLabel     string
	Subtype       string
	SubtypeLabel  string
	Degree        string
	DegreeLabel   string
	Date          string // YYYY-MM-DD
	DateLong      string
	Weekday       string
	StartTime     string
	EndTime       string
	Agenda        string
	SentMail      string
	ReceivedMail  string
	StudyDirector string
	Attire        string
	State         string
	PreviousDate  string
}

// OfficerView is one resolved role.
type OfficerView struct {
	Role   string
	Label  string
	Name   string
	Vacant bool
}

// PersonView is a member or visitor.
type PersonView struct {
	Name        string
	Degree      string
	DegreeLabel string
	HomeChapter string
}

// FinanceView is the collection aggregate of a session.
type FinanceView struct {
	Category string
	Cents    int64
	Total    string
}

// NoticeView is one auto-expedient notice.
type NoticeView struct {
	Title       string
	Summary     string
	PublishedOn string
}

// ScriptSection is one heading of a canonical script.
type ScriptSection struct {
	Title string
	Text  string
}

// RecipientView is the addressee of free-form documents. It need not be a
// member.
type RecipientView struct {
	Name         string
	Title        string
	Organization string
}

// AttestationView is the signed block of the final render.
type AttestationView struct {
	Hash       string
	URL        string
	QR         template.URL
	SignedOn   string
	SignerName string
}

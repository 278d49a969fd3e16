package strategies

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dalemusser/chapterhub/internal/app/documents/assets"
	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// DefaultCollectionCategory is the transaction description matched for the
// session collection when none is configured.
const DefaultCollectionCategory = "tronco"

// Base holds what every strategy shares.
type Base struct {
	Source   Source
	Settings *docsettings.Resolver
	Assets   *assets.Resolver
	Log      *zap.Logger

	// CollectionCategory is folded-matched against credit descriptions.
	CollectionCategory string
	// NoticeWindow bounds the auto-expedient when there is no previous session.
	NoticeWindow time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (b *Base) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Base) log() *zap.Logger {
	if b.Log == nil {
		return zap.NewNop()
	}
	return b.Log
}

// common fills the chapter identity, assets, settings and styles.
func (b *Base) common(ctx context.Context, chapter models.Chapter, kind, settingsKey string, req Request) (*Context, error) {
	c := &Context{Kind: kind, IDs: ContextIDs{ChapterID: chapter.ID}}

	var bodyName string
	if !chapter.BodyID.IsZero() {
		body, err := b.Source.Body(ctx, chapter.BodyID)
		switch {
		case err == nil:
			bodyName = body.Name
		case errors.Is(err, docerr.ErrNotFound):
			b.log().Warn("umbrella body missing", zap.String("chapter_id", chapter.ID.Hex()))
		default:
			return nil, err
		}
	}
	c.Chapter = ChapterView{
		ID:          chapter.ID.Hex(),
		Name:        chapter.Name,
		Number:      chapter.Number,
		TitlePrefix: PunctuateAcronym(chapter.TitlePrefix),
		DisplayName: DisplayName(chapter),
		Address:     chapter.FullAddress(),
		City:        chapter.City,
		State:       chapter.State,
		Rite:        chapter.Rite,
		BodyName:    bodyName,
		Affiliation: Affiliation(bodyName),
	}

	c.Settings = b.Settings.Resolve(chapter.DocumentSettings, settingsKey, req.styleLayers()...)
	c.Styles = c.Settings.StyleMap()
	c.HeaderPartial = c.Settings.Header.Layout

	tenant := artifacts.TenantOf(chapter)
	if b.Assets != nil {
		c.Assets = AssetsView{
			Logo:       b.Assets.Resolve(ctx, tenant, chapter.LogoPath),
			Watermark:  b.Assets.Optional(ctx, tenant, c.Settings.Watermark.Image),
			Background: b.Assets.Optional(ctx, tenant, c.Settings.Background.Image),
			FontFaces: b.Assets.FontFaces(ctx, tenant, []string{
				c.Settings.Header.FontFamily, c.Settings.Titles.FontFamily,
				c.Settings.Content.FontFamily, c.Settings.Signatures.FontFamily,
				c.Settings.Footer.FontFamily,
			}),
		}
	} else {
		c.Assets.Logo = assets.DefaultLogo()
	}
	c.IssuedOn = LongDate(b.now())
	c.Message = req.Message
	return c, nil
}

// sessionAndChapter loads a session and its chapter, enforcing the optional
// tenant restriction of the request.
func (b *Base) sessionAndChapter(ctx context.Context, req Request) (models.Session, models.Chapter, error) {
	if req.SessionID.IsZero() {
		return models.Session{}, models.Chapter{}, fmt.Errorf("%w: session id required", docerr.ErrInvalidInput)
	}
	s, err := b.Source.Session(ctx, req.SessionID)
	if err != nil {
		return models.Session{}, models.Chapter{}, fmt.Errorf("session: %w", err)
	}
	if !req.ChapterID.IsZero() && req.ChapterID != s.ChapterID {
		return models.Session{}, models.Chapter{}, fmt.Errorf("session: %w", docerr.ErrNotFound)
	}
	ch, err := b.Source.Chapter(ctx, s.ChapterID)
	if err != nil {
		return models.Session{}, models.Chapter{}, fmt.Errorf("chapter: %w", err)
	}
	return s, ch, nil
}

// sessionView builds the session block without reference data.
func sessionView(s models.Session) *SessionView {
	return &SessionView{
		ID:            s.ID.Hex(),
		Number:        s.Number,
		Type:          s.Type,
		TypeLabel:     label(typeLabels, s.Type),
		Subtype:       s.Subtype,
		SubtypeLabel:  label(subtypeLabels, s.Subtype),
		Degree:        s.Degree,
		DegreeLabel:   label(degreeLabels, s.Degree),
		Date:          s.Date.Format("2006-01-02"),
		DateLong:      LongDate(s.Date),
		Weekday:       Weekday(s.Date),
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Agenda:        s.Agenda,
		SentMail:      s.SentMail,
		ReceivedMail:  s.ReceivedMail,
		StudyDirector: s.StudyDirector,
		Attire:        s.Attire,
		State:         s.State,
	}
}

// withOfficers resolves the roster for day and fills the officer fields.
func (b *Base) withOfficers(ctx context.Context, c *Context, chapter models.Chapter, day time.Time, signers ...string) error {
	officers, err := b.ResolveOfficers(ctx, chapter.ID, day)
	if err != nil {
		return fmt.Errorf("officers: %w", err)
	}
	c.Officers = officers
	c.Roles = rolesIndex(officers)
	c.Signatories = pick(officers, signers...)
	return nil
}

// sessionRefs loads the reference data of the minutes concurrently:
// attendance, previous session, collection and notices.
func (b *Base) sessionRefs(ctx context.Context, c *Context, s models.Session) error {
	var (
		present, visitors []PersonView
		prev              *models.Session
		finance           *FinanceView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		present, visitors, err = b.attendance(gctx, s.ID)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = b.Source.PreviousCompleted(gctx, s)
		return err
	})
	g.Go(func() error {
		var err error
		finance, err = b.collection(gctx, s)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	c.Present, c.Visitors, c.Finance = present, visitors, finance

	c.Session.PreviousDate = NotAvailable
	from := s.Date.Add(-b.noticeWindow())
	if prev != nil {
		c.Session.PreviousDate = LongDate(prev.Date)
		from = prev.Date
	}
	notices, err := b.Source.NoticesBetween(ctx, s.ChapterID, from, s.Date.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return fmt.Errorf("notices: %w", err)
	}
	for _, n := range notices {
		c.Notices = append(c.Notices, NoticeView{Title: n.Title, Summary: n.Summary, PublishedOn: ShortDate(n.PublishedAt)})
	}
	return nil
}

func (b *Base) noticeWindow() time.Duration {
	if b.NoticeWindow > 0 {
		return b.NoticeWindow
	}
	return 30 * 24 * time.Hour
}

// attendance splits present rows into members and visitors, sorted by name.
func (b *Base) attendance(ctx context.Context, sessionID primitive.ObjectID) ([]PersonView, []PersonView, error) {
	rows, err := b.Source.Attendance(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("attendance: %w", err)
	}
	var memberIDs, visitorIDs []primitive.ObjectID
	for _, a := range rows {
		if a.Status != models.AttendancePresent {
			continue
		}
		switch {
		case a.VisitorID != nil:
			visitorIDs = append(visitorIDs, *a.VisitorID)
		case a.MemberID != nil:
			memberIDs = append(memberIDs, *a.MemberID)
		}
	}

	var present, visitors []PersonView
	if len(memberIDs) > 0 {
		members, err := b.Source.Members(ctx, memberIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("members: %w", err)
		}
		for _, m := range members {
			present = append(present, PersonView{Name: m.FullName, Degree: m.Degree, DegreeLabel: label(degreeLabels, m.Degree)})
		}
	}
	if len(visitorIDs) > 0 {
		vs, err := b.Source.Visitors(ctx, visitorIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("visitors: %w", err)
		}
		for _, v := range vs {
			visitors = append(visitors, PersonView{
				Name: v.FullName, Degree: v.Degree, DegreeLabel: label(degreeLabels, v.Degree), HomeChapter: v.HomeChapter,
			})
		}
	}
	sortPeople(present)
	sortPeople(visitors)
	return present, visitors, nil
}

func sortPeople(p []PersonView) {
	sort.SliceStable(p, func(i, j int) bool { return foldText(p[i].Name) < foldText(p[j].Name) })
}

func foldText(s string) string { return text.Fold(s) }

// collection sums the session-day credits matching the collection category.
func (b *Base) collection(ctx context.Context, s models.Session) (*FinanceView, error) {
	category := strings.TrimSpace(b.CollectionCategory)
	if category == "" {
		category = DefaultCollectionCategory
	}
	credits, err := b.Source.CreditsOn(ctx, s.ChapterID, s.Date)
	if err != nil {
		return nil, fmt.Errorf("credits: %w", err)
	}
	want := foldText(category)
	var total int64
	for _, tx := range credits {
		if tx.Kind != models.TxCredit {
			continue
		}
		if strings.Contains(foldText(tx.Description), want) {
			total += tx.AmountCents
		}
	}
	return &FinanceView{Category: category, Cents: total, Total: Currency(total)}, nil
}

package generator

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/attest"
	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/app/documents/paginate"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	"github.com/dalemusser/chapterhub/internal/app/documents/templates"
	draftstore "github.com/dalemusser/chapterhub/internal/app/store/drafts"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/dalemusser/chapterhub/internal/testutil/docfake"
)

const baseURL = "https://docs.example.org"

type fixture struct {
	sc      *docfake.Scenario
	gen     *Generator
	records *docfake.Records
	locker  *docfake.Locker
	pager   *docfake.Paginator
	store   *artifacts.Local
	root    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sc := docfake.NewScenario()
	root := t.TempDir()
	store, err := artifacts.NewLocal(root)
	if err != nil {
		t.Fatal(err)
	}
	clock := func() time.Time { return docfake.SessionDay.Add(23 * time.Hour) }
	base := &strategies.Base{
		Source:   sc.Source,
		Settings: docsettings.NewResolver(zap.NewNop()),
		Log:      zap.NewNop(),
		Now:      clock,
	}
	f := &fixture{
		sc:      sc,
		records: &docfake.Records{},
		locker:  &docfake.Locker{},
		pager:   &docfake.Paginator{},
		store:   store,
		root:    root,
	}
	f.gen = New(Deps{
		Source:     sc.Source,
		Strategies: strategies.NewRegistry(base),
		Templates:  templates.New(store, zap.NewNop()),
		Stored:     &docfake.Templates{},
		Records:    f.records,
		Locker:     f.locker,
		Drafts:     draftstore.New(store),
		Paginator:  f.pager,
		Artifacts:  store,
		Log:        zap.NewNop(),
		Now:        clock,
	}, Config{ValidationBaseURL: baseURL})
	return f
}

// pdfCount counts stored artifacts.
func (f *fixture) pdfCount(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".pdf") {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func (f *fixture) setState(state string) {
	s := f.sc.Session
	s.State = state
	f.sc.Source.PutSession(s)
}

func signReq(sessionID primitive.ObjectID) SignRequest {
	return SignRequest{MinutesRequest: MinutesRequest{SessionID: sessionID}}
}

func TestSign_NoDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.gen.Sign(ctx, signReq(f.sc.Session.ID))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if got := f.records.Count(models.DocSignedMinutes); got != 1 {
		t.Fatalf("signed documents = %d, want 1", got)
	}
	if len(f.records.Signatures) != 1 {
		t.Fatalf("signatures = %d, want 1", len(f.records.Signatures))
	}
	sig := f.records.Signatures[0]
	if !attest.IsHash(sig.Hash) || len(sig.Hash) != 64 {
		t.Errorf("hash = %q", sig.Hash)
	}
	if sig.DocumentID != res.Document.ID || sig.SignerName != "João da Silva" {
		t.Errorf("signature = %+v", sig)
	}
	if !attest.Verify(sig.Canonical, sig.Hash) {
		t.Error("stored canonical form does not hash to the signature")
	}
	if res.URL != baseURL+"/validate/"+sig.Hash {
		t.Errorf("url = %q", res.URL)
	}

	data, err := f.store.Get(ctx, res.Document.StorageKey)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := attest.ExtractHash(data); !ok || got != sig.Hash {
		t.Errorf("embedded hash = %q, %v", got, ok)
	}
	for _, want := range []string{sig.Hash, res.URL, "data:image/png;base64,", "Estrela do Sul", "João da Silva"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("artifact missing %q", want)
		}
	}
	if !strings.HasSuffix(res.Document.FileName, ".pdf") || !strings.HasSuffix(res.Document.StorageKey, ".pdf") {
		t.Errorf("names = %q %q", res.Document.FileName, res.Document.StorageKey)
	}
	if !artifacts.TenantOf(f.sc.Chapter).Owns(res.Document.StorageKey) {
		t.Errorf("artifact %q outside tenant", res.Document.StorageKey)
	}

	c, err := attest.ParseCanonical(sig.Canonical)
	if err != nil {
		t.Fatal(err)
	}
	if c.Nonce != sig.Nonce || c.Session.Number != 12 || c.Chapter.Name != "Estrela do Sul" || c.DraftText != "" {
		t.Errorf("canonical = %+v", c)
	}
	if strings.Contains(string(sig.Canonical), "data:image") {
		t.Error("canonical form carries inlined assets")
	}
}

func TestSign_AlreadySigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.gen.Sign(ctx, signReq(f.sc.Session.ID)); err != nil {
		t.Fatal(err)
	}
	_, err := f.gen.Sign(ctx, signReq(f.sc.Session.ID))
	if !errors.Is(err, docerr.ErrConflict) {
		t.Fatalf("second sign err = %v, want conflict", err)
	}
	if n := f.pdfCount(t); n != 1 {
		t.Errorf("artifacts = %d, want 1", n)
	}
}

func TestSign_RequiresHeld(t *testing.T) {
	for _, state := range []string{models.StateScheduled, models.StateInProgress, models.StateClosed, models.StateCanceled} {
		f := newFixture(t)
		f.setState(state)
		_, err := f.gen.Sign(context.Background(), signReq(f.sc.Session.ID))
		if !errors.Is(err, docerr.ErrInvalidState) {
			t.Errorf("%s: err = %v, want invalid state", state, err)
		}
		if n := f.pdfCount(t); n != 0 {
			t.Errorf("%s: artifacts = %d", state, n)
		}
	}
}

func TestSign_OtherTenant(t *testing.T) {
	f := newFixture(t)
	req := signReq(f.sc.Session.ID)
	req.ChapterID = primitive.NewObjectID()
	if _, err := f.gen.Sign(context.Background(), req); !errors.Is(err, docerr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSign_ConcurrentOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.gen.Sign(ctx, signReq(f.sc.Session.ID))
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, docerr.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Errorf("winners = %d, conflicts = %d", ok, conflicts)
	}
	if len(f.records.Signatures) != 1 {
		t.Errorf("signatures = %d, want 1", len(f.records.Signatures))
	}
	if n := f.pdfCount(t); n != 1 {
		t.Errorf("artifacts = %d, want 1 (no orphans)", n)
	}
}

func TestSign_LeaseHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if ok, _ := f.locker.TryLockSigning(ctx, f.sc.Session.ID, "someone-else", time.Minute); !ok {
		t.Fatal("could not take lease")
	}
	_, err := f.gen.Sign(ctx, signReq(f.sc.Session.ID))
	if !errors.Is(err, docerr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if f.pager.Calls != 0 {
		t.Errorf("paginated %d times while the lease was held elsewhere", f.pager.Calls)
	}
}

func TestSign_HashCollisionRetriesOnce(t *testing.T) {
	f := newFixture(t)
	f.records.FailNext = docerr.ErrHashExists
	res, err := f.gen.Sign(context.Background(), signReq(f.sc.Session.ID))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if f.pager.Calls != 2 {
		t.Errorf("paginations = %d, want 2", f.pager.Calls)
	}
	if n := f.pdfCount(t); n != 1 {
		t.Errorf("artifacts = %d, want 1", n)
	}
	if res.Signature.Hash != f.records.Signatures[0].Hash {
		t.Error("result does not match the recorded signature")
	}
}

// leaseLog records signing-lease requests and can refuse renewals.
type leaseLog struct {
	*docfake.Locker
	mu          sync.Mutex
	owners      []string
	refuseRenew bool
}

func (l *leaseLog) TryLockSigning(ctx context.Context, sessionID primitive.ObjectID, owner string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	l.owners = append(l.owners, owner)
	renewal := len(l.owners) > 1
	l.mu.Unlock()
	if renewal && l.refuseRenew {
		return false, nil
	}
	return l.Locker.TryLockSigning(ctx, sessionID, owner, ttl)
}

func TestSign_HashCollisionRenewsLease(t *testing.T) {
	f := newFixture(t)
	leases := &leaseLog{Locker: f.locker}
	f.gen.Locker = leases
	f.records.FailNext = docerr.ErrHashExists
	if _, err := f.gen.Sign(context.Background(), signReq(f.sc.Session.ID)); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(leases.owners) != 2 {
		t.Fatalf("lease requests = %d, want 2", len(leases.owners))
	}
	if leases.owners[0] != leases.owners[1] {
		t.Errorf("renewal owner %q, want %q", leases.owners[1], leases.owners[0])
	}
}

func TestSign_HashCollisionLeaseLost(t *testing.T) {
	f := newFixture(t)
	f.gen.Locker = &leaseLog{Locker: f.locker, refuseRenew: true}
	f.records.FailNext = docerr.ErrHashExists
	_, err := f.gen.Sign(context.Background(), signReq(f.sc.Session.ID))
	if !errors.Is(err, docerr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if f.pager.Calls != 1 {
		t.Errorf("paginations = %d, want 1", f.pager.Calls)
	}
	if len(f.records.Signatures) != 0 {
		t.Errorf("signatures = %d, want 0", len(f.records.Signatures))
	}
}

func TestSign_PersistFailureRemovesArtifact(t *testing.T) {
	f := newFixture(t)
	f.records.FailNext = errors.New("db down")
	if _, err := f.gen.Sign(context.Background(), signReq(f.sc.Session.ID)); err == nil {
		t.Fatal("expected error")
	}
	if n := f.pdfCount(t); n != 0 {
		t.Errorf("artifacts = %d, want 0", n)
	}
	if len(f.records.Documents) != 0 {
		t.Errorf("documents = %d", len(f.records.Documents))
	}
}

func TestSign_PaginationTimeout(t *testing.T) {
	f := newFixture(t)
	f.pager.Err = paginate.ErrTimeout
	_, err := f.gen.Sign(context.Background(), signReq(f.sc.Session.ID))
	if !errors.Is(err, docerr.ErrTimeout) || docerr.Status(err) != 504 {
		t.Fatalf("err = %v", err)
	}
	if len(f.records.Documents) != 0 || f.pdfCount(t) != 0 {
		t.Error("timeout left state behind")
	}
}

func TestPreview_DraftSupersedesBody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.gen.SaveDraft(ctx, primitive.NilObjectID, f.sc.Session.ID, "CUSTOM BODY",
		map[string]any{"content.alignment": "left"}, "secretary")
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	for _, format := range []PreviewFormat{FormatHTML, FormatPDF} {
		art, err := f.gen.Preview(ctx, MinutesRequest{SessionID: f.sc.Session.ID}, format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		out := string(art.Bytes)
		if !strings.Contains(out, "CUSTOM BODY") {
			t.Errorf("%s: draft text not rendered", format)
		}
		if !strings.Contains(out, "text-align: left") {
			t.Errorf("%s: draft styles not applied", format)
		}
		if strings.Contains(out, "Balaústre anterior") {
			t.Errorf("%s: auto-generated body still present", format)
		}
	}
	if len(f.records.Documents) != 0 || f.pdfCount(t) != 0 {
		t.Error("preview persisted state")
	}
}

func TestPreview_OverrideBeatsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.gen.SaveDraft(ctx, primitive.NilObjectID, f.sc.Session.ID, "FROM DRAFT", nil, ""); err != nil {
		t.Fatal(err)
	}
	override := "FROM REQUEST"
	art, err := f.gen.Preview(ctx, MinutesRequest{SessionID: f.sc.Session.ID, BodyOverride: &override}, FormatHTML)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(art.Bytes, []byte("FROM REQUEST")) || bytes.Contains(art.Bytes, []byte("FROM DRAFT")) {
		t.Error("request override did not take precedence")
	}
}

func TestPreview_ElectoralScript(t *testing.T) {
	f := newFixture(t)
	s := f.sc.Session
	s.Subtype = models.SubtypeElectoral
	f.sc.Source.PutSession(s)

	art, err := f.gen.Preview(context.Background(), MinutesRequest{SessionID: s.ID}, FormatHTML)
	if err != nil {
		t.Fatal(err)
	}
	for _, section := range []string{"Abertura", "Leitura do Estatuto", "Nomeação dos Escrutinadores", "Votação", "Apuração", "Proclamação"} {
		if !strings.Contains(string(art.Bytes), section) {
			t.Errorf("missing section %q", section)
		}
	}
	if !strings.HasPrefix(art.FileName, "balaustre-eleitoral") {
		t.Errorf("file name = %q", art.FileName)
	}
}

func TestPreview_CanceledRejected(t *testing.T) {
	f := newFixture(t)
	f.setState(models.StateCanceled)
	_, err := f.gen.Preview(context.Background(), MinutesRequest{SessionID: f.sc.Session.ID}, FormatHTML)
	if !errors.Is(err, docerr.ErrInvalidState) {
		t.Errorf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.gen.Sign(ctx, signReq(f.sc.Session.ID))
	if err != nil {
		t.Fatal(err)
	}

	v, err := f.gen.Validate(ctx, res.Signature.Hash)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.DocumentID != res.Document.ID.Hex() || v.SessionID != f.sc.Session.ID.Hex() {
		t.Errorf("ids = %+v", v)
	}
	if !strings.Contains(v.Chapter, "Estrela do Sul") || v.Signer != "João da Silva" {
		t.Errorf("identity = %+v", v)
	}
	if !v.SignedAt.Equal(res.Signature.SignedAt) || v.SessionOn != "2026-10-19" {
		t.Errorf("dates = %v %q", v.SignedAt, v.SessionOn)
	}
	if !v.Verified || v.ArtifactIntact == nil || !*v.ArtifactIntact {
		t.Errorf("integrity = %v %v", v.Verified, v.ArtifactIntact)
	}

	for _, h := range []string{"nothex", strings.Repeat("0", 64)} {
		if _, err := f.gen.Validate(ctx, h); !errors.Is(err, docerr.ErrNotFound) {
			t.Errorf("Validate(%q) err = %v", h, err)
		}
	}
}

func TestGenerateNotice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.gen.GenerateNotice(ctx, NoticeRequest{SessionID: f.sc.Session.ID}); !errors.Is(err, docerr.ErrInvalidState) {
		t.Fatalf("held session err = %v", err)
	}

	f.setState(models.StateScheduled)
	out, err := f.gen.GenerateNotice(ctx, NoticeRequest{SessionID: f.sc.Session.ID, Message: "Traje escuro."})
	if err != nil {
		t.Fatalf("GenerateNotice: %v", err)
	}
	if out.Document.Type != models.DocNotice || out.Document.SessionID == nil || *out.Document.SessionID != f.sc.Session.ID {
		t.Errorf("document = %+v", out.Document)
	}
	if !bytes.Contains(out.Artifact.Bytes, []byte("Prancha de Convocação")) {
		t.Error("notice body not rendered")
	}
	has, err := f.gen.HasNotice(ctx, f.sc.Session.ID)
	if err != nil || !has {
		t.Errorf("HasNotice = %v, %v", has, err)
	}
	if n := f.pdfCount(t); n != 1 {
		t.Errorf("artifacts = %d", n)
	}
}

func TestIssueCertificate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.gen.IssueCertificate(ctx, CertificateRequest{SessionID: f.sc.Session.ID, MemberID: f.sc.Brother.ID})
	if err != nil {
		t.Fatalf("IssueCertificate: %v", err)
	}
	if out.Document.MemberID == nil || *out.Document.MemberID != f.sc.Brother.ID {
		t.Errorf("member id = %v", out.Document.MemberID)
	}
	if !bytes.Contains(out.Artifact.Bytes, []byte("André Lima")) {
		t.Error("certificate does not name the member")
	}

	_, err = f.gen.IssueCertificate(ctx, CertificateRequest{SessionID: f.sc.Session.ID, MemberID: f.sc.Absent.ID})
	if !errors.Is(err, docerr.ErrInvalidState) {
		t.Errorf("absent member err = %v", err)
	}
	if n := f.pdfCount(t); n != 1 {
		t.Errorf("artifacts = %d", n)
	}
}

func TestGenerateFreeForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out, err := f.gen.GenerateFreeForm(ctx, models.KindInvitation, FreeFormRequest{
		ChapterID: f.sc.Chapter.ID,
		Recipient: &strategies.RecipientView{Name: "Maria Helena", Organization: "Prefeitura"},
		Message:   "Convidamos para a sessão pública.",
	})
	if err != nil {
		t.Fatalf("GenerateFreeForm: %v", err)
	}
	if out.Document.Type != models.DocInvitation || out.Document.SessionID != nil {
		t.Errorf("document = %+v", out.Document)
	}
	if !bytes.Contains(out.Artifact.Bytes, []byte("Maria Helena")) {
		t.Error("recipient missing")
	}

	if _, err := f.gen.GenerateFreeForm(ctx, models.KindNotice, FreeFormRequest{ChapterID: f.sc.Chapter.ID}); !errors.Is(err, docerr.ErrInvalidInput) {
		t.Errorf("non free-form kind err = %v", err)
	}
}

func TestDownload_TenantScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.gen.Sign(ctx, signReq(f.sc.Session.ID))
	if err != nil {
		t.Fatal(err)
	}

	doc, data, err := f.gen.Download(ctx, f.sc.Chapter.ID, res.Document.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if doc.ID != res.Document.ID || !bytes.Equal(data, res.Artifact.Bytes) {
		t.Error("downloaded artifact differs")
	}
	if _, _, err := f.gen.Download(ctx, primitive.NewObjectID(), res.Document.ID); !errors.Is(err, docerr.ErrNotFound) {
		t.Errorf("foreign tenant err = %v", err)
	}
}

func TestMinutesDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.gen.MinutesDraft(ctx, primitive.NilObjectID, f.sc.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Source != "auto" || !strings.Contains(v.Text, "Balaústre") || v.Historical {
		t.Errorf("auto draft = %+v", v)
	}
	if v.Context == nil || v.Context.Session == nil || v.Context.Assets.Logo != "" {
		t.Error("context missing or carries inlined assets")
	}

	if _, err := f.gen.SaveDraft(ctx, primitive.NilObjectID, f.sc.Session.ID,
		`<p>ok</p><script>alert(1)</script>`, map[string]any{"content": map[string]any{"font_size": "13pt"}}, ""); err != nil {
		t.Fatal(err)
	}
	v, err = f.gen.MinutesDraft(ctx, primitive.NilObjectID, f.sc.Session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Source != "draft" || strings.Contains(v.Text, "script") || !strings.Contains(v.Text, "<p>ok</p>") {
		t.Errorf("stored draft = %+v", v)
	}
	if v.Context.Settings.Content.FontSize != "13pt" {
		t.Errorf("draft styles not applied to context: %q", v.Context.Settings.Content.FontSize)
	}
}

func TestSaveDraft_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.gen.SaveDraft(ctx, primitive.NilObjectID, f.sc.Previous.ID, "late edit", nil, ""); !errors.Is(err, docerr.ErrInvalidState) {
		t.Errorf("closed session err = %v", err)
	}
	bad := map[string]any{"content": map[string]any{"alignment": "diagonal"}}
	if _, err := f.gen.SaveDraft(ctx, primitive.NilObjectID, f.sc.Session.ID, "x", bad, ""); !errors.Is(err, docerr.ErrInvalidInput) {
		t.Errorf("invalid styles err = %v", err)
	}
	v, err := f.gen.MinutesDraft(ctx, primitive.NilObjectID, f.sc.Previous.ID)
	if err != nil || !v.Historical {
		t.Errorf("closed session draft = %+v, %v", v.Historical, err)
	}
}

func TestTemplates_SaveAndUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch := f.sc.Chapter.ID

	v, err := f.gen.Template(ctx, ch, models.KindNotice)
	if err != nil || v.Source != "packaged" || !strings.Contains(v.Content, "Prancha") {
		t.Fatalf("packaged template = %+v, %v", v, err)
	}

	if _, err := f.gen.SaveTemplate(ctx, ch, models.KindNotice, "{{ .Broken "); !errors.Is(err, docerr.ErrInvalidInput) {
		t.Errorf("malformed template err = %v", err)
	}
	content := "---\nheader: modern\n---\n<h1>{{ .Title }}</h1><p>MEU TEXTO</p>\n"
	if _, err := f.gen.SaveTemplate(ctx, ch, models.KindNotice, content); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	v, _ = f.gen.Template(ctx, ch, models.KindNotice)
	if v.Source != "stored" || v.Content != content {
		t.Errorf("stored template = %+v", v)
	}

	f.setState(models.StateScheduled)
	out, err := f.gen.GenerateNotice(ctx, NoticeRequest{SessionID: f.sc.Session.ID})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out.Artifact.Bytes, []byte("MEU TEXTO")) {
		t.Error("stored template not used")
	}
	if out.Artifact.Components.Header != "modern" || !out.Artifact.Components.InlineBody {
		t.Errorf("components = %+v", out.Artifact.Components)
	}
}

func TestTemplatePreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	art, err := f.gen.TemplatePreview(ctx, TemplatePreviewRequest{Kind: models.KindCertificate, Format: FormatHTML})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(art.Bytes, []byte("Certificamos que")) {
		t.Error("mock certificate text missing")
	}

	art, err = f.gen.TemplatePreview(ctx, TemplatePreviewRequest{
		ChapterID: f.sc.Chapter.ID,
		Kind:      models.KindSessionMinutes,
		Content:   "<p>{{ .Chapter.DisplayName }} PREVIEW</p>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(art.Bytes, []byte("Estrela do Sul")) || !bytes.Contains(art.Bytes, []byte("PREVIEW")) {
		t.Error("candidate content not rendered against the chapter")
	}
	if len(f.records.Documents) != 0 || f.pdfCount(t) != 0 {
		t.Error("template preview persisted state")
	}

	if _, err := f.gen.TemplatePreview(ctx, TemplatePreviewRequest{Kind: "nope"}); !errors.Is(err, docerr.ErrInvalidInput) {
		t.Errorf("unknown kind err = %v", err)
	}
}

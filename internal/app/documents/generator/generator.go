// Package generator runs the document pipeline: context build, template
// composition, render, pagination, storage and persistence. Signing adds
// canonicalization and attestation between render and pagination.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/paginate"
	"github.com/dalemusser/chapterhub/internal/app/documents/render"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	"github.com/dalemusser/chapterhub/internal/app/documents/templates"
	draftstore "github.com/dalemusser/chapterhub/internal/app/store/drafts"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/app/system/metrics"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// DefaultLockTTL bounds how long a signing lease is held when the holder
// dies without releasing it.
const DefaultLockTTL = 2 * time.Minute

// Content types of produced artifacts.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// TemplateStore reads and writes chapter templates. Get returns nil when the
// chapter has no stored template for the type.
type TemplateStore interface {
	Get(ctx context.Context, chapterID primitive.ObjectID, docType string) (*models.DocumentTemplate, error)
	Upsert(ctx context.Context, t models.DocumentTemplate) (models.DocumentTemplate, error)
}

// Records persists Documents and Signatures.
type Records interface {
	// RecordSigned inserts the signed minutes Document and its Signature
	// atomically. It returns docerr.ErrAlreadySigned when the session
	// already has signed minutes and docerr.ErrHashExists on a hash clash.
	RecordSigned(ctx context.Context, doc models.Document, sig models.Signature) error
	RecordDocument(ctx context.Context, doc models.Document) error
	// SignedMinutes returns the signed minutes of a session, or nil.
	SignedMinutes(ctx context.Context, sessionID primitive.ObjectID) (*models.Document, error)
	Document(ctx context.Context, id primitive.ObjectID) (models.Document, error)
	SignatureByHash(ctx context.Context, hash string) (models.Signature, error)
	HasDocument(ctx context.Context, sessionID primitive.ObjectID, docType string) (bool, error)
}

// Locker grants the per-session signing lease.
type Locker interface {
	TryLockSigning(ctx context.Context, sessionID primitive.ObjectID, owner string, ttl time.Duration) (bool, error)
	UnlockSigning(ctx context.Context, sessionID primitive.ObjectID, owner string) error
}

// Config holds generator settings.
type Config struct {
	// ValidationBaseURL prefixes validation links; attest.DefaultBaseURL
	// when empty.
	ValidationBaseURL string
	LockTTL           time.Duration
}

// Deps are the collaborators of a Generator.
type Deps struct {
	Source     strategies.Source
	Strategies *strategies.Registry
	Templates  *templates.Registry
	Stored     TemplateStore
	Records    Records
	Locker     Locker
	Drafts     *draftstore.Store
	Paginator  paginate.Paginator
	Artifacts  artifacts.Store
	Metrics    *metrics.Pipeline
	Log        *zap.Logger
	Now        func() time.Time
}

// Generator produces documents.
type Generator struct {
	Deps
	cfg Config
}

// New creates a Generator.
func New(d Deps, cfg Config) *Generator {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	return &Generator{Deps: d, cfg: cfg}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Artifact is a produced file.
type Artifact struct {
	Bytes       []byte
	FileName    string
	ContentType string
	Title       string
	Components  templates.Components
}

// Generated is a persisted document and its artifact.
type Generated struct {
	Document models.Document
	Artifact Artifact
}

// fileSlugs name downloaded files per kind.
var fileSlugs = map[string]string{
	models.KindSessionMinutes:   "balaustre",
	models.KindElectoralMinutes: "balaustre-eleitoral",
	models.KindNotice:           "prancha",
	models.KindCertificate:      "certificado",
	models.KindInvitation:       "convite",
	models.KindCongratulation:   "felicitacoes",
}

func fileName(kind string, c *strategies.Context) string {
	slug, ok := fileSlugs[kind]
	if !ok {
		slug = kind
	}
	if c.Session != nil {
		return fmt.Sprintf("%s-%d.pdf", slug, c.Session.Number)
	}
	return slug + ".pdf"
}

// session loads a session for an operation, enforcing the tenant
// restriction and the state gate gen.
func (g *Generator) session(ctx context.Context, chapterID, sessionID primitive.ObjectID, gen string) (models.Session, error) {
	if sessionID.IsZero() {
		return models.Session{}, fmt.Errorf("%w: session id required", docerr.ErrInvalidInput)
	}
	s, err := g.Source.Session(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if !chapterID.IsZero() && s.ChapterID != chapterID {
		return models.Session{}, fmt.Errorf("session %s: %w", sessionID.Hex(), docerr.ErrNotFound)
	}
	if gen != "" && !s.AllowsDocument(gen) {
		return models.Session{}, fmt.Errorf("%w: %s not allowed while session is %s", docerr.ErrInvalidState, gen, s.State)
	}
	return s, nil
}

// composed is a built context with its template.
type composed struct {
	strategy strategies.Strategy
	ctx      *strategies.Context
	tpl      *template.Template
	comp     templates.Components
	tenant   artifacts.Tenant
}

// prepare resolves the stored template, builds the context with the
// manifest's styles and composes the template.
func (g *Generator) prepare(ctx context.Context, st strategies.Strategy, req strategies.Request, chapterID primitive.ObjectID) (*composed, error) {
	stored, err := g.storedTemplate(ctx, chapterID, st.TemplateName())
	if err != nil {
		return nil, err
	}
	manifest, _, err := g.Templates.Manifest(st.TemplateName(), stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrRender, err)
	}
	req.TemplateStyles = manifest.Styles

	c, err := st.BuildContext(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.compose(ctx, st, c, stored)
}

func (g *Generator) compose(ctx context.Context, st strategies.Strategy, c *strategies.Context, stored *models.DocumentTemplate) (*composed, error) {
	tenant := artifacts.Tenant{}
	if !c.IDs.ChapterID.IsZero() {
		ch, err := g.Source.Chapter(ctx, c.IDs.ChapterID)
		if err != nil {
			return nil, err
		}
		tenant = artifacts.TenantOf(ch)
	}
	tpl, comp, err := g.Templates.Compose(ctx, tenant, st.TemplateName(), stored, templates.Options{Header: c.HeaderPartial})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrRender, err)
	}
	return &composed{strategy: st, ctx: c, tpl: tpl, comp: comp, tenant: tenant}, nil
}

func (g *Generator) storedTemplate(ctx context.Context, chapterID primitive.ObjectID, kind string) (*models.DocumentTemplate, error) {
	if g.Stored == nil || chapterID.IsZero() {
		return nil, nil
	}
	t, err := g.Stored.Get(ctx, chapterID, kind)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	return t, nil
}

// paginate renders c to HTML and prints it.
func (g *Generator) paginate(ctx context.Context, cp *composed) (html string, pdf []byte, err error) {
	html, err = render.Render(cp.tpl, cp.ctx)
	if err != nil {
		g.Log.Error("render failed", zap.String("kind", cp.ctx.Kind), zap.Error(err))
		return "", nil, err
	}
	start := time.Now()
	pdf, err = g.Paginator.Paginate(ctx, html, cp.ctx.Settings.Geometry())
	g.Metrics.ObservePaginate(cp.strategy.DocumentType(), time.Since(start).Seconds())
	if err != nil {
		return "", nil, fmt.Errorf("paginate: %w", err)
	}
	return html, paginate.Normalize(pdf), nil
}

// store writes an artifact under the tenant and returns its key.
func (g *Generator) store(ctx context.Context, t artifacts.Tenant, name string, data []byte) (string, error) {
	key, err := artifacts.NewArtifactKey(t, name)
	if err != nil {
		return "", err
	}
	if err := g.Artifacts.Put(ctx, key, bytes.NewReader(data), ContentTypePDF); err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	return key, nil
}

// discard removes an artifact whose persistence failed.
func (g *Generator) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := g.Artifacts.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, artifacts.ErrNotFound) {
		g.Log.Error("orphan artifact not removed", zap.String("key", key), zap.Error(err))
	}
}

// fail records a failed operation.
func (g *Generator) fail(err error) error {
	if err != nil {
		g.Metrics.Failed(docerr.Kind(err))
	}
	return err
}

// generate produces, stores and records a non-signed document.
func (g *Generator) generate(ctx context.Context, st strategies.Strategy, req strategies.Request, by *primitive.ObjectID) (Generated, error) {
	cp, err := g.prepare(ctx, st, req, req.ChapterID)
	if err != nil {
		return Generated{}, g.fail(err)
	}
	_, pdf, err := g.paginate(ctx, cp)
	if err != nil {
		return Generated{}, g.fail(err)
	}
	name := fileName(st.Kind(), cp.ctx)
	key, err := g.store(ctx, cp.tenant, name, pdf)
	if err != nil {
		return Generated{}, g.fail(err)
	}

	doc := models.Document{
		ID:         primitive.NewObjectID(),
		ChapterID:  cp.ctx.IDs.ChapterID,
		Type:       st.DocumentType(),
		Title:      cp.ctx.Title,
		StorageKey: key,
		FileName:   name,
		Size:       int64(len(pdf)),
		UploadedBy: by,
		CreatedAt:  g.now().UTC(),
	}
	if id := cp.ctx.IDs.SessionID; !id.IsZero() {
		doc.SessionID = &id
	}
	if id := cp.ctx.IDs.MemberID; !id.IsZero() {
		doc.MemberID = &id
	}
	if err := g.Records.RecordDocument(ctx, doc); err != nil {
		g.discard(ctx, key)
		return Generated{}, g.fail(fmt.Errorf("record document: %w", err))
	}
	g.Metrics.Generated(doc.Type)
	g.Log.Info("document generated",
		zap.String("type", doc.Type),
		zap.String("document_id", doc.ID.Hex()),
		zap.String("chapter_id", doc.ChapterID.Hex()))
	return Generated{
		Document: doc,
		Artifact: Artifact{Bytes: pdf, FileName: name, ContentType: ContentTypePDF, Title: doc.Title, Components: cp.comp},
	}, nil
}

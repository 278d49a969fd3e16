package generator

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/render"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	"github.com/dalemusser/chapterhub/internal/app/documents/templates"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// TemplateView is the editable template of a kind.
type TemplateView struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	// Source is "stored" or "packaged".
	Source string `json:"source"`
}

// Template returns the chapter's template for kind, or the packaged default.
func (g *Generator) Template(ctx context.Context, chapterID primitive.ObjectID, kind string) (TemplateView, error) {
	if !models.IsDocumentKind(kind) {
		return TemplateView{}, fmt.Errorf("template %q: %w", kind, docerr.ErrNotFound)
	}
	stored, err := g.storedTemplate(ctx, chapterID, kind)
	if err != nil {
		return TemplateView{}, err
	}
	t, err := g.tenant(ctx, chapterID)
	if err != nil {
		return TemplateView{}, err
	}
	content, err := g.Templates.Editable(ctx, t, kind, stored)
	if err != nil {
		return TemplateView{}, fmt.Errorf("%w: %v", docerr.ErrRender, err)
	}
	v := TemplateView{Type: kind, Content: content, Source: "packaged"}
	if stored != nil && strings.TrimSpace(stored.Content) != "" {
		v.Source = "stored"
	}
	return v, nil
}

// SaveTemplate validates and upserts a chapter template.
func (g *Generator) SaveTemplate(ctx context.Context, chapterID primitive.ObjectID, kind, content string) (models.DocumentTemplate, error) {
	if chapterID.IsZero() {
		return models.DocumentTemplate{}, fmt.Errorf("%w: chapter id required", docerr.ErrInvalidInput)
	}
	if !models.IsDocumentKind(kind) {
		return models.DocumentTemplate{}, fmt.Errorf("%w: unknown document type %q", docerr.ErrInvalidInput, kind)
	}
	if err := templates.Validate(content); err != nil {
		return models.DocumentTemplate{}, fmt.Errorf("%w: %v", docerr.ErrInvalidInput, err)
	}
	if _, err := g.Source.Chapter(ctx, chapterID); err != nil {
		return models.DocumentTemplate{}, err
	}
	return g.Stored.Upsert(ctx, models.DocumentTemplate{ChapterID: chapterID, Type: kind, Content: content})
}

// TemplatePreviewRequest renders candidate template content against sample
// data. Empty Content previews the chapter's current template.
type TemplatePreviewRequest struct {
	ChapterID      primitive.ObjectID
	Kind           string
	Content        string
	StyleOverrides map[string]any
	Format         PreviewFormat
}

// TemplatePreview renders a mock document for template design.
func (g *Generator) TemplatePreview(ctx context.Context, req TemplatePreviewRequest) (Artifact, error) {
	if !models.IsDocumentKind(req.Kind) {
		return Artifact{}, fmt.Errorf("%w: unknown document type %q", docerr.ErrInvalidInput, req.Kind)
	}
	var stored *models.DocumentTemplate
	if strings.TrimSpace(req.Content) != "" {
		if err := templates.Validate(req.Content); err != nil {
			return Artifact{}, fmt.Errorf("%w: %v", docerr.ErrInvalidInput, err)
		}
		stored = &models.DocumentTemplate{ChapterID: req.ChapterID, Type: req.Kind, Content: req.Content}
	} else {
		var err error
		if stored, err = g.storedTemplate(ctx, req.ChapterID, req.Kind); err != nil {
			return Artifact{}, err
		}
	}
	manifest, _, err := g.Templates.Manifest(req.Kind, stored)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", docerr.ErrInvalidInput, err)
	}

	var chapter *models.Chapter
	if !req.ChapterID.IsZero() {
		ch, err := g.Source.Chapter(ctx, req.ChapterID)
		if err != nil {
			return Artifact{}, err
		}
		chapter = &ch
	}
	c, err := g.Strategies.Mock(ctx, req.Kind, chapter, strategies.Request{
		TemplateStyles: manifest.Styles,
		StyleOverrides: req.StyleOverrides,
	})
	if err != nil {
		return Artifact{}, err
	}
	st, err := g.Strategies.Get(req.Kind)
	if err != nil {
		return Artifact{}, err
	}
	cp, err := g.compose(ctx, st, c, stored)
	if err != nil {
		return Artifact{}, err
	}
	if req.Format == FormatHTML {
		html, err := render.Render(cp.tpl, cp.ctx)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Bytes: []byte(html), FileName: "preview.html", ContentType: ContentTypeHTML, Title: c.Title, Components: cp.comp}, nil
	}
	_, pdf, err := g.paginate(ctx, cp)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Bytes: pdf, FileName: "preview.pdf", ContentType: ContentTypePDF, Title: c.Title, Components: cp.comp}, nil
}

func (g *Generator) tenant(ctx context.Context, chapterID primitive.ObjectID) (artifacts.Tenant, error) {
	if chapterID.IsZero() {
		return artifacts.Tenant{}, nil
	}
	ch, err := g.Source.Chapter(ctx, chapterID)
	if err != nil {
		return artifacts.Tenant{}, err
	}
	return artifacts.TenantOf(ch), nil
}

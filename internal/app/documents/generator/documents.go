package generator

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// NoticeRequest asks for a convocation notice.
type NoticeRequest struct {
	ChapterID      primitive.ObjectID
	SessionID      primitive.ObjectID
	Message        string
	StyleOverrides map[string]any
	IssuedBy       *primitive.ObjectID
}

// GenerateNotice produces and records the convocation notice of a
// scheduled session.
func (g *Generator) GenerateNotice(ctx context.Context, req NoticeRequest) (Generated, error) {
	s, err := g.session(ctx, req.ChapterID, req.SessionID, models.GenNotice)
	if err != nil {
		return Generated{}, g.fail(err)
	}
	st, err := g.Strategies.Get(models.KindNotice)
	if err != nil {
		return Generated{}, g.fail(err)
	}
	return g.generate(ctx, st, strategies.Request{
		ChapterID:      s.ChapterID,
		SessionID:      s.ID,
		Message:        req.Message,
		StyleOverrides: req.StyleOverrides,
	}, req.IssuedBy)
}

// CertificateRequest asks for one member's attendance certificate.
type CertificateRequest struct {
	ChapterID      primitive.ObjectID
	SessionID      primitive.ObjectID
	MemberID       primitive.ObjectID
	StyleOverrides map[string]any
	IssuedBy       *primitive.ObjectID
}

// IssueCertificate produces and records an attendance certificate for a
// member recorded present at a held session.
func (g *Generator) IssueCertificate(ctx context.Context, req CertificateRequest) (Generated, error) {
	s, err := g.session(ctx, req.ChapterID, req.SessionID, models.GenCertificate)
	if err != nil {
		return Generated{}, g.fail(err)
	}
	st, err := g.Strategies.Get(models.KindCertificate)
	if err != nil {
		return Generated{}, g.fail(err)
	}
	return g.generate(ctx, st, strategies.Request{
		ChapterID:      s.ChapterID,
		SessionID:      s.ID,
		MemberID:       req.MemberID,
		StyleOverrides: req.StyleOverrides,
	}, req.IssuedBy)
}

// FreeFormRequest asks for an invitation or congratulation card.
type FreeFormRequest struct {
	ChapterID primitive.ObjectID
	// SessionID optionally ties the document to a session.
	SessionID      primitive.ObjectID
	Recipient      *strategies.RecipientView
	Message        string
	StyleOverrides map[string]any
	IssuedBy       *primitive.ObjectID
}

// GenerateFreeForm produces and records an invitation or congratulation.
func (g *Generator) GenerateFreeForm(ctx context.Context, kind string, req FreeFormRequest) (Generated, error) {
	if kind != models.KindInvitation && kind != models.KindCongratulation {
		return Generated{}, g.fail(fmt.Errorf("%w: %q is not a free-form kind", docerr.ErrInvalidInput, kind))
	}
	if req.ChapterID.IsZero() {
		return Generated{}, g.fail(fmt.Errorf("%w: chapter id required", docerr.ErrInvalidInput))
	}
	if !req.SessionID.IsZero() {
		if _, err := g.session(ctx, req.ChapterID, req.SessionID, ""); err != nil {
			return Generated{}, g.fail(err)
		}
	}
	st, err := g.Strategies.Get(kind)
	if err != nil {
		return Generated{}, g.fail(err)
	}
	return g.generate(ctx, st, strategies.Request{
		ChapterID:      req.ChapterID,
		SessionID:      req.SessionID,
		Recipient:      req.Recipient,
		Message:        req.Message,
		StyleOverrides: req.StyleOverrides,
	}, req.IssuedBy)
}

// Download returns the stored artifact of a document. chapterID, when set,
// restricts the lookup to that tenant.
func (g *Generator) Download(ctx context.Context, chapterID, documentID primitive.ObjectID) (models.Document, []byte, error) {
	doc, err := g.Records.Document(ctx, documentID)
	if err != nil {
		return models.Document{}, nil, err
	}
	if !chapterID.IsZero() && doc.ChapterID != chapterID {
		return models.Document{}, nil, fmt.Errorf("document %s: %w", documentID.Hex(), docerr.ErrNotFound)
	}
	ch, err := g.Source.Chapter(ctx, doc.ChapterID)
	if err != nil {
		return models.Document{}, nil, err
	}
	if !artifacts.TenantOf(ch).Owns(doc.StorageKey) {
		return models.Document{}, nil, fmt.Errorf("document %s: %w", documentID.Hex(), docerr.ErrNotFound)
	}
	data, err := g.Artifacts.Get(ctx, doc.StorageKey)
	if errors.Is(err, artifacts.ErrNotFound) {
		return models.Document{}, nil, fmt.Errorf("artifact of %s: %w", documentID.Hex(), docerr.ErrNotFound)
	}
	if err != nil {
		return models.Document{}, nil, err
	}
	return doc, data, nil
}

// HasNotice reports whether a session already has a convocation notice.
func (g *Generator) HasNotice(ctx context.Context, sessionID primitive.ObjectID) (bool, error) {
	return g.Records.HasDocument(ctx, sessionID, models.DocNotice)
}

package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/attest"
	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/render"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// MinutesRequest selects a session's minutes and the edits to apply.
type MinutesRequest struct {
	// ChapterID, when set, restricts the session to that chapter.
	ChapterID      primitive.ObjectID
	SessionID      primitive.ObjectID
	BodyOverride   *string
	StyleOverrides map[string]any
}

// PreviewFormat selects the preview output.
type PreviewFormat string

const (
	FormatPDF  PreviewFormat = "pdf"
	FormatHTML PreviewFormat = "html"
)

// Preview renders the minutes of a session without persisting anything.
func (g *Generator) Preview(ctx context.Context, req MinutesRequest, format PreviewFormat) (Artifact, error) {
	s, err := g.session(ctx, req.ChapterID, req.SessionID, models.GenMinutes)
	if err != nil {
		return Artifact{}, g.fail(err)
	}
	cp, err := g.prepareMinutes(ctx, s, req)
	if err != nil {
		return Artifact{}, g.fail(err)
	}
	name := fileName(cp.strategy.Kind(), cp.ctx)
	if format == FormatHTML {
		html, err := render.Render(cp.tpl, cp.ctx)
		if err != nil {
			return Artifact{}, g.fail(err)
		}
		return Artifact{
			Bytes: []byte(html), FileName: strings.TrimSuffix(name, ".pdf") + ".html",
			ContentType: ContentTypeHTML, Title: cp.ctx.Title, Components: cp.comp,
		}, nil
	}
	_, pdf, err := g.paginate(ctx, cp)
	if err != nil {
		return Artifact{}, g.fail(err)
	}
	g.Metrics.Generated(models.DocMinutesPreview)
	return Artifact{Bytes: pdf, FileName: name, ContentType: ContentTypePDF, Title: cp.ctx.Title, Components: cp.comp}, nil
}

// prepareMinutes builds the minutes context with the stored draft applied.
func (g *Generator) prepareMinutes(ctx context.Context, s models.Session, req MinutesRequest) (*composed, error) {
	sreq := strategies.Request{
		ChapterID:      s.ChapterID,
		SessionID:      s.ID,
		BodyOverride:   req.BodyOverride,
		StyleOverrides: req.StyleOverrides,
	}
	if g.Drafts != nil {
		d, ok, err := g.Drafts.Get(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("draft: %w", err)
		}
		if ok {
			sreq.Draft = &d
		}
	}
	return g.prepare(ctx, g.Strategies.MinutesFor(s), sreq, s.ChapterID)
}

// SignRequest is a MinutesRequest plus the signer.
type SignRequest struct {
	MinutesRequest
	SignerID   primitive.ObjectID
	SignerName string
}

// SignResult describes signed minutes.
type SignResult struct {
	Document  models.Document
	Signature models.Signature
	URL       string
	Artifact  Artifact
}

// Sign produces the signed minutes of a held session. One signer at a time
// holds the session lease; the loser and any later attempt get a conflict.
func (g *Generator) Sign(ctx context.Context, req SignRequest) (SignResult, error) {
	s, err := g.session(ctx, req.ChapterID, req.SessionID, models.GenSign)
	if err != nil {
		return SignResult{}, g.fail(err)
	}

	owner := uuid.NewString()
	ok, err := g.Locker.TryLockSigning(ctx, s.ID, owner, g.cfg.LockTTL)
	if err != nil {
		return SignResult{}, g.fail(fmt.Errorf("signing lock: %w", err))
	}
	if !ok {
		g.Metrics.Conflict()
		return SignResult{}, g.fail(fmt.Errorf("%w: session is being signed", docerr.ErrConflict))
	}
	defer func() {
		if err := g.Locker.UnlockSigning(context.WithoutCancel(ctx), s.ID, owner); err != nil {
			g.Log.Warn("signing lock not released", zap.String("session_id", s.ID.Hex()), zap.Error(err))
		}
	}()

	existing, err := g.Records.SignedMinutes(ctx, s.ID)
	if err != nil {
		return SignResult{}, g.fail(err)
	}
	if existing != nil {
		g.Metrics.Conflict()
		return SignResult{}, g.fail(docerr.ErrAlreadySigned)
	}

	cp, err := g.prepareMinutes(ctx, s, req.MinutesRequest)
	if err != nil {
		return SignResult{}, g.fail(err)
	}
	// The signed region is the body partial rendered before attestation.
	body, err := render.RenderPartial(cp.tpl, "body", cp.ctx)
	if err != nil {
		return SignResult{}, g.fail(err)
	}
	cc := canonicalContext(cp)

	signer := strings.TrimSpace(req.SignerName)
	if signer == "" {
		if wm, ok := cp.ctx.Roles[models.RoleWorshipfulMaster]; ok && !wm.Vacant {
			signer = wm.Name
		}
	}

	for attempt := 0; ; attempt++ {
		res, err := g.signOnce(ctx, cp, body, cc, req, signer)
		if err == nil {
			g.Metrics.Signed()
			g.Metrics.Generated(res.Document.Type)
			g.Log.Info("minutes signed",
				zap.String("session_id", s.ID.Hex()),
				zap.String("document_id", res.Document.ID.Hex()),
				zap.String("hash", res.Signature.Hash))
			return res, nil
		}
		if errors.Is(err, docerr.ErrHashExists) && attempt == 0 {
			g.Log.Warn("signature hash collision; retrying with a fresh nonce", zap.String("session_id", s.ID.Hex()))
			// The retry paginates again; renew so the lease spans it.
			if err := g.renewLease(ctx, s.ID, owner); err != nil {
				return SignResult{}, g.fail(err)
			}
			continue
		}
		if errors.Is(err, docerr.ErrConflict) {
			g.Metrics.Conflict()
		}
		return SignResult{}, g.fail(err)
	}
}

// renewLease extends the signing lease held by owner. Losing the lease to
// another signer is a conflict.
func (g *Generator) renewLease(ctx context.Context, sessionID primitive.ObjectID, owner string) error {
	ok, err := g.Locker.TryLockSigning(ctx, sessionID, owner, g.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("signing lock: %w", err)
	}
	if !ok {
		g.Metrics.Conflict()
		return fmt.Errorf("%w: signing lease lost", docerr.ErrConflict)
	}
	return nil
}

// signOnce hashes with a fresh nonce, renders the attested artifact, stores
// it and records Document and Signature. The artifact is removed when the
// records cannot be written.
func (g *Generator) signOnce(ctx context.Context, cp *composed, body string, cc attest.CanonicalContext, req SignRequest, signer string) (SignResult, error) {
	nonce := attest.NewNonce()
	canonical := attest.Canonicalize(body, cc, nonce)
	hash := attest.Hash(canonical)
	url := attest.ValidationURL(g.cfg.ValidationBaseURL, hash)
	qr, err := attest.QRDataURI(url)
	if err != nil {
		return SignResult{}, fmt.Errorf("%w: %v", docerr.ErrRender, err)
	}
	now := g.now().UTC()

	c := *cp.ctx
	c.Attestation = &strategies.AttestationView{
		Hash:       hash,
		URL:        url,
		QR:         qr,
		SignedOn:   strategies.LongDate(now),
		SignerName: signer,
	}
	attested := *cp
	attested.ctx = &c

	_, pdf, err := g.paginate(ctx, &attested)
	if err != nil {
		return SignResult{}, err
	}
	pdf = attest.Stamp(pdf, hash)

	name := fileName(cp.strategy.Kind(), cp.ctx)
	key, err := g.store(ctx, cp.tenant, name, pdf)
	if err != nil {
		return SignResult{}, err
	}

	sessionID := cp.ctx.IDs.SessionID
	doc := models.Document{
		ID:         primitive.NewObjectID(),
		ChapterID:  cp.ctx.IDs.ChapterID,
		SessionID:  &sessionID,
		Type:       cp.strategy.DocumentType(),
		Title:      cp.ctx.Title,
		StorageKey: key,
		FileName:   name,
		Size:       int64(len(pdf)),
		CreatedAt:  now,
	}
	if !req.SignerID.IsZero() {
		id := req.SignerID
		doc.UploadedBy = &id
	}
	sig := models.Signature{
		ID:         primitive.NewObjectID(),
		DocumentID: doc.ID,
		SessionID:  sessionID,
		Hash:       hash,
		Algorithm:  attest.Algorithm,
		Nonce:      nonce,
		Canonical:  canonical,
		SignerID:   req.SignerID,
		SignerName: signer,
		SignedAt:   now,
	}
	if err := g.Records.RecordSigned(ctx, doc, sig); err != nil {
		g.discard(ctx, key)
		return SignResult{}, err
	}
	return SignResult{
		Document:  doc,
		Signature: sig,
		URL:       url,
		Artifact:  Artifact{Bytes: pdf, FileName: name, ContentType: ContentTypePDF, Title: doc.Title, Components: cp.comp},
	}, nil
}

// canonicalContext extracts the hashed identity fields from a context.
func canonicalContext(cp *composed) attest.CanonicalContext {
	c := cp.ctx
	cc := attest.CanonicalContext{
		DocType: cp.strategy.DocumentType(),
		Chapter: attest.ChapterRef{
			ID:          c.Chapter.ID,
			Name:        c.Chapter.Name,
			TitlePrefix: c.Chapter.TitlePrefix,
			Number:      c.Chapter.Number,
		},
	}
	if s := c.Session; s != nil {
		cc.Session = attest.SessionRef{ID: s.ID, Number: s.Number, Type: s.Type, Subtype: s.Subtype, Date: s.Date}
	}
	for _, o := range c.Officers {
		cc.Officers = append(cc.Officers, attest.OfficerRef{Role: o.Role, Name: o.Name})
	}
	if c.BodySource != "" {
		cc.DraftText = c.Body
	}
	return cc
}

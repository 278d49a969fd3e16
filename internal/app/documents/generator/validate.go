package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/attest"
	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/strategies"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
)

// Validation is the public answer for a content hash.
type Validation struct {
	DocumentID string    `json:"document_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Hash       string    `json:"hash"`
	Algorithm  string    `json:"algorithm"`
	Chapter    string    `json:"chapter"`
	ChapterID  string    `json:"chapter_id"`
	SessionID  string    `json:"session_id"`
	Session    string    `json:"session"`
	SessionOn  string    `json:"session_date"`
	Signer     string    `json:"signer"`
	SignedAt   time.Time `json:"signed_at"`
	// Verified reports that the stored canonical form still hashes to Hash.
	Verified bool `json:"verified"`
	// ArtifactIntact reports that the stored artifact carries Hash; nil
	// when the artifact could not be read.
	ArtifactIntact *bool `json:"artifact_intact,omitempty"`
}

// Validate looks up a signed document by content hash.
func (g *Generator) Validate(ctx context.Context, hash string) (Validation, error) {
	if !attest.IsHash(hash) {
		return Validation{}, fmt.Errorf("hash: %w", docerr.ErrNotFound)
	}
	sig, err := g.Records.SignatureByHash(ctx, hash)
	if err != nil {
		return Validation{}, err
	}
	doc, err := g.Records.Document(ctx, sig.DocumentID)
	if err != nil {
		return Validation{}, err
	}
	ch, err := g.Source.Chapter(ctx, doc.ChapterID)
	if err != nil {
		return Validation{}, err
	}

	v := Validation{
		DocumentID: doc.ID.Hex(),
		Type:       doc.Type,
		Title:      doc.Title,
		Hash:       sig.Hash,
		Algorithm:  sig.Algorithm,
		Chapter:    strategies.DisplayName(ch),
		ChapterID:  ch.ID.Hex(),
		SessionID:  sig.SessionID.Hex(),
		Signer:     sig.SignerName,
		SignedAt:   sig.SignedAt,
		Verified:   attest.Verify(sig.Canonical, sig.Hash),
	}
	s, err := g.Source.Session(ctx, sig.SessionID)
	switch {
	case err == nil:
		v.Session = fmt.Sprintf("%dª Sessão", s.Number)
		v.SessionOn = s.Date.Format("2006-01-02")
	case errors.Is(err, docerr.ErrNotFound):
		g.Log.Warn("signed session missing", zap.String("session_id", v.SessionID))
	default:
		return Validation{}, err
	}

	data, err := g.Artifacts.Get(ctx, doc.StorageKey)
	switch {
	case err == nil:
		got, ok := attest.ExtractHash(data)
		intact := ok && got == sig.Hash
		v.ArtifactIntact = &intact
	case errors.Is(err, artifacts.ErrNotFound):
		g.Log.Warn("signed artifact missing", zap.String("document_id", v.DocumentID))
	default:
		g.Log.Warn("signed artifact unreadable", zap.String("document_id", v.DocumentID), zap.Error(err))
	}
	return v, nil
}

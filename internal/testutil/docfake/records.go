package docfake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/paginate"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Records is an in-memory document and signature store enforcing the same
// uniqueness rules as the Mongo indexes.
type Records struct {
	mu         sync.Mutex
	Documents  []models.Document
	Signatures []models.Signature

	// FailNext, when set, is returned by the next RecordSigned call.
	FailNext error
}

func (r *Records) RecordSigned(_ context.Context, doc models.Document, sig models.Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailNext; err != nil {
		r.FailNext = nil
		return err
	}
	for _, s := range r.Signatures {
		if s.Hash == sig.Hash {
			return docerr.ErrHashExists
		}
	}
	for _, d := range r.Documents {
		if d.Type == models.DocSignedMinutes && d.SessionID != nil && doc.SessionID != nil && *d.SessionID == *doc.SessionID {
			return docerr.ErrAlreadySigned
		}
	}
	r.Documents = append(r.Documents, doc)
	r.Signatures = append(r.Signatures, sig)
	return nil
}

func (r *Records) RecordDocument(_ context.Context, doc models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Documents = append(r.Documents, doc)
	return nil
}

func (r *Records) SignedMinutes(_ context.Context, sessionID primitive.ObjectID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.Documents {
		if d.Type == models.DocSignedMinutes && d.SessionID != nil && *d.SessionID == sessionID {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (r *Records) Document(_ context.Context, id primitive.ObjectID) (models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.Documents {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Document{}, fmt.Errorf("document %s: %w", id.Hex(), docerr.ErrNotFound)
}

func (r *Records) SignatureByHash(_ context.Context, hash string) (models.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Signatures {
		if s.Hash == hash {
			return s, nil
		}
	}
	return models.Signature{}, fmt.Errorf("signature: %w", docerr.ErrNotFound)
}

func (r *Records) HasDocument(_ context.Context, sessionID primitive.ObjectID, docType string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.Documents {
		if d.Type == docType && d.SessionID != nil && *d.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

// Count returns how many documents of docType exist.
func (r *Records) Count(docType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.Documents {
		if d.Type == docType {
			n++
		}
	}
	return n
}

// Locker is an in-memory signing lease.
type Locker struct {
	mu     sync.Mutex
	owners map[primitive.ObjectID]lease
}

type lease struct {
	owner string
	until time.Time
}

func (l *Locker) TryLockSigning(_ context.Context, sessionID primitive.ObjectID, owner string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owners == nil {
		l.owners = map[primitive.ObjectID]lease{}
	}
	now := time.Now()
	if cur, ok := l.owners[sessionID]; ok && cur.until.After(now) && cur.owner != owner {
		return false, nil
	}
	l.owners[sessionID] = lease{owner: owner, until: now.Add(ttl)}
	return true, nil
}

func (l *Locker) UnlockSigning(_ context.Context, sessionID primitive.ObjectID, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.owners[sessionID]; ok && cur.owner == owner {
		delete(l.owners, sessionID)
	}
	return nil
}

// Templates is an in-memory per-chapter template store.
type Templates struct {
	mu   sync.Mutex
	rows map[string]models.DocumentTemplate
}

func templateKey(chapterID primitive.ObjectID, docType string) string {
	return chapterID.Hex() + "/" + docType
}

func (t *Templates) Get(_ context.Context, chapterID primitive.ObjectID, docType string) (*models.DocumentTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[templateKey(chapterID, docType)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (t *Templates) Upsert(_ context.Context, row models.DocumentTemplate) (models.DocumentTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rows == nil {
		t.rows = map[string]models.DocumentTemplate{}
	}
	k := templateKey(row.ChapterID, row.Type)
	if cur, ok := t.rows[k]; ok {
		row.ID = cur.ID
	} else if row.ID.IsZero() {
		row.ID = primitive.NewObjectID()
	}
	row.UpdatedAt = time.Now().UTC()
	t.rows[k] = row
	return row, nil
}

// Paginator returns a fake PDF that embeds the HTML, so tests can search
// the artifact for rendered text.
type Paginator struct {
	mu    sync.Mutex
	Calls int
	// Err, when set, is returned instead of an artifact.
	Err error
}

func (p *Paginator) Paginate(ctx context.Context, html string, _ paginate.Geometry) ([]byte, error) {
	p.mu.Lock()
	p.Calls++
	err := p.Err
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.4\n" + html + "\n%%EOF\n"), nil
}

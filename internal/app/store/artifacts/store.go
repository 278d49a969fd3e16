// internal/app/store/artifacts/store.go
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/dalemusser/chapterhub/internal/domain/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidKey is returned for keys that are absolute or escape their root.
var ErrInvalidKey = errors.New("invalid storage key")

// Store is the object storage used for artifacts, drafts, logos and tenant
// template overrides. Keys are slash-separated and relative.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Tenant is the storage partition of one chapter: {body}/{chapter}/...
type Tenant struct {
	Body    string
	Chapter string
}

// TenantOf returns the storage partition of a chapter.
func TenantOf(c models.Chapter) Tenant {
	return Tenant{Body: c.BodyID.Hex(), Chapter: c.ID.Hex()}
}

// Key joins resource path parts under the tenant root. The result never
// leaves the tenant's partition.
func (t Tenant) Key(parts ...string) (string, error) {
	if t.Body == "" || t.Chapter == "" {
		return "", fmt.Errorf("%w: tenant not set", ErrInvalidKey)
	}
	rel, err := CleanKey(path.Join(parts...))
	if err != nil {
		return "", err
	}
	return path.Join(t.Body, t.Chapter, rel), nil
}

// Owns reports whether key lies inside the tenant's partition.
func (t Tenant) Owns(key string) bool {
	clean, err := CleanKey(key)
	if err != nil {
		return false
	}
	return strings.HasPrefix(clean, t.Body+"/"+t.Chapter+"/")
}

// CleanKey normalizes a relative key, rejecting absolute paths, parent
// references and empty keys.
func CleanKey(key string) (string, error) {
	key = filepath.ToSlash(strings.TrimSpace(key))
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	clean := path.Clean(key)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}

// NewArtifactKey names a new artifact by UUID, preserving the extension of
// the original file name: {body}/{chapter}/documents/{uuid}{ext}.
func NewArtifactKey(t Tenant, originalName string) (string, error) {
	ext := strings.ToLower(path.Ext(originalName))
	return t.Key("documents", uuid.NewString()+ext)
}

// DraftKey is the storage key of a session's minutes draft. Drafts are keyed
// by session, outside tenant partitions.
func DraftKey(sessionID string) string {
	return path.Join("sessions", sessionID, "minutes_draft.json")
}

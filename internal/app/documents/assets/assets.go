// Package assets inlines tenant images and fonts as data URIs so rendered
// HTML is self-contained and the paginator never touches the network or the
// filesystem.
package assets

import (
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
)

//go:embed packaged/*
var packaged embed.FS

// ErrRemote is returned for references that would require network access.
var ErrRemote = errors.New("remote asset references are not allowed")

// maxCached bounds the in-process cache; the cache resets when full.
const maxCached = 256

// Resolver turns asset references into data URIs.
type Resolver struct {
	store artifacts.Store
	log   *zap.Logger

	mu    sync.Mutex
	cache map[string]template.URL
}

// New creates a Resolver reading tenant assets from store.
func New(store artifacts.Store, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{store: store, log: log, cache: make(map[string]template.URL)}
}

// DefaultLogo returns the packaged logo as a data URI.
func DefaultLogo() template.URL {
	raw, err := packaged.ReadFile("packaged/default_logo.svg")
	if err != nil {
		return ""
	}
	return dataURI("image/svg+xml", raw)
}

// Resolve returns ref as a data URI. An empty ref yields the packaged
// default logo; a data URI passes through; anything else is read from the
// tenant's partition. Failures fall back to the default logo and are logged.
func (r *Resolver) Resolve(ctx context.Context, t artifacts.Tenant, ref string) template.URL {
	u, err := r.Lookup(ctx, t, ref)
	if err != nil {
		r.log.Warn("asset unresolved; using default",
			zap.String("ref", ref), zap.String("chapter", t.Chapter), zap.Error(err))
		return DefaultLogo()
	}
	return u
}

// Lookup is Resolve without the fallback.
func (r *Resolver) Lookup(ctx context.Context, t artifacts.Tenant, ref string) (template.URL, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return DefaultLogo(), nil
	case strings.HasPrefix(ref, "data:"):
		return template.URL(ref), nil
	case strings.Contains(ref, "://") || strings.HasPrefix(ref, "//"):
		return "", ErrRemote
	}

	key, err := r.tenantKey(t, ref)
	if err != nil {
		return "", err
	}
	cacheKey := t.Body + "|" + t.Chapter + "|" + key
	r.mu.Lock()
	if u, ok := r.cache[cacheKey]; ok {
		r.mu.Unlock()
		return u, nil
	}
	r.mu.Unlock()

	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read asset %q: %w", key, err)
	}
	u := dataURI(contentType(key, raw), raw)

	r.mu.Lock()
	if len(r.cache) >= maxCached {
		r.cache = make(map[string]template.URL)
	}
	r.cache[cacheKey] = u
	r.mu.Unlock()
	return u, nil
}

// Optional resolves ref when set and returns "" otherwise. Used for
// watermark and background images, which have no default.
func (r *Resolver) Optional(ctx context.Context, t artifacts.Tenant, ref string) template.URL {
	if strings.TrimSpace(ref) == "" {
		return ""
	}
	u, err := r.Lookup(ctx, t, ref)
	if err != nil {
		r.log.Warn("optional asset unresolved", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	return u
}

// tenantKey maps ref into the tenant partition. Keys that already carry the
// tenant prefix are accepted; other tenants' keys are refused.
func (r *Resolver) tenantKey(t artifacts.Tenant, ref string) (string, error) {
	clean, err := artifacts.CleanKey(ref)
	if err != nil {
		return "", err
	}
	if t.Owns(clean) {
		return clean, nil
	}
	return t.Key(clean)
}

var fontExts = []struct{ ext, format string }{
	{".woff2", "woff2"},
	{".woff", "woff"},
	{".ttf", "truetype"},
}

// FontFaces returns @font-face rules for families stored under the tenant's
// fonts/ directory. Families without a stored file are skipped; the browser
// falls back to its own fonts.
func (r *Resolver) FontFaces(ctx context.Context, t artifacts.Tenant, families []string) template.CSS {
	var b strings.Builder
	seen := map[string]bool{}
	for _, fam := range families {
		fam = strings.TrimSpace(fam)
		if fam == "" || seen[fam] {
			continue
		}
		seen[fam] = true
		for _, fe := range fontExts {
			u, err := r.Lookup(ctx, t, path.Join("fonts", fam+fe.ext))
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "@font-face { font-family: '%s'; src: url(%s) format('%s'); }\n",
				strings.ReplaceAll(fam, "'", ""), u, fe.format)
			break
		}
	}
	return template.CSS(b.String())
}

func contentType(key string, raw []byte) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".svg":
		return "image/svg+xml"
	case ".woff2":
		return "font/woff2"
	case ".woff":
		return "font/woff"
	case ".ttf":
		return "font/ttf"
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return http.DetectContentType(raw)
}

func dataURI(contentType string, raw []byte) template.URL {
	return template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw))
}

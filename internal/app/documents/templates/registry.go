// Package templates locates and composes document templates. A document is
// a layout scaffold wired to header, body and footer partials, each named
// symbolically and looked up first in the tenant's storage
// (templates/<kind>/<name>.gohtml) and then among the packaged defaults.
package templates

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dalemusser/chapterhub/internal/app/documents/render"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

//go:embed packaged
var packaged embed.FS

// Partial kinds, also the directory names under templates/.
const (
	KindLayout = "layouts"
	KindHeader = "headers"
	KindBody   = "bodies"
	KindFooter = "footers"
)

// Documented defaults used when a named partial cannot be found.
const (
	DefaultLayout = "doc_base"
	DefaultHeader = "classic"
	DefaultFooter = "standard"

	sharedSignatures = "signatures"
)

var (
	// ErrUnknownKind is returned for document kinds with no entry template.
	ErrUnknownKind = errors.New("unknown document kind")
	// ErrInvalidName is returned for partial names that are not symbolic.
	ErrInvalidName = errors.New("invalid template name")
	// ErrMalformed is returned for templates that do not parse.
	ErrMalformed = errors.New("malformed template")
	// ErrMissingPartial is returned when neither a partial nor its default exists.
	ErrMissingPartial = errors.New("template partial not found")
)

var reName = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,63}$`)

// Manifest is the YAML front matter of an entry template.
type Manifest struct {
	Layout string         `yaml:"layout,omitempty" json:"layout,omitempty"`
	Header string         `yaml:"header,omitempty" json:"header,omitempty"`
	Body   string         `yaml:"body,omitempty" json:"body,omitempty"`
	Footer string         `yaml:"footer,omitempty" json:"footer,omitempty"`
	Styles map[string]any `yaml:"styles,omitempty" json:"styles,omitempty"`
}

// Components records which partials a composition used.
type Components struct {
	Manifest
	InlineBody bool   `json:"inline_body"`
	Source     string `json:"source"` // "stored" or "packaged"
}

// Options adjust a composition.
type Options struct {
	// Header replaces the packaged manifest's header partial (the
	// settings-driven layout). A header named by a stored template wins.
	Header string
}

// Registry resolves partials for a tenant.
type Registry struct {
	store artifacts.Store
	log   *zap.Logger
}

// New creates a Registry. store may be nil, in which case only packaged
// templates are used.
func New(store artifacts.Store, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{store: store, log: log}
}

// Kinds returns the document kinds that have an entry template.
func Kinds() []string {
	return append([]string(nil), models.DocumentKinds...)
}

// PackagedEntry returns the packaged entry template for a document kind.
func PackagedEntry(kind string) (string, error) {
	if !models.IsDocumentKind(kind) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	raw, err := packaged.ReadFile(path.Join("packaged", "entries", kind+".gohtml"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return string(raw), nil
}

// ParseFrontMatter splits content into its manifest and the remaining
// template text. Content without front matter is all body.
func ParseFrontMatter(content string) (Manifest, string, error) {
	var m Manifest
	s := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return m, s, nil
	}
	rest := s[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return m, "", fmt.Errorf("%w: unterminated front matter", ErrMalformed)
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &m); err != nil {
		return m, "", fmt.Errorf("%w: front matter: %v", ErrMalformed, err)
	}
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return m, body, nil
}

// Manifest returns the effective manifest for kind: the packaged entry's
// manifest overlaid with the stored template's front matter. inline is the
// stored template's body text, if any.
func (r *Registry) Manifest(kind string, stored *models.DocumentTemplate) (Components, string, error) {
	entry, err := PackagedEntry(kind)
	if err != nil {
		return Components{}, "", err
	}
	base, _, err := ParseFrontMatter(entry)
	if err != nil {
		return Components{}, "", err
	}
	c := Components{Manifest: base, Source: "packaged"}
	if c.Layout == "" {
		c.Layout = DefaultLayout
	}

	var inline string
	if stored != nil && strings.TrimSpace(stored.Content) != "" {
		m, body, err := ParseFrontMatter(stored.Content)
		if err != nil {
			return Components{}, "", err
		}
		c.Source = "stored"
		if m.Layout != "" {
			c.Layout = m.Layout
		}
		if m.Header != "" {
			c.Header = m.Header
		}
		if m.Body != "" {
			c.Body = m.Body
		}
		if m.Footer != "" {
			c.Footer = m.Footer
		}
		if len(m.Styles) > 0 {
			styles := make(map[string]any, len(c.Styles)+len(m.Styles))
			for k, v := range c.Styles {
				styles[k] = v
			}
			for k, v := range m.Styles {
				styles[k] = v
			}
			c.Styles = styles
		}
		if strings.TrimSpace(body) != "" {
			inline = body
			c.InlineBody = true
		}
	}
	return c, inline, nil
}

// Compose builds the template for a document kind. The root template is the
// layout; "header", "body" and "footer" are its partials.
func (r *Registry) Compose(ctx context.Context, t artifacts.Tenant, kind string, stored *models.DocumentTemplate, opts Options) (*template.Template, Components, error) {
	c, inline, err := r.Manifest(kind, stored)
	if err != nil {
		return nil, Components{}, err
	}
	if opts.Header != "" && !storedNames(stored, "header") {
		c.Header = opts.Header
	}
	defaultBody := c.Body
	if base, _, err := ParseFrontMatter(mustEntry(kind)); err == nil && base.Body != "" {
		defaultBody = base.Body
	}

	layoutSrc, err := r.partial(ctx, t, KindLayout, c.Layout, DefaultLayout)
	if err != nil {
		return nil, c, err
	}
	root, err := template.New(DefaultLayout).Funcs(render.Funcs()).Parse(layoutSrc)
	if err != nil {
		return nil, c, fmt.Errorf("%w: layout %s: %v", ErrMalformed, c.Layout, err)
	}

	sigSrc, err := r.partial(ctx, t, KindBody, sharedSignatures, sharedSignatures)
	if err != nil {
		return nil, c, err
	}
	if _, err := root.New("_" + sharedSignatures).Parse(sigSrc); err != nil {
		return nil, c, fmt.Errorf("%w: signatures: %v", ErrMalformed, err)
	}

	parts := []struct{ kind, name, name0, as, src string }{
		{KindHeader, c.Header, DefaultHeader, "header", ""},
		{KindBody, c.Body, defaultBody, "body", inline},
		{KindFooter, c.Footer, DefaultFooter, "footer", ""},
	}
	for _, p := range parts {
		src := p.src
		if src == "" {
			src, err = r.partial(ctx, t, p.kind, p.name, p.name0)
			if err != nil {
				return nil, c, err
			}
		}
		if _, err := root.New(p.as).Parse(src); err != nil {
			return nil, c, fmt.Errorf("%w: %s %q: %v", ErrMalformed, p.as, p.name, err)
		}
	}
	return root, c, nil
}

// storedNames reports whether the stored template's front matter names the
// given component.
func storedNames(stored *models.DocumentTemplate, component string) bool {
	if stored == nil {
		return false
	}
	m, _, err := ParseFrontMatter(stored.Content)
	if err != nil {
		return false
	}
	switch component {
	case "header":
		return m.Header != ""
	case "footer":
		return m.Footer != ""
	case "body":
		return m.Body != ""
	}
	return false
}

// Editable returns the template a tenant would edit for kind: the stored
// content when present, otherwise the packaged entry manifest followed by
// the packaged body partial as an inline body.
func (r *Registry) Editable(ctx context.Context, t artifacts.Tenant, kind string, stored *models.DocumentTemplate) (string, error) {
	if stored != nil && strings.TrimSpace(stored.Content) != "" {
		return stored.Content, nil
	}
	c, _, err := r.Manifest(kind, nil)
	if err != nil {
		return "", err
	}
	body, err := r.partial(ctx, t, KindBody, c.Body, c.Body)
	if err != nil {
		return "", err
	}
	head, err := yaml.Marshal(c.Manifest)
	if err != nil {
		return "", err
	}
	return "---\n" + string(head) + "---\n" + body, nil
}

func mustEntry(kind string) string {
	s, _ := PackagedEntry(kind)
	return s
}

// partial finds a partial by symbolic name: tenant override, then packaged,
// then the documented default name for the kind.
func (r *Registry) partial(ctx context.Context, t artifacts.Tenant, kind, name, fallback string) (string, error) {
	if name == "" {
		name = fallback
	}
	if !reName.MatchString(name) {
		r.log.Warn("invalid partial name; using default", zap.String("kind", kind), zap.String("name", name))
		name = fallback
	}

	if r.store != nil && t.Chapter != "" {
		key, err := t.Key("templates", kind, name+".gohtml")
		if err == nil {
			raw, err := r.store.Get(ctx, key)
			switch {
			case err == nil:
				return string(raw), nil
			case !errors.Is(err, artifacts.ErrNotFound):
				r.log.Warn("tenant template unreadable; trying packaged",
					zap.String("key", key), zap.Error(err))
			}
		}
	}

	if raw, err := packaged.ReadFile(path.Join("packaged", kind, name+".gohtml")); err == nil {
		return string(raw), nil
	}
	if name != fallback {
		r.log.Warn("partial not found; using default",
			zap.String("kind", kind), zap.String("name", name), zap.String("default", fallback))
		return r.partial(ctx, t, kind, fallback, fallback)
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingPartial, kind, name)
}

// Validate checks that stored template content parses: front matter, names
// and the inline body if present.
func Validate(content string) error {
	m, body, err := ParseFrontMatter(content)
	if err != nil {
		return err
	}
	for _, n := range []string{m.Layout, m.Header, m.Body, m.Footer} {
		if n != "" && !reName.MatchString(n) {
			return fmt.Errorf("%w: %q", ErrInvalidName, n)
		}
	}
	if strings.TrimSpace(body) != "" {
		if _, err := template.New("body").Funcs(render.Funcs()).Parse(body); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return nil
}

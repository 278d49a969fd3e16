package strategies

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// Request carries the inputs of a context build. Only the fields a kind
// needs are read.
type Request struct {
	// ChapterID restricts the build to one tenant; for free-form kinds it is
	// the primary id.
	ChapterID primitive.ObjectID
	SessionID primitive.ObjectID
	MemberID  primitive.ObjectID

	// Draft is the stored draft, if any.
	Draft *models.Draft
	// BodyOverride is edited text supplied with the request.
	BodyOverride *string
	// StyleOverrides are request-time settings overrides (nested or dotted).
	StyleOverrides map[string]any
	// TemplateStyles come from the entry template's manifest.
	TemplateStyles map[string]any

	Message   string
	Recipient *RecipientView
}

// styleLayers orders the settings overrides: template, draft, request.
func (r Request) styleLayers() []map[string]any {
	layers := []map[string]any{r.TemplateStyles}
	if r.Draft != nil {
		layers = append(layers, r.Draft.Styles)
	}
	return append(layers, r.StyleOverrides)
}

// body applies the precedence override > draft > auto-generated.
func (r Request) body() (text, source string) {
	if r.BodyOverride != nil && strings.TrimSpace(*r.BodyOverride) != "" {
		return *r.BodyOverride, "override"
	}
	if r.Draft != nil && strings.TrimSpace(r.Draft.Text) != "" {
		return r.Draft.Text, "draft"
	}
	return "", ""
}

// Strategy builds the render context of one document kind.
type Strategy interface {
	// Kind is the registry key.
	Kind() string
	// TemplateName is the entry template.
	TemplateName() string
	// SettingsKey selects the per-type settings profile.
	SettingsKey() string
	// DocumentType is the tag stored on generated Documents.
	DocumentType() string
	BuildContext(ctx context.Context, req Request) (*Context, error)
}

// Registry indexes strategies by kind.
type Registry struct {
	base   *Base
	byKind map[string]Strategy
}

// NewRegistry registers every document kind over base.
func NewRegistry(base *Base) *Registry {
	minutes := &Minutes{Base: base}
	r := &Registry{base: base, byKind: map[string]Strategy{}}
	for _, s := range []Strategy{
		minutes,
		&ElectoralMinutes{Minutes: minutes},
		&Notice{Base: base},
		&Certificate{Base: base},
		&FreeForm{Base: base, kind: models.KindInvitation, settingsKey: docsettings.KeyInvite, title: "Convite"},
		&FreeForm{Base: base, kind: models.KindCongratulation, settingsKey: docsettings.KeyCongratulation, title: "Felicitações"},
	} {
		r.byKind[s.Kind()] = s
	}
	return r
}

// Get returns the strategy for kind.
func (r *Registry) Get(kind string) (Strategy, error) {
	s, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: document kind %q", docerr.ErrNotFound, kind)
	}
	return s, nil
}

// MinutesFor returns the minutes strategy matching the session subtype.
func (r *Registry) MinutesFor(s models.Session) Strategy {
	if s.IsElectoral() {
		return r.byKind[models.KindElectoralMinutes]
	}
	return r.byKind[models.KindSessionMinutes]
}

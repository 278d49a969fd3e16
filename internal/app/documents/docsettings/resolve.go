package docsettings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
)

// aliases layer an additional profile over a settings key. Older chapters
// stored invitation styles under "convite"; newer ones under "invitation".
var aliases = map[string][]string{
	KeyInvite:     {KeyInvitation},
	KeyInvitation: {KeyInvite},
}

// Resolver computes effective settings. The zero value logs nothing.
type Resolver struct {
	Log *zap.Logger
}

// NewResolver returns a Resolver that logs validation failures to log.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{Log: log}
}

// Resolve returns the effective settings for settingsKey. Layers merge as
// defaults, base, type profile, then each override in order (nested or
// dotted keys). Any decode or validation failure yields Defaults() and a
// warning; Resolve never fails.
func (r *Resolver) Resolve(blob map[string]any, settingsKey string, overrides ...map[string]any) TypeSettings {
	ts, err := Compute(blob, settingsKey, overrides...)
	if err != nil {
		if r != nil && r.Log != nil {
			r.Log.Warn("document settings invalid; using defaults",
				zap.String("settings_key", settingsKey), zap.Error(err))
		}
		return Defaults()
	}
	return ts
}

// Compute is Resolve without the fallback; it reports why a blob is invalid.
func Compute(blob map[string]any, settingsKey string, overrides ...map[string]any) (TypeSettings, error) {
	tree := Tree(blob, settingsKey, overrides...)
	ts, err := decode(tree)
	if err != nil {
		return TypeSettings{}, err
	}
	if err := ts.Validate(); err != nil {
		return TypeSettings{}, err
	}
	return ts, nil
}

// Tree returns the merged, undecoded tree for settingsKey. Unknown keys are
// carried along.
func Tree(blob map[string]any, settingsKey string, overrides ...map[string]any) map[string]any {
	h := Normalize(blob)
	tree := defaultTree()
	merge(tree, h.Base)
	if p, ok := h.Types[settingsKey]; ok {
		merge(tree, p)
	} else {
		for _, alias := range aliases[settingsKey] {
			if p, ok := h.Types[alias]; ok {
				merge(tree, p)
				break
			}
		}
	}
	for _, o := range overrides {
		if len(o) == 0 {
			continue
		}
		merge(tree, expand(o))
	}
	return tree
}

func decode(tree map[string]any) (TypeSettings, error) {
	var ts TypeSettings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &ts,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return TypeSettings{}, err
	}
	if err := dec.Decode(tree); err != nil {
		return TypeSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return ts, nil
}

var (
	reLength = regexp.MustCompile(`^\d+(\.\d+)?(cm|mm|in|px|pt|em|rem|%)$`)
	reColor  = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)
	reFont   = regexp.MustCompile(`^[\p{L}\p{N} ,'\-]{1,80}$`)

	pageSizes    = set("A3", "A4", "A5", "Letter", "Legal")
	orientations = set("portrait", "landscape")
	borderStyles = set("solid", "dashed", "dotted", "double", "groove", "ridge")
	alignments   = set("left", "right", "center", "justify")
	layouts      = set("classic", "modern")
)

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// Validate checks enums, lengths, colors and ranges.
func (ts TypeSettings) Validate() error {
	var errs []error
	check := func(ok bool, field string, v any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s: invalid value %v", field, v))
		}
	}
	length := func(field, v string) { check(reLength.MatchString(v), field, v) }
	color := func(field, v string) { check(reColor.MatchString(v), field, v) }
	ref := func(field, v string) { check(!strings.ContainsAny(v, "\"'()<>\\ \n\t"), field, v) }
	text := func(group string, s TextStyle) {
		check(reFont.MatchString(s.FontFamily), group+".font_family", s.FontFamily)
		length(group+".font_size", s.FontSize)
		color(group+".color", s.Color)
		check(alignments[s.Alignment], group+".alignment", s.Alignment)
		length(group+".spacing", s.Spacing)
		check(s.LineHeight > 0 && s.LineHeight <= 4, group+".line_height", s.LineHeight)
	}

	check(pageSizes[ts.Page.Size], "page.size", ts.Page.Size)
	check(orientations[ts.Page.Orientation], "page.orientation", ts.Page.Orientation)
	length("page.margin", ts.Page.Margin)
	length("page.padding", ts.Page.Padding)

	check(borderStyles[ts.Border.Style], "border.style", ts.Border.Style)
	length("border.width", ts.Border.Width)
	color("border.color", ts.Border.Color)

	ref("watermark.image", ts.Watermark.Image)
	check(ts.Watermark.Opacity >= 0 && ts.Watermark.Opacity <= 1, "watermark.opacity", ts.Watermark.Opacity)
	color("background.color", ts.Background.Color)
	ref("background.image", ts.Background.Image)

	text("header", ts.Header.TextStyle)
	length("header.logo_size", ts.Header.LogoSize)
	check(layouts[ts.Header.Layout], "header.layout", ts.Header.Layout)
	text("titles", ts.Titles.TextStyle)
	text("content", ts.Content)
	text("signatures", ts.Signatures.TextStyle)
	color("signatures.line_color", ts.Signatures.LineColor)
	text("footer", ts.Footer)

	return errors.Join(errs...)
}

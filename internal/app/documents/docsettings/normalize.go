package docsettings

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// groups are the top-level branches of the style tree.
var groups = map[string]bool{
	"page": true, "border": true, "watermark": true, "background": true,
	"header": true, "titles": true, "content": true, "signatures": true, "footer": true,
}

var textGroups = []string{"header", "titles", "content", "signatures", "footer"}

// legacyLeaves maps flat profile keys to the tree paths they populate.
var legacyLeaves = map[string][]string{
	"page_size":         {"page.size"},
	"page_orientation":  {"page.orientation"},
	"orientation":       {"page.orientation"},
	"page_margin":       {"page.margin"},
	"margin":            {"page.margin"},
	"page_padding":      {"page.padding"},
	"show_border":       {"border.show"},
	"border_style":      {"border.style"},
	"border_width":      {"border.width"},
	"border_color":      {"border.color"},
	"watermark_image":   {"watermark.image"},
	"watermark_opacity": {"watermark.opacity"},
	"background_color":  {"background.color"},
	"background_image":  {"background.image"},
	"show_page_numbers": {"page_numbers"},
	"page_numbers":      {"page_numbers"},
	"font_family":       fanOut("font_family"),
	"text_color":        fanOut("color"),
	"font_size":         {"content.font_size"},
	"text_align":        {"content.alignment"},
	"alignment":         {"content.alignment"},
	"line_height":       {"content.line_height"},
	"header_font_size":  {"header.font_size"},
	"title_font_size":   {"titles.font_size"},
	"footer_font_size":  {"footer.font_size"},
	"logo_size":         {"header.logo_size"},
	"header_layout":     {"header.layout"},
	"header_border":     {"header.border_bottom"},
	"title_uppercase":   {"titles.uppercase"},
	"signature_line":    {"signatures.line_color"},
	"show_sign_date":    {"signatures.show_date"},
}

func fanOut(leaf string) []string {
	out := make([]string, 0, len(textGroups))
	for _, g := range textGroups {
		out = append(out, g+"."+leaf)
	}
	return out
}

// Hierarchy is the normalized form of a stored blob.
type Hierarchy struct {
	SchemaVersion int
	Base          map[string]any
	Types         map[string]map[string]any
}

// IsLegacy reports whether blob is a flat profile: none of the per-type keys
// and at least one recognized style leaf.
func IsLegacy(blob map[string]any) bool {
	if len(blob) == 0 {
		return false
	}
	for k := range blob {
		if IsTypeKey(k) || k == keyBase {
			return false
		}
	}
	for k := range blob {
		if _, ok := legacyLeaves[k]; ok {
			return true
		}
		if groups[k] || strings.Contains(k, ".") {
			return true
		}
	}
	return false
}

// Normalize upcasts a stored blob into a Hierarchy. A legacy flat profile is
// replicated under every type key. Flat leaves inside any profile are
// expanded into the tree; unknown keys are kept and later ignored.
func Normalize(blob map[string]any) Hierarchy {
	h := Hierarchy{SchemaVersion: SchemaVersion, Base: map[string]any{}, Types: map[string]map[string]any{}}
	if IsLegacy(blob) {
		for _, k := range TypeKeys {
			h.Types[k] = expand(blob)
		}
		return h
	}

	loose := map[string]any{}
	for k, v := range blob {
		switch {
		case k == keySchemaVersion:
		case k == keyBase:
			if m, ok := asMap(v); ok {
				h.Base = expand(m)
			}
		case IsTypeKey(k):
			if m, ok := asMap(v); ok {
				h.Types[k] = expand(m)
			}
		default:
			loose[k] = v
		}
	}
	// Leaves stored next to the type keys act as part of the base profile.
	if len(loose) > 0 {
		base := expand(loose)
		merge(base, h.Base)
		h.Base = base
	}
	return h
}

// Wrap is the inverse view of a legacy upcast: it places profile under every
// per-type key.
func Wrap(profile map[string]any) map[string]any {
	out := make(map[string]any, len(TypeKeys))
	for _, k := range TypeKeys {
		out[k] = clone(profile)
	}
	return out
}

// expand turns one profile (nested, flat, or dotted) into tree form.
// Nested groups apply first, then legacy leaves, then dotted keys, so the
// most specific spelling wins.
func expand(profile map[string]any) map[string]any {
	out := map[string]any{}
	keys := sortedKeys(profile)

	for _, k := range keys {
		if !groups[k] {
			continue
		}
		if m, ok := asMap(profile[k]); ok {
			sub, _ := asMap(out[k])
			if sub == nil {
				sub = map[string]any{}
			}
			merge(sub, m)
			out[k] = sub
		}
	}
	for _, k := range keys {
		paths, ok := legacyLeaves[k]
		if !ok {
			continue
		}
		for _, p := range paths {
			setPath(out, p, profile[k])
		}
	}
	for _, k := range keys {
		if groups[k] {
			continue
		}
		if _, ok := legacyLeaves[k]; ok {
			continue
		}
		if strings.Contains(k, ".") {
			setPath(out, k, profile[k])
			continue
		}
		out[k] = profile[k]
	}
	return out
}

// asMap accepts the map shapes produced by JSON and BSON decoding.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(m))
		for k, vv := range m {
			out[k] = plain(vv)
		}
		return out, true
	case primitive.M:
		return asMap(map[string]any(m))
	case primitive.D:
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[e.Key] = plain(e.Value)
		}
		return out, true
	}
	return nil, false
}

func plain(v any) any {
	if m, ok := asMap(v); ok {
		return m
	}
	return v
}

func setPath(tree map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := asMap(cur[p])
		if !ok {
			next = map[string]any{}
		}
		cur[p] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = plain(v)
}

// merge deep-merges src into dst; leaves in src win.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := asMap(v); ok {
			if dm, ok := asMap(dst[k]); ok {
				merge(dm, sm)
				dst[k] = dm
				continue
			}
			dst[k] = clone(sm)
			continue
		}
		dst[k] = v
	}
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sm, ok := asMap(v); ok {
			out[k] = clone(sm)
			continue
		}
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package docsettings resolves a chapter's document-settings blob into the
// fully-populated style tree used by templates and the paginator.
//
// The stored blob is a hierarchy: an optional "base" profile plus one profile
// per settings key (balaustre, prancha, convite, invitation, congratulation).
// Older chapters carry a flat profile (page_margin, font_family, ...) with no
// per-type keys; that form is upcast on read and applies to every type.
package docsettings

// Settings keys recognized in the stored blob.
const (
	KeyMinutes        = "balaustre"
	KeyNotice         = "prancha"
	KeyInvite         = "convite"
	KeyInvitation     = "invitation"
	KeyCongratulation = "congratulation"

	keyBase          = "base"
	keySchemaVersion = "schema_version"
)

// SchemaVersion is written by Normalize.
const SchemaVersion = 2

// TypeKeys lists the per-type profile keys in a stable order.
var TypeKeys = []string{KeyMinutes, KeyNotice, KeyInvite, KeyInvitation, KeyCongratulation}

// IsTypeKey reports whether k names a per-type profile.
func IsTypeKey(k string) bool {
	for _, t := range TypeKeys {
		if t == k {
			return true
		}
	}
	return false
}

// Page is the page geometry.
type Page struct {
	Size        string `mapstructure:"size" json:"size"`
	Orientation string `mapstructure:"orientation" json:"orientation"`
	Margin      string `mapstructure:"margin" json:"margin"`
	Padding     string `mapstructure:"padding" json:"padding"`
}

// Border is the optional frame drawn around every page.
type Border struct {
	Show  bool   `mapstructure:"show" json:"show"`
	Style string `mapstructure:"style" json:"style"`
	Width string `mapstructure:"width" json:"width"`
	Color string `mapstructure:"color" json:"color"`
}

// Watermark is a faded image behind the page content. Image is an asset
// reference resolved by the assets package.
type Watermark struct {
	Image   string  `mapstructure:"image" json:"image"`
	Opacity float64 `mapstructure:"opacity" json:"opacity"`
}

// Background is the page background.
type Background struct {
	Color string `mapstructure:"color" json:"color"`
	Image string `mapstructure:"image" json:"image"`
}

// TextStyle is shared by the five style groups.
type TextStyle struct {
	FontFamily string  `mapstructure:"font_family" json:"font_family"`
	FontSize   string  `mapstructure:"font_size" json:"font_size"`
	Color      string  `mapstructure:"color" json:"color"`
	Alignment  string  `mapstructure:"alignment" json:"alignment"`
	Spacing    string  `mapstructure:"spacing" json:"spacing"`
	LineHeight float64 `mapstructure:"line_height" json:"line_height"`
}

// HeaderStyle adds the logo and layout flags.
type HeaderStyle struct {
	TextStyle    `mapstructure:",squash"`
	LogoSize     string `mapstructure:"logo_size" json:"logo_size"`
	BorderBottom bool   `mapstructure:"border_bottom" json:"border_bottom"`
	Layout       string `mapstructure:"layout" json:"layout"`
}

// TitleStyle adds case and weight flags.
type TitleStyle struct {
	TextStyle `mapstructure:",squash"`
	Uppercase bool `mapstructure:"uppercase" json:"uppercase"`
	Bold      bool `mapstructure:"bold" json:"bold"`
}

// SignatureStyle adds the signature line color and date flag.
type SignatureStyle struct {
	TextStyle `mapstructure:",squash"`
	LineColor string `mapstructure:"line_color" json:"line_color"`
	ShowDate  bool   `mapstructure:"show_date" json:"show_date"`
}

// TypeSettings is the effective settings of one document type. Every field
// is populated after Resolve.
type TypeSettings struct {
	Page        Page           `mapstructure:"page" json:"page"`
	Border      Border         `mapstructure:"border" json:"border"`
	Watermark   Watermark      `mapstructure:"watermark" json:"watermark"`
	Background  Background     `mapstructure:"background" json:"background"`
	PageNumbers bool           `mapstructure:"page_numbers" json:"page_numbers"`
	Header      HeaderStyle    `mapstructure:"header" json:"header"`
	Titles      TitleStyle     `mapstructure:"titles" json:"titles"`
	Content     TextStyle      `mapstructure:"content" json:"content"`
	Signatures  SignatureStyle `mapstructure:"signatures" json:"signatures"`
	Footer      TextStyle      `mapstructure:"footer" json:"footer"`
}

const defaultFont = "Times New Roman"

// defaultTree holds the documented defaults in tree form. Resolution starts
// from a deep copy of it.
func defaultTree() map[string]any {
	text := func(size, color, align, spacing string, lh float64) map[string]any {
		return map[string]any{
			"font_family": defaultFont,
			"font_size":   size,
			"color":       color,
			"alignment":   align,
			"spacing":     spacing,
			"line_height": lh,
		}
	}
	header := text("14pt", "#000000", "center", "12pt", 1.2)
	header["logo_size"] = "90px"
	header["border_bottom"] = true
	header["layout"] = "classic"

	titles := text("16pt", "#000000", "center", "10pt", 1.2)
	titles["uppercase"] = true
	titles["bold"] = true

	signatures := text("11pt", "#000000", "center", "24pt", 1.2)
	signatures["line_color"] = "#000000"
	signatures["show_date"] = true

	return map[string]any{
		"page": map[string]any{
			"size":        "A4",
			"orientation": "portrait",
			"margin":      "2.5cm",
			"padding":     "0.5cm",
		},
		"border": map[string]any{
			"show":  false,
			"style": "solid",
			"width": "1px",
			"color": "#000000",
		},
		"watermark":    map[string]any{"image": "", "opacity": 0.08},
		"background":   map[string]any{"color": "#ffffff", "image": ""},
		"page_numbers": true,
		"header":       header,
		"titles":       titles,
		"content":      text("12pt", "#000000", "justify", "6pt", 1.5),
		"signatures":   signatures,
		"footer":       text("9pt", "#555555", "center", "4pt", 1.2),
	}
}

var defaults = func() TypeSettings {
	ts, err := decode(defaultTree())
	if err != nil {
		panic("docsettings: defaults do not decode: " + err.Error())
	}
	if err := ts.Validate(); err != nil {
		panic("docsettings: defaults do not validate: " + err.Error())
	}
	return ts
}()

// Defaults returns the fully-default profile.
func Defaults() TypeSettings { return defaults }

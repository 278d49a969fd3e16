package docsettings

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/dalemusser/chapterhub/internal/app/documents/paginate"
)

// StyleMap renders each style group as a CSS declaration list, keyed by
// group name. Templates place them in the single <style> block.
func (ts TypeSettings) StyleMap() map[string]template.CSS {
	decl := func(pairs ...string) template.CSS {
		var b strings.Builder
		for i := 0; i+1 < len(pairs); i += 2 {
			if pairs[i+1] == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s; ", pairs[i], pairs[i+1])
		}
		return template.CSS(strings.TrimSpace(b.String()))
	}
	text := func(s TextStyle, extra ...string) template.CSS {
		pairs := []string{
			"font-family", quoteFont(s.FontFamily),
			"font-size", s.FontSize,
			"color", s.Color,
			"text-align", s.Alignment,
			"line-height", strconv.FormatFloat(s.LineHeight, 'f', -1, 64),
			"margin-bottom", s.Spacing,
		}
		return decl(append(pairs, extra...)...)
	}

	border := "none"
	if ts.Border.Show {
		border = ts.Border.Width + " " + ts.Border.Style + " " + ts.Border.Color
	}
	headerBorder := "none"
	if ts.Header.BorderBottom {
		headerBorder = "1px solid " + ts.Header.Color
	}
	titleCase, titleWeight := "none", "normal"
	if ts.Titles.Uppercase {
		titleCase = "uppercase"
	}
	if ts.Titles.Bold {
		titleWeight = "bold"
	}

	return map[string]template.CSS{
		"page":           decl("padding", ts.Page.Padding, "background-color", ts.Background.Color),
		"border":         decl("border", border),
		"watermark":      decl("opacity", strconv.FormatFloat(ts.Watermark.Opacity, 'f', -1, 64)),
		"header":         text(ts.Header.TextStyle, "border-bottom", headerBorder),
		"logo":           decl("width", ts.Header.LogoSize, "height", "auto"),
		"titles":         text(ts.Titles.TextStyle, "text-transform", titleCase, "font-weight", titleWeight),
		"content":        text(ts.Content),
		"signatures":     text(ts.Signatures.TextStyle),
		"signature_line": decl("border-top", "1px solid "+ts.Signatures.LineColor),
		"footer":         text(ts.Footer),
	}
}

func quoteFont(f string) string {
	if f == "" || strings.ContainsAny(f, "',") {
		return f
	}
	if strings.Contains(f, " ") {
		return "'" + f + "', serif"
	}
	return f + ", serif"
}

// paperSizes in inches, portrait.
var paperSizes = map[string][2]float64{
	"A3":     {11.69, 16.54},
	"A4":     {8.27, 11.69},
	"A5":     {5.83, 8.27},
	"Letter": {8.5, 11},
	"Legal":  {8.5, 14},
}

// Geometry derives the paginator page geometry.
func (ts TypeSettings) Geometry() paginate.Geometry {
	size, ok := paperSizes[ts.Page.Size]
	if !ok {
		size = paperSizes["A4"]
	}
	margin, ok := ToInches(ts.Page.Margin)
	if !ok {
		margin, _ = ToInches(defaults.Page.Margin)
	}
	return paginate.Geometry{
		PaperWidth:      size[0],
		PaperHeight:     size[1],
		Landscape:       ts.Page.Orientation == "landscape",
		MarginTop:       margin,
		MarginRight:     margin,
		MarginBottom:    margin,
		MarginLeft:      margin,
		PrintBackground: true,
		PageNumbers:     ts.PageNumbers,
		FooterFont:      ts.Footer.FontFamily,
		FooterFontSize:  ts.Footer.FontSize,
		FooterColor:     ts.Footer.Color,
	}
}

// ToInches converts an absolute CSS length. Relative units are not
// convertible.
func ToInches(length string) (float64, bool) {
	m := reLength.FindStringSubmatch(length)
	if m == nil {
		return 0, false
	}
	unit := m[2]
	n, err := strconv.ParseFloat(strings.TrimSuffix(length, unit), 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "in":
		return n, true
	case "cm":
		return n / 2.54, true
	case "mm":
		return n / 25.4, true
	case "pt":
		return n / 72, true
	case "px":
		return n / 96, true
	}
	return 0, false
}

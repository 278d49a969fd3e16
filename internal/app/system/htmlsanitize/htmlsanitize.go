// Package htmlsanitize cleans user-edited HTML (minutes drafts, free-form
// messages) before it is embedded in rendered documents.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func documentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "sub", "sup", "mark")
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th", "p", "span", "div")
		p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		p.AllowStyles("text-align").
			MatchingEnum("left", "right", "center", "justify").
			OnElements("p", "div", "h1", "h2", "h3", "h4", "td", "th")
		policy = p
	})
	return policy
}

// Sanitize strips scripts, event handlers, iframes and other unsafe markup.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return documentPolicy().Sanitize(s)
}

// SanitizeToHTML sanitizes s and marks it safe for html/template.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}

// BodyHTML turns draft text into safe HTML. Plain text is escaped and split
// into paragraphs on blank lines, keeping single newlines as <br>.
func BodyHTML(s string) template.HTML {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !IsPlainText(s) {
		return SanitizeToHTML(s)
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(lines[i]))
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

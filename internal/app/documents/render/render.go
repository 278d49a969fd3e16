// Package render evaluates composed document templates into HTML.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"reflect"
	"strings"

	"github.com/dalemusser/chapterhub/internal/app/system/htmlsanitize"
)

// ErrRender wraps template evaluation failures.
var ErrRender = errors.New("render failed")

// Funcs is the function map available to every document template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"upper":    strings.ToUpper,
		"default":  defaultValue,
		"css":      func(s string) template.CSS { return template.CSS(s) },
		"join":     strings.Join,
		"nl2br":    nl2br,
		"richtext": htmlsanitize.BodyHTML,
	}
}

// defaultValue returns v, or def when v is the zero value of its type.
// Usage: {{ default "N/A" .Session.PreviousDate }}.
func defaultValue(def, v any) any {
	if v == nil {
		return def
	}
	rv := reflect.ValueOf(v)
	if rv.IsZero() {
		return def
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.Len() == 0 {
		return def
	}
	return v
}

func nl2br(s string) template.HTML {
	s = template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(s, "\n", "<br>"))
}

// Render executes the template's root and returns the full HTML document.
func Render(tpl *template.Template, data any) (string, error) {
	if tpl == nil {
		return "", fmt.Errorf("%w: no template", ErrRender)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// RenderPartial executes one named partial (for example "body").
func RenderPartial(tpl *template.Template, name string, data any) (string, error) {
	if tpl == nil || tpl.Lookup(name) == nil {
		return "", fmt.Errorf("%w: partial %q not defined", ErrRender, name)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	return buf.String(), nil
}

// Package paginate turns a self-contained HTML document into a paginated PDF.
package paginate

import (
	"bytes"
	"context"
	"errors"
	"regexp"
)

// ErrTimeout is returned when pagination exceeds its wall-clock limit.
var ErrTimeout = errors.New("pagination timed out")

// ErrClosed is returned by a paginator that has been shut down.
var ErrClosed = errors.New("paginator closed")

// Geometry describes the printed page. Lengths are in inches.
type Geometry struct {
	PaperWidth   float64
	PaperHeight  float64
	Landscape    bool
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	PrintBackground bool

	// PageNumbers prints "n / total" in the bottom margin using the footer
	// font settings.
	PageNumbers    bool
	FooterFont     string
	FooterFontSize string
	FooterColor    string
}

// Paginator renders HTML into a paginated artifact.
type Paginator interface {
	Paginate(ctx context.Context, html string, g Geometry) ([]byte, error)
}

// Embedded PDF dates look like (D:20250101120000+00'00').
var pdfDate = regexp.MustCompile(`/(CreationDate|ModDate)\s*\(D:[0-9+\-Z' ]+\)`)

var digit = regexp.MustCompile(`[0-9]`)

// Normalize zeroes the digits of embedded creation and modification dates.
// The byte length is preserved so cross-reference offsets stay valid; two
// renders of the same HTML become byte-equal.
func Normalize(pdf []byte) []byte {
	return pdfDate.ReplaceAllFunc(pdf, func(m []byte) []byte {
		open := bytes.IndexByte(m, '(')
		out := append([]byte(nil), m[:open]...)
		return append(out, digit.ReplaceAll(m[open:], []byte("0"))...)
	})
}

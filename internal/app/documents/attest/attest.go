// Package attest binds documents to content hashes. The hash covers a
// canonical serialization of the rendered body and a stable subset of the
// render context; a per-signing nonce inside the signed region makes every
// reissue distinct while keeping stored signatures reproducible.
package attest

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// Algorithm names the content digest.
	Algorithm = "sha256"
	// CanonicalVersion is written into every canonical serialization.
	CanonicalVersion = 1
	// DefaultBaseURL is the validation base used when none is configured.
	DefaultBaseURL = "http://localhost:8080"

	trailerPrefix = "%DGSC-Attestation: sha256="
)

// ChapterRef identifies the issuing chapter.
type ChapterRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TitlePrefix string `json:"title_prefix"`
	Number      string `json:"number"`
}

// SessionRef identifies the session the document records.
type SessionRef struct {
	ID      string `json:"id"`
	Number  int    `json:"number"`
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Date    string `json:"date"` // YYYY-MM-DD
}

// OfficerRef is one row of the officer roster.
type OfficerRef struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// CanonicalContext is the part of the render context covered by the hash.
// Render timestamps and asset data are not part of it.
type CanonicalContext struct {
	DocType   string
	Chapter   ChapterRef
	Session   SessionRef
	Officers  []OfficerRef
	DraftText string
}

// Canonical is the decoded form of a canonical serialization. Field order
// is the serialization order.
type Canonical struct {
	Version   int          `json:"v"`
	Nonce     string       `json:"nonce"`
	DocType   string       `json:"doc_type"`
	Chapter   ChapterRef   `json:"chapter"`
	Session   SessionRef   `json:"session"`
	Officers  []OfficerRef `json:"officers"`
	DraftText string       `json:"draft_text"`
	Body      string       `json:"body"`
}

var (
	reSpace      = regexp.MustCompile(`\s+`)
	reInterTag   = regexp.MustCompile(`>\s+<`)
	reHash       = regexp.MustCompile(`^[0-9a-f]{64}$`)
	reTrailerHex = regexp.MustCompile(`^[0-9a-f]{64}`)
)

// NormalizeHTML collapses whitespace runs and drops whitespace between tags.
func NormalizeHTML(s string) string {
	s = reSpace.ReplaceAllString(s, " ")
	s = reInterTag.ReplaceAllString(s, "><")
	return strings.TrimSpace(s)
}

// NormalizeText unifies line endings and trims trailing spaces per line.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Canonicalize returns the deterministic byte form of the signed region.
func Canonicalize(body string, c CanonicalContext, nonce string) []byte {
	officers := c.Officers
	if officers == nil {
		officers = []OfficerRef{}
	}
	doc := Canonical{
		Version:   CanonicalVersion,
		Nonce:     nonce,
		DocType:   c.DocType,
		Chapter:   c.Chapter,
		Session:   c.Session,
		Officers:  officers,
		DraftText: NormalizeText(c.DraftText),
		Body:      NormalizeHTML(body),
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings, ints and slices cannot fail.
	_ = enc.Encode(doc)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// ParseCanonical decodes a canonical serialization.
func ParseCanonical(b []byte) (Canonical, error) {
	var c Canonical
	if err := json.Unmarshal(b, &c); err != nil {
		return Canonical{}, fmt.Errorf("parse canonical: %w", err)
	}
	return c, nil
}

// Hash returns the hex digest of b (64 characters).
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Verify reports whether canonical hashes to hash.
func Verify(canonical []byte, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(canonical)), []byte(hash)) == 1
}

// IsHash reports whether s is a well-formed content hash.
func IsHash(s string) bool { return reHash.MatchString(s) }

// NewNonce returns a fresh signing nonce.
func NewNonce() string { return uuid.NewString() }

// ShortCode returns the first 12 hex characters of the digest of parts.
func ShortCode(parts ...string) string {
	return Hash([]byte(strings.Join(parts, "\x1f")))[:12]
}

// ValidationURL is {base}/validate/{hash}.
func ValidationURL(base, hash string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/validate/" + hash
}

// QRDataURI encodes content as a PNG QR code data URI.
func QRDataURI(content string) (template.URL, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

// Stamp appends the attestation trailer comment to a PDF artifact.
// Readers ignore comments after the final %%EOF.
func Stamp(artifact []byte, hash string) []byte {
	out := make([]byte, 0, len(artifact)+len(trailerPrefix)+len(hash)+2)
	out = append(out, artifact...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, trailerPrefix...)
	out = append(out, hash...)
	return append(out, '\n')
}

// ExtractHash returns the hash carried by a stamped artifact.
func ExtractHash(artifact []byte) (string, bool) {
	i := bytes.LastIndex(artifact, []byte(trailerPrefix))
	if i < 0 {
		return "", false
	}
	rest := artifact[i+len(trailerPrefix):]
	m := reTrailerHex.Find(rest)
	if m == nil {
		return "", false
	}
	return string(m), true
}

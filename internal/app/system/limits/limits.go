// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxDocumentRequestSize bounds generate, preview and sign requests,
	// which may carry an edited minutes body.
	MaxDocumentRequestSize = 1 << 20 // 1 MB

	// MaxTemplateSize bounds stored template content.
	MaxTemplateSize = 256 << 10 // 256 KB

	// MaxDraftSize bounds a saved minutes draft.
	MaxDraftSize = 512 << 10 // 512 KB
)

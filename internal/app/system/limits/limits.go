// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxUploadBody bounds one paper upload request: a handful of scanned
	// exam PDFs or images encoded as base64 data URLs.
	MaxUploadBody = 64 << 20 // 64 MB

	// MaxAuthBody is the maximum size for register and login request bodies.
	MaxAuthBody = 1 << 20 // 1 MB
)

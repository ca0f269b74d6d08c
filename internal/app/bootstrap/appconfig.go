// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request body size limits. AppConfig is
// everything specific to the portal itself.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: qprep-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Bearer token configuration
	TokenSecret string        // HMAC secret for signing API tokens
	TokenExpiry time.Duration // Token lifetime (default: 24h)

	// Cross-origin configuration for the browser client
	CORSAllowedOrigins []string // Origins allowed to call the API

	// Catalog configuration
	PayloadCacheSize int // Paper payloads held in the in-memory LRU cache

	// SuperAdmin bootstrap: creates or promotes this account on startup
	SuperAdminEmail    string
	SuperAdminPassword string
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	healthfeature "github.com/qprep/qprep/internal/app/features/health"
	loginfeature "github.com/qprep/qprep/internal/app/features/login"
	papersfeature "github.com/qprep/qprep/internal/app/features/papers"
	superadminfeature "github.com/qprep/qprep/internal/app/features/superadmin"
	paperstore "github.com/qprep/qprep/internal/app/store/papers"
	userstore "github.com/qprep/qprep/internal/app/store/users"
	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/catalog"
	"github.com/qprep/qprep/internal/app/system/timeouts"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. QPrep wires the session manager, the
// bearer token issuer, the in-memory paper catalog, and the JSON API
// feature routers, then wraps everything in CORS for the browser client.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Session manager with secure cookies in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data is fetched on each request so role changes and
	// disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.QPrepMongoDatabase))

	tokens, err := auth.NewTokenIssuer(appCfg.TokenSecret, appCfg.TokenExpiry)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetTokenIssuer(tokens)

	// Stores and the catalog.
	papers := paperstore.New(deps.QPrepMongoDatabase)
	users := userstore.New(deps.QPrepMongoDatabase)

	cat, err := catalog.NewStore(papers, papers, appCfg.PayloadCacheSize, logger)
	if err != nil {
		logger.Error("catalog init failed", zap.Error(err))
		return nil, err
	}

	// Warm the catalog. A failed initial build is not fatal: the API
	// serves empty browse results until the next successful reload.
	warmCtx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()
	if err := cat.Reload(warmCtx); err != nil {
		logger.Warn("initial catalog build failed; starting with an empty catalog", zap.Error(err))
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.QPrepMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus metrics (catalog rebuilds, payload cache hit rates)
	r.Handle("/metrics", promhttp.Handler())

	// Authentication and session routing
	loginHandler := loginfeature.NewHandler(users, sessionMgr, tokens, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler))
	r.Mount("/api/session", loginfeature.SessionRoutes(loginHandler))

	// Paper browsing, uploads, and deletion
	papersHandler := papersfeature.NewHandler(papers, cat, logger)
	r.Mount("/api/papers", papersfeature.Routes(papersHandler, sessionMgr))
	r.Mount("/api/manage", papersfeature.ManageRoutes(papersHandler, sessionMgr))

	// Super admin dashboard and user management
	superAdminHandler := superadminfeature.NewHandler(users, papers, logger)
	r.Mount("/api/super-admin", superadminfeature.Routes(superAdminHandler, sessionMgr))

	c := cors.New(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Cookie"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
	})

	return c.Handler(r), nil
}

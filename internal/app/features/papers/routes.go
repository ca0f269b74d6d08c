// internal/app/features/papers/routes.go
package papers

import (
	"github.com/go-chi/chi/v5"

	"github.com/qprep/qprep/internal/app/system/auth"
)

// Routes mounts the paper endpoints under whatever base path the caller
// chooses (typically "/api/papers" from bootstrap).
//
// Route precedence matters: chi matches the literal "/bulk-delete"
// before the "/{id}" wildcard, so the super-admin bulk route is safe to
// register alongside the single delete.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Browse surface: any signed-in user.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/courses", h.ServeCourses)
		pr.Get("/years", h.ServeYears)
		pr.Get("/resolve", h.ServeResolve)
		pr.Get("/{id}", h.ServeGet)
	})

	// Upload and replace: admins, moderators, and the super admin.
	// Moderator department/level locking happens in the handlers.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin", "moderator", "super_admin"))

		pr.Post("/", h.ServeCreate)
		pr.Put("/{id}", h.ServeReplace)
	})

	// Single delete: admins and the super admin, not moderators.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin", "super_admin"))

		pr.Delete("/{id}", h.ServeDelete)
	})

	// Bulk delete: super admin only.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("super_admin"))

		pr.Delete("/bulk-delete", h.ServeBulkDelete)
	})

	return r
}

// ManageRoutes mounts the upload-scope endpoint (typically under
// "/api/manage" from bootstrap).
func ManageRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin", "moderator", "super_admin"))

		pr.Get("/scope", h.ServeScope)
	})

	return r
}

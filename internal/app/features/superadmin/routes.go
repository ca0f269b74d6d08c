// internal/app/features/superadmin/routes.go
package superadmin

import (
	"github.com/go-chi/chi/v5"

	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/authz"
)

// Routes are mounted at /api/super-admin and require the super_admin
// role for every endpoint.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(authz.RoleSuperAdmin))

	r.Get("/stats", h.ServeStats)
	r.Get("/users", h.ServeListUsers)
	r.Patch("/users/{id}/role", h.ServeUpdateRole)
	r.Delete("/users/{id}", h.ServeDeleteUser)

	return r
}

// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
)

// Routes are mounted at /api/auth and require no authentication.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	return r
}

// SessionRoutes are mounted at /api/session. The view endpoint answers
// for anonymous sessions too, so it sits outside the signed-in gate.
func SessionRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/view", h.ServeSessionView)
	return r
}

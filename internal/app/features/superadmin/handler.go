// internal/app/features/superadmin/handler.go
package superadmin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	paperstore "github.com/qprep/qprep/internal/app/store/papers"
	userstore "github.com/qprep/qprep/internal/app/store/users"
	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/authz"
	"github.com/qprep/qprep/internal/app/system/respond"
	"github.com/qprep/qprep/internal/app/system/timeouts"
	"github.com/qprep/qprep/internal/domain/models"
)

// Handler serves the super admin dashboard: portal statistics, the
// user list, role changes, and account removal.
type Handler struct {
	Users  *userstore.Store
	Papers *paperstore.Store
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, papers *paperstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Papers: papers, Log: logger}
}

type statsResponse struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalStudents int64 `json:"totalStudents"`
	TotalAdmins   int64 `json:"totalAdmins"`
	TotalPapers   int64 `json:"totalPapers"`
}

// ServeStats returns headline counts for the dashboard. Moderators
// count as admins here since they share the admin surface.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "portal stats")
	defer cancel()

	users, err := h.Users.Count(ctx)
	if err != nil {
		h.Log.Error("count users", zap.Error(err))
		respond.Internal(w, r)
		return
	}
	students, err := h.Users.CountByRole(ctx, authz.RoleStudent)
	if err != nil {
		h.Log.Error("count students", zap.Error(err))
		respond.Internal(w, r)
		return
	}
	admins, err := h.Users.CountByRole(ctx, authz.RoleAdmin)
	if err != nil {
		h.Log.Error("count admins", zap.Error(err))
		respond.Internal(w, r)
		return
	}
	moderators, err := h.Users.CountByRole(ctx, authz.RoleModerator)
	if err != nil {
		h.Log.Error("count moderators", zap.Error(err))
		respond.Internal(w, r)
		return
	}
	papers, err := h.Papers.Count(ctx)
	if err != nil {
		h.Log.Error("count papers", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	respond.OK(w, r, statsResponse{
		TotalUsers:    users,
		TotalStudents: students,
		TotalAdmins:   admins + moderators,
		TotalPapers:   papers,
	})
}

// ServeListUsers returns every account, newest first, without
// password hashes.
func (h *Handler) ServeListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error("list users", zap.Error(err))
		respond.Internal(w, r)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respond.OK(w, r, users)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// ServeUpdateRole changes another user's role. Super admins cannot
// change their own role, which would otherwise let the last super
// admin lock everyone out of user management.
func (h *Handler) ServeUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "invalid user ID")
		return
	}

	if u, ok := auth.CurrentUser(r); ok && u.ID == id.Hex() {
		respond.Forbidden(w, r, "You cannot change your own role")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid JSON body")
		return
	}
	switch req.Role {
	case authz.RoleStudent, authz.RoleAdmin, authz.RoleModerator, authz.RoleSuperAdmin:
	default:
		respond.BadRequest(w, r, "unknown role")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update user role")
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.NotFound(w, r, err.Error())
			return
		}
		h.Log.Error("update role", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	h.Log.Info("role updated",
		zap.String("user_id", id.Hex()),
		zap.String("role", req.Role))
	respond.Message(w, r, "User role updated successfully")
}

// ServeDeleteUser removes an account. Self-deletion is refused for the
// same reason as self role changes.
func (h *Handler) ServeDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "invalid user ID")
		return
	}

	if u, ok := auth.CurrentUser(r); ok && u.ID == id.Hex() {
		respond.Forbidden(w, r, "You cannot delete your own account")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete user")
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.NotFound(w, r, err.Error())
			return
		}
		h.Log.Error("delete user", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	h.Log.Info("user deleted", zap.String("user_id", id.Hex()))
	respond.Message(w, r, "User deleted successfully")
}

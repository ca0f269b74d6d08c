// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/qprep/qprep/internal/app/system/auth"
)

// Roles, from least to most privileged. Moderators are department-scoped
// uploaders; admins upload anywhere; super admins additionally manage users.
const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleSuperAdmin = "super_admin"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false, so callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsSuperAdmin reports whether the current request's user is a super admin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleSuperAdmin
}

// IsAdmin reports whether the current request's user is an admin.
// Super admins are also considered admins for permission purposes.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == RoleAdmin || role == RoleSuperAdmin)
}

// IsModerator reports whether the current request's user is a moderator.
func IsModerator(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleModerator
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleStudent
}

// CanManagePapers reports whether the current user can upload, replace, or
// delete papers. Admins and super admins can everywhere; moderators can
// within their locked department and level scope (enforced at the handler).
func CanManagePapers(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == RoleAdmin || role == RoleSuperAdmin || role == RoleModerator
}

// View names the client surface a role lands on after login.
type View string

const (
	ViewStudent    View = "student"
	ViewAdmin      View = "admin"
	ViewSuperAdmin View = "super-admin"
	ViewLogin      View = "login"
)

// RouteView maps a role to its post-login view. Moderators share the admin
// view; anything unrecognized routes back to login.
func RouteView(role string) View {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleSuperAdmin:
		return ViewSuperAdmin
	case RoleAdmin, RoleModerator:
		return ViewAdmin
	case RoleStudent:
		return ViewStudent
	default:
		return ViewLogin
	}
}

// UploadScope is the department/level a manager's uploads are pinned to.
// Locked means the values override whatever the request supplies.
type UploadScope struct {
	Department string `json:"department"`
	Level      string `json:"level"`
	Locked     bool   `json:"locked"`
}

// UploadScopeFor returns the upload scope for a managing user. Moderators
// are locked to their own department and level; admins and super admins
// choose freely per upload.
func UploadScopeFor(u *auth.SessionUser) UploadScope {
	if u == nil {
		return UploadScope{}
	}
	if strings.ToLower(u.Role) == RoleModerator {
		return UploadScope{Department: u.Department, Level: u.Level, Locked: true}
	}
	return UploadScope{Department: u.Department, Level: u.Level}
}

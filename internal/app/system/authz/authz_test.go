package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/authz"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test User",
		Role: role,
	})
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, _, userID, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false when no user in context")
	}
	if role != "visitor" {
		t.Errorf("expected visitor role, got %q", role)
	}
	if userID != primitive.NilObjectID {
		t.Error("expected NilObjectID when no user in context")
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-a-hex-id", Role: "admin"})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected ok=false for malformed user ID")
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	role, _, _, ok := authz.UserCtx(requestWithRole("Super_Admin"))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != authz.RoleSuperAdmin {
		t.Errorf("expected lowercased role, got %q", role)
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role       string
		superAdmin bool
		admin      bool
		moderator  bool
		student    bool
		canManage  bool
	}{
		{"student", false, false, false, true, false},
		{"admin", false, true, false, false, true},
		{"moderator", false, false, true, false, true},
		{"super_admin", true, true, false, false, true},
		{"visitor", false, false, false, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			req := requestWithRole(tc.role)
			if got := authz.IsSuperAdmin(req); got != tc.superAdmin {
				t.Errorf("IsSuperAdmin = %v, want %v", got, tc.superAdmin)
			}
			if got := authz.IsAdmin(req); got != tc.admin {
				t.Errorf("IsAdmin = %v, want %v", got, tc.admin)
			}
			if got := authz.IsModerator(req); got != tc.moderator {
				t.Errorf("IsModerator = %v, want %v", got, tc.moderator)
			}
			if got := authz.IsStudent(req); got != tc.student {
				t.Errorf("IsStudent = %v, want %v", got, tc.student)
			}
			if got := authz.CanManagePapers(req); got != tc.canManage {
				t.Errorf("CanManagePapers = %v, want %v", got, tc.canManage)
			}
		})
	}
}

func TestCanManagePapers_NoUser(t *testing.T) {
	if authz.CanManagePapers(httptest.NewRequest("GET", "/test", nil)) {
		t.Error("expected CanManagePapers to return false when no user")
	}
}

func TestRouteView(t *testing.T) {
	tests := []struct {
		role string
		want authz.View
	}{
		{"student", authz.ViewStudent},
		{"admin", authz.ViewAdmin},
		{"moderator", authz.ViewAdmin},
		{"super_admin", authz.ViewSuperAdmin},
		{"Super_Admin", authz.ViewSuperAdmin},
		{"  admin  ", authz.ViewAdmin},
		{"", authz.ViewLogin},
		{"visitor", authz.ViewLogin},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			if got := authz.RouteView(tc.role); got != tc.want {
				t.Errorf("RouteView(%q) = %q, want %q", tc.role, got, tc.want)
			}
		})
	}
}

func TestUploadScopeFor_ModeratorIsLocked(t *testing.T) {
	scope := authz.UploadScopeFor(&auth.SessionUser{
		ID:         primitive.NewObjectID().Hex(),
		Role:       "moderator",
		Department: "COMPUTER SCIENCE",
		Level:      "300",
	})

	if !scope.Locked {
		t.Error("moderator scope must be locked")
	}
	if scope.Department != "COMPUTER SCIENCE" || scope.Level != "300" {
		t.Errorf("scope must mirror the moderator's profile, got %+v", scope)
	}
}

func TestUploadScopeFor_AdminIsUnlocked(t *testing.T) {
	scope := authz.UploadScopeFor(&auth.SessionUser{
		ID:         primitive.NewObjectID().Hex(),
		Role:       "admin",
		Department: "MATHEMATICS",
		Level:      "100",
	})

	if scope.Locked {
		t.Error("admin scope must not be locked")
	}
}

func TestUploadScopeFor_NilUser(t *testing.T) {
	if scope := authz.UploadScopeFor(nil); scope.Locked {
		t.Error("nil user must yield an unlocked empty scope")
	}
}

func TestHasAnyRole(t *testing.T) {
	req := requestWithRole("moderator")

	if !authz.HasAnyRole(req, "admin", "moderator") {
		t.Error("expected moderator to match the role set")
	}
	if authz.HasAnyRole(req, "admin", "super_admin") {
		t.Error("expected moderator not to match admin-only set")
	}
	if authz.HasAnyRole(httptest.NewRequest("GET", "/test", nil), "admin") {
		t.Error("expected no match when no user")
	}
}

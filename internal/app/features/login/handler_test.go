package login

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/qprep/qprep/internal/app/store/users"
	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/authutil"
	"github.com/qprep/qprep/internal/app/system/authz"
	"github.com/qprep/qprep/internal/app/system/ratelimit"
	"github.com/qprep/qprep/internal/domain/models"
	"github.com/qprep/qprep/internal/testutil"
)

func newLoginHandler(t *testing.T) (*Handler, *mongo.Database) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := userstore.New(db)

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	tokens, err := auth.NewTokenIssuer("test-token-secret-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return NewHandler(store, sm, tokens, zap.NewNop()), db
}

func registerBody() map[string]any {
	return map[string]any{
		"fullName":     "Ada Obi",
		"username":     "ada",
		"email":        "ada@example.edu",
		"matricNumber": "CSC/19/1234",
		"department":   "Computer Science",
		"level":        "300",
		"password":     "correct horse",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	h, _ := newLoginHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/register", registerBody())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.HandleRegister).ServeHTTP(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)

	var created authResponse
	rec.DecodeJSON(t, &created)
	if created.Token == "" {
		t.Error("register must return a bearer token")
	}
	if created.User.Role != authz.RoleStudent {
		t.Errorf("self-registration must create a student, got %q", created.User.Role)
	}

	identifiers := []string{"ada", "ADA@EXAMPLE.EDU", "csc/19/1234"}
	for _, id := range identifiers {
		req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]any{
			"identifier": id,
			"password":   "correct horse",
		})
		rec := testutil.NewRecorder()
		http.HandlerFunc(h.HandleLogin).ServeHTTP(rec.ResponseRecorder, req)

		rec.AssertStatus(t, http.StatusOK)

		var got authResponse
		rec.DecodeJSON(t, &got)
		if got.User.Username != "ada" {
			t.Errorf("identifier %q resolved to wrong user: %+v", id, got.User)
		}
		if got.Token == "" {
			t.Errorf("identifier %q: login must return a token", id)
		}
	}
}

func TestRegister_NeverLeaksPasswordHash(t *testing.T) {
	h, _ := newLoginHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/register", registerBody())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.HandleRegister).ServeHTTP(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	if body := rec.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Errorf("response must not expose password material: %s", body)
	}
}

func TestRegister_Rejections(t *testing.T) {
	h, _ := newLoginHandler(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing username", func(b map[string]any) { b["username"] = "  " }},
		{"short password", func(b map[string]any) { b["password"] = "abc" }},
		{"common password", func(b map[string]any) { b["password"] = "password" }},
		{"bad email", func(b map[string]any) { b["email"] = "not-an-email" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := registerBody()
			tc.mutate(body)
			req := testutil.NewJSONRequest(t, "POST", "/api/auth/register", body)
			rec := testutil.NewRecorder()
			http.HandlerFunc(h.HandleRegister).ServeHTTP(rec.ResponseRecorder, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestRegister_DuplicateIs409(t *testing.T) {
	h, _ := newLoginHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/register", registerBody())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.HandleRegister).ServeHTTP(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	// Same username, different case.
	body := registerBody()
	body["username"] = "ADA"
	body["email"] = "other@example.edu"
	body["matricNumber"] = "CSC/19/9999"

	req = testutil.NewJSONRequest(t, "POST", "/api/auth/register", body)
	rec = testutil.NewRecorder()
	http.HandlerFunc(h.HandleRegister).ServeHTTP(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusConflict)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, db := newLoginHandler(t)
	ctx := testutil.TestContext(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/register", registerBody())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.HandleRegister).ServeHTTP(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	hash, err := authutil.HashPassword("locked out now")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	disabled, err := h.Users.Create(ctx, models.User{
		FullName:     "Gone Guy",
		Username:     "gone",
		Role:         authz.RoleStudent,
		PasswordHash: &hash,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = db.Collection("users").UpdateByID(ctx, disabled.ID, bson.M{"$set": bson.M{"status": "disabled"}})
	if err != nil {
		t.Fatalf("disable user: %v", err)
	}

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{"wrong password", "ada", "not the password"},
		{"unknown identifier", "nobody", "correct horse"},
		{"disabled account", "gone", "locked out now"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]any{
				"identifier": tc.identifier,
				"password":   tc.password,
			})
			rec := testutil.NewRecorder()
			http.HandlerFunc(h.HandleLogin).ServeHTTP(rec.ResponseRecorder, req)

			rec.AssertStatus(t, http.StatusUnauthorized)
			rec.AssertContains(t, invalidCredentials)
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	h, _ := newLoginHandler(t)
	h.Limits = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	for i := 0; i < 2; i++ {
		req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]any{
			"identifier": "hammered",
			"password":   "wrong",
		})
		rec := testutil.NewRecorder()
		http.HandlerFunc(h.HandleLogin).ServeHTTP(rec.ResponseRecorder, req)
		rec.AssertStatus(t, http.StatusUnauthorized)
	}

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]any{
		"identifier": "hammered",
		"password":   "wrong",
	})
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.HandleLogin).ServeHTTP(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusTooManyRequests)
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := newLoginHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]any{"identifier": "ada"})
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.HandleLogin).ServeHTTP(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeSessionView(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	tests := []struct {
		name string
		user *testutil.TestUser
		want string
	}{
		{"anonymous", nil, `"view":"login"`},
		{"student", ptr(testutil.StudentUser("CS", "300")), `"view":"student"`},
		{"admin", ptr(testutil.AdminUser()), `"view":"admin"`},
		{"moderator", ptr(testutil.ModeratorUser("CS", "300")), `"view":"admin"`},
		{"super admin", ptr(testutil.SuperAdminUser()), `"view":"super-admin"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewRequest("GET", "/api/session/view")
			if tc.user != nil {
				req = testutil.WithUser(req, *tc.user)
			}
			rec := testutil.NewRecorder()
			http.HandlerFunc(h.ServeSessionView).ServeHTTP(rec.ResponseRecorder, req)

			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, tc.want)
		})
	}
}

func ptr(u testutil.TestUser) *testutil.TestUser { return &u }

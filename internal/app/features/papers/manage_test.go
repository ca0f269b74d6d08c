package papers

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	paperstore "github.com/qprep/qprep/internal/app/store/papers"
	"github.com/qprep/qprep/internal/app/system/catalog"
	"github.com/qprep/qprep/internal/domain/models"
	"github.com/qprep/qprep/internal/testutil"
)

func newManageHandler(t *testing.T) (*Handler, *paperstore.Store) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := paperstore.New(db)
	cat, err := catalog.NewStore(store, store, 16, zap.NewNop())
	if err != nil {
		t.Fatalf("catalog.NewStore: %v", err)
	}
	return NewHandler(store, cat, zap.NewNop()), store
}

func uploadBody() map[string]any {
	return map[string]any{
		"department": "Computer Science",
		"level":      "300",
		"courseCode": "CSC 301",
		"title":      "Operating Systems",
		"year":       "2023",
		"semester":   "First",
		"type":       "pdf",
		"fileData":   "data:application/pdf;base64,eA==",
	}
}

func TestServeCreate_AdminUploadsAnywhere(t *testing.T) {
	h, _ := newManageHandler(t)

	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/papers", uploadBody()), testutil.AdminUser())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.ServeCreate).ServeHTTP(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)

	var created models.Paper
	rec.DecodeJSON(t, &created)
	if created.Department != "COMPUTER SCIENCE" {
		t.Errorf("department not normalized: %q", created.Department)
	}
	if created.UploadedByName != "Test Admin" {
		t.Errorf("uploader not recorded: %q", created.UploadedByName)
	}
}

func TestServeCreate_ModeratorScopeIsForced(t *testing.T) {
	h, _ := newManageHandler(t)

	// The moderator claims Mathematics/100; their locked scope must win.
	mod := testutil.ModeratorUser("COMPUTER SCIENCE", "300")
	body := uploadBody()
	body["department"] = "Mathematics"
	body["level"] = "100"

	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/papers", body), mod)
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.ServeCreate).ServeHTTP(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)

	var created models.Paper
	rec.DecodeJSON(t, &created)
	if created.Department != "COMPUTER SCIENCE" || created.Level != "300" {
		t.Errorf("moderator scope not enforced: %s/%s", created.Department, created.Level)
	}
}

func TestServeCreate_InvalidPaperIs400BeforeInsert(t *testing.T) {
	h, store := newManageHandler(t)
	ctx := testutil.TestContext(t)

	body := uploadBody()
	delete(body, "fileData")

	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/papers", body), testutil.AdminUser())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.ServeCreate).ServeHTTP(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected upload must not persist, found %d papers", count)
	}
}

func TestServeCreate_ReloadsCatalog(t *testing.T) {
	h, _ := newManageHandler(t)

	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/papers", uploadBody()), testutil.AdminUser())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.ServeCreate).ServeHTTP(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	courses := h.Catalog.Courses(catalog.Scope{Department: "Computer Science", Level: "300"}, "First")
	if len(courses) != 1 {
		t.Errorf("catalog must include the new upload, got %+v", courses)
	}
}

func TestServeBulkDelete(t *testing.T) {
	h, store := newManageHandler(t)
	ctx := testutil.TestContext(t)

	a := mustCreate(t, h, "2023")
	b := mustCreate(t, h, "2022")

	req := testutil.WithUser(testutil.NewJSONRequest(t, "DELETE", "/api/papers/bulk-delete", map[string]any{
		"ids": []string{a, b},
	}), testutil.SuperAdminUser())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.ServeBulkDelete).ServeHTTP(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "2 papers deleted successfully")

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected all papers deleted, %d remain", count)
	}
}

func TestServeBulkDelete_RejectsMalformedIDs(t *testing.T) {
	h, store := newManageHandler(t)
	ctx := testutil.TestContext(t)

	a := mustCreate(t, h, "2023")

	req := testutil.WithUser(testutil.NewJSONRequest(t, "DELETE", "/api/papers/bulk-delete", map[string]any{
		"ids": []string{a, "not-a-hex-id"},
	}), testutil.SuperAdminUser())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.ServeBulkDelete).ServeHTTP(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("malformed batch must delete nothing, %d papers remain", count)
	}
}

// mustCreate uploads one paper through the handler and returns its hex ID.
func mustCreate(t *testing.T, h *Handler, year string) string {
	t.Helper()

	body := uploadBody()
	body["year"] = year
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/papers", body), testutil.AdminUser())
	rec := testutil.NewRecorder()
	http.HandlerFunc(h.ServeCreate).ServeHTTP(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	var created models.Paper
	rec.DecodeJSON(t, &created)
	return created.ID.Hex()
}

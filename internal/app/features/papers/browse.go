// internal/app/features/papers/browse.go
package papers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"

	paperstore "github.com/qprep/qprep/internal/app/store/papers"
	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/catalog"
	"github.com/qprep/qprep/internal/app/system/respond"
	"github.com/qprep/qprep/internal/app/system/timeouts"
)

// scopeFromRequest builds the browsing scope: explicit query params win,
// the signed-in user's own department and level fill the gaps.
func scopeFromRequest(r *http.Request) catalog.Scope {
	scope := catalog.Scope{
		Department: r.URL.Query().Get("department"),
		Level:      r.URL.Query().Get("level"),
	}
	if u, ok := auth.CurrentUser(r); ok {
		if scope.Department == "" {
			scope.Department = u.Department
		}
		if scope.Level == "" {
			scope.Level = u.Level
		}
	}
	return scope
}

// ServeList returns all papers' metadata, payloads omitted.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list papers")
	defer cancel()

	list, err := h.Papers.ListAll(ctx)
	if err != nil {
		h.Log.Error("list papers", zap.Error(err))
		respond.Internal(w, r)
		return
	}
	respond.OK(w, r, list)
}

// ServeGet returns one paper by ID, payload included.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "invalid paper id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get paper")
	defer cancel()

	p, err := h.Papers.GetByID(ctx, id)
	if errors.Is(err, paperstore.ErrNotFound) {
		respond.NotFound(w, r, "paper not found")
		return
	}
	if err != nil {
		h.Log.Error("get paper", zap.String("id", id.Hex()), zap.Error(err))
		respond.Internal(w, r)
		return
	}
	respond.OK(w, r, p)
}

// ServeCourses lists the courses available in the requested department,
// level, and semester. An unrecognized semester yields an empty list,
// never an error.
func (h *Handler) ServeCourses(w http.ResponseWriter, r *http.Request) {
	semester := r.URL.Query().Get("semester")
	courses := h.Catalog.Courses(scopeFromRequest(r), semester)
	respond.OK(w, r, courses)
}

// ServeYears lists the academic years a course has papers for in the
// requested semester. The caller's scope is tried first; a course that
// only exists in another department is still found.
func (h *Handler) ServeYears(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("courseCode")
	if code == "" {
		respond.BadRequest(w, r, "courseCode is required")
		return
	}
	semester := r.URL.Query().Get("semester")
	years := h.Catalog.Years(scopeFromRequest(r), code, semester)
	respond.OK(w, r, years)
}

// ServeResolve locates the paper for (courseCode, semester, year) and
// returns it with its payload.
func (h *Handler) ServeResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("courseCode")
	semester := q.Get("semester")
	year := q.Get("year")
	if code == "" || semester == "" || year == "" {
		respond.BadRequest(w, r, "courseCode, semester, and year are required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resolve paper")
	defer cancel()

	resolved, err := h.Catalog.Resolve(ctx, scopeFromRequest(r), code, semester, year)
	if errors.Is(err, catalog.ErrNotFound) {
		respond.NotFound(w, r, "paper not found")
		return
	}
	if err != nil {
		// The record exists but its payload could not be loaded.
		h.Log.Error("resolve paper",
			zap.String("course", code),
			zap.String("year", year),
			zap.Error(err))
		respond.BadGateway(w, r, "paper content is currently unavailable")
		return
	}
	respond.OK(w, r, resolved)
}

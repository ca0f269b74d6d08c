// internal/app/features/papers/manage.go
package papers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"

	paperstore "github.com/qprep/qprep/internal/app/store/papers"
	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/authz"
	"github.com/qprep/qprep/internal/app/system/respond"
	"github.com/qprep/qprep/internal/app/system/timeouts"
	"github.com/qprep/qprep/internal/domain/models"
)

// applyUploadScope pins a paper to the uploading user. Moderators are
// locked to their own department and level no matter what the request
// says; admins keep whatever they submitted.
func applyUploadScope(p models.Paper, u *auth.SessionUser) models.Paper {
	scope := authz.UploadScopeFor(u)
	if scope.Locked {
		p.Department = scope.Department
		p.Level = scope.Level
	}
	if u != nil {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			p.UploadedByID = &oid
		}
		p.UploadedByName = u.Name
	}
	return p
}

// reloadCatalog rebuilds the browse index after a mutation. The write
// already succeeded, so a rebuild failure is logged and the stale
// catalog stays up until the next mutation or restart.
func (h *Handler) reloadCatalog(ctx context.Context) {
	if err := h.Catalog.Reload(ctx); err != nil {
		h.Log.Warn("catalog reload after mutation failed", zap.Error(err))
	}
}

// ServeScope returns the upload scope for the signed-in manager, so the
// client can pre-fill and lock the department and level fields.
func (h *Handler) ServeScope(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w, r, "unauthorized")
		return
	}
	respond.OK(w, r, authz.UploadScopeFor(u))
}

// ServeCreate uploads one or more papers. Validation runs on every
// paper before the first insert, so a bad batch is rejected whole.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	papers, err := decodeCreate(r)
	if err != nil {
		respond.BadRequest(w, r, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "create papers")
	defer cancel()

	created := make([]models.Paper, 0, len(papers))
	for _, p := range papers {
		c, err := h.Papers.Create(ctx, applyUploadScope(p, u))
		if err != nil {
			h.writeStoreError(w, r, err, "create paper")
			return
		}
		created = append(created, c)
	}

	h.reloadCatalog(ctx)
	h.Log.Info("papers uploaded",
		zap.Int("count", len(created)),
		zap.String("by", userName(u)))

	if len(created) == 1 {
		respond.Created(w, r, created[0])
		return
	}
	respond.Created(w, r, created)
}

// ServeReplace replaces an existing paper wholesale.
func (h *Handler) ServeReplace(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "invalid paper id")
		return
	}
	u, _ := auth.CurrentUser(r)

	papers, err := decodeCreate(r)
	if err != nil {
		respond.BadRequest(w, r, err.Error())
		return
	}
	if len(papers) != 1 {
		respond.BadRequest(w, r, "replace takes exactly one paper")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "replace paper")
	defer cancel()

	replaced, err := h.Papers.Replace(ctx, id, applyUploadScope(papers[0], u))
	if err != nil {
		h.writeStoreError(w, r, err, "replace paper")
		return
	}

	h.reloadCatalog(ctx)
	respond.OK(w, r, replaced)
}

// ServeDelete removes one paper by ID.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "invalid paper id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete paper")
	defer cancel()

	if err := h.Papers.Delete(ctx, id); err != nil {
		h.writeStoreError(w, r, err, "delete paper")
		return
	}

	h.reloadCatalog(ctx)
	respond.Message(w, r, "Paper deleted successfully")
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// ServeBulkDelete removes a set of papers in one call. All IDs are
// validated before anything is deleted; unknown IDs are skipped.
func (h *Handler) ServeBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		respond.BadRequest(w, r, "ids is required")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.BadRequest(w, r, fmt.Sprintf("invalid paper id %q", raw))
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "bulk paper delete")
	defer cancel()

	deleted, err := h.Papers.DeleteMany(ctx, ids)
	if err != nil {
		h.Log.Error("bulk delete papers", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	h.reloadCatalog(ctx)
	h.Log.Info("papers bulk deleted", zap.Int64("count", deleted))
	respond.Message(w, r, fmt.Sprintf("%d papers deleted successfully", deleted))
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, paperstore.ErrInvalid):
		respond.BadRequest(w, r, err.Error())
	case errors.Is(err, paperstore.ErrNotFound):
		respond.NotFound(w, r, "paper not found")
	default:
		h.Log.Error(op, zap.Error(err))
		respond.Internal(w, r)
	}
}

func userName(u *auth.SessionUser) string {
	if u == nil {
		return ""
	}
	return u.Name
}

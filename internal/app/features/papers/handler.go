// internal/app/features/papers/handler.go
package papers

import (
	"go.uber.org/zap"

	paperstore "github.com/qprep/qprep/internal/app/store/papers"
	"github.com/qprep/qprep/internal/app/system/catalog"
)

// Handler owns every paper endpoint: the browse surface students walk
// (courses, years, resolve) and the manage surface admins and
// moderators upload through.
//
// It is constructed once at startup in bootstrap, using the shared
// paper store, catalog, and logger.
type Handler struct {
	Papers  *paperstore.Store
	Catalog *catalog.Store
	Log     *zap.Logger
}

// NewHandler constructs a Handler bound to the given paper store,
// catalog store, and logger.
func NewHandler(papers *paperstore.Store, cat *catalog.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Papers:  papers,
		Catalog: cat,
		Log:     logger,
	}
}

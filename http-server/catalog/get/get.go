package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"parte-diario/internal/lib/api/response"
	"parte-diario/internal/storage"
)

type CatalogLister interface {
	ListCatalog(ctx context.Context, c storage.Catalog, filter storage.CatalogFilter) ([]storage.CatalogItem, error)
}

// ListCatalog returns every row of c ordered by name. Catalogs with a sector
// accept ?sectorId= to narrow the list.
func ListCatalog(log *slog.Logger, c storage.Catalog, lister CatalogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.get.ListCatalog"

		log := log.With(slog.String("op", op), slog.String("catalog", c.Slug))

		var filter storage.CatalogFilter
		if raw := r.URL.Query().Get("sectorId"); raw != "" && c.HasSector {
			sectorID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				log.Warn("invalid sectorId filter", slog.String("sectorId", raw))
				response.Fail(w, r, http.StatusBadRequest, response.Error("sectorId inválido"))
				return
			}
			filter.SectorID = sectorID
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		items, err := lister.ListCatalog(ctx, c, filter)
		if err != nil {
			log.Error("failed to list catalog", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusInternalServerError, response.Error("Error server"))
			return
		}

		render.JSON(w, r, items)
	}
}

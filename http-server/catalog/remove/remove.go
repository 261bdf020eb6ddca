package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"parte-diario/internal/lib/api/response"
	"parte-diario/internal/storage"
)

type CatalogDeleter interface {
	DeleteCatalogItem(ctx context.Context, c storage.Catalog, id int64) error
}

// DeleteCatalogItem answers 400 both for unknown ids and for rows still in use.
func DeleteCatalogItem(log *slog.Logger, c storage.Catalog, deleter CatalogDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.remove.DeleteCatalogItem"

		log := log.With(slog.String("op", op), slog.String("catalog", c.Slug))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.Error("Error eliminando"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = deleter.DeleteCatalogItem(ctx, c, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrReferenced) {
				log.Warn("catalog item not deleted", slog.Int64("id", id), slog.String("error", err.Error()))
				response.Fail(w, r, http.StatusBadRequest, response.Error("Error eliminando"))
				return
			}
			log.Error("failed to delete catalog item", slog.Int64("id", id), slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusInternalServerError, response.Error("Error server"))
			return
		}

		log.Info("catalog item deleted", slog.Int64("id", id))

		render.JSON(w, r, response.OK())
	}
}

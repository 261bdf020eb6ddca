package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"parte-diario/internal/lib/api/response"
	"parte-diario/internal/request"
	"parte-diario/internal/storage"
)

type CatalogCreator interface {
	CreateCatalogItem(ctx context.Context, c storage.Catalog, in storage.CatalogInput) (storage.CatalogItem, error)
}

func SaveCatalogItem(log *slog.Logger, c storage.Catalog, creator CatalogCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.save.SaveCatalogItem"

		log := log.With(slog.String("op", op), slog.String("catalog", c.Slug))

		var req request.Catalog
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Warn("invalid JSON", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, response.Error("Error creando"))
			return
		}

		in, err := req.Normalize(c)
		if err != nil {
			log.Warn("invalid catalog item", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, response.ErrorWithFields("Error creando", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		item, err := creator.CreateCatalogItem(ctx, c, in)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) || errors.Is(err, storage.ErrInvalidReference) {
				log.Warn("catalog item rejected", slog.String("error", err.Error()))
				response.Fail(w, r, http.StatusBadRequest, response.Error("Error creando"))
				return
			}
			log.Error("failed to create catalog item", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusInternalServerError, response.Error("Error server"))
			return
		}

		log.Info("catalog item created", slog.Int64("id", item.ID))

		render.JSON(w, r, item)
	}
}

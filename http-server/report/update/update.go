package update

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
	"parte-diario/internal/request"
	"parte-diario/internal/storage"
)

type ReportUpdater interface {
	UpdateReport(ctx context.Context, id int64, in storage.ReportInput) error
	GetReport(ctx context.Context, id int64) (*storage.Report, error)
}

// UpdateReport replaces the header and all detail rows of a report.
func UpdateReport(log *slog.Logger, updater ReportUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.update.UpdateReport"

		log := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.Error("Error al actualizar"))
			return
		}

		var req request.Report
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Warn("invalid JSON", slog.Int64("id", id), slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, response.Error("Error al actualizar"))
			return
		}

		in, err := req.Normalize()
		if err != nil {
			log.Warn("invalid report", slog.Int64("id", id), slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, response.ErrorWithFields("Error al actualizar", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = updater.UpdateReport(ctx, id, in)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidReference) || errors.Is(err, storage.ErrOutOfRange) {
				log.Warn("report update rejected", slog.Int64("id", id), slog.String("error", err.Error()))
				response.Fail(w, r, http.StatusBadRequest, response.Error("Error al actualizar"))
				return
			}
			log.Error("failed to update report", slog.Int64("id", id), slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusInternalServerError, response.Error("Error al actualizar"))
			return
		}

		log.Info("report updated", slog.Int64("id", id), slog.Int("details", len(in.Details)))

		report, err := updater.GetReport(ctx, id)
		if err != nil {
			log.Error("failed to reload updated report", slog.Int64("id", id), slog.String("error", err.Error()))
			render.JSON(w, r, map[string]int64{"id": id})
			return
		}

		render.JSON(w, r, report)
	}
}

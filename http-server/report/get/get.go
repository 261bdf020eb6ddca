package get

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

type ReportGetter interface {
	GetReport(ctx context.Context, id int64) (*storage.Report, error)
}

type ReportSearcher interface {
	SearchReports(ctx context.Context, q string) ([]storage.Report, error)
}

func GetReport(log *slog.Logger, getter ReportGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.get.GetReport"

		log := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusNotFound, response.Error("No encontrado"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report, err := getter.GetReport(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.Fail(w, r, http.StatusNotFound, response.Error("No encontrado"))
				return
			}
			log.Error("failed to get report", slog.Int64("id", id), slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusInternalServerError, response.Error("Error server"))
			return
		}

		render.JSON(w, r, report)
	}
}

// SearchReports answers with at most 50 reports, newest first.
func SearchReports(log *slog.Logger, searcher ReportSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.get.SearchReports"

		q := r.URL.Query().Get("q")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reports, err := searcher.SearchReports(ctx, q)
		if err != nil {
			log.Error("failed to search reports", slog.String("op", op), slog.String("q", q), slog.String("error", err.Error()))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, []storage.Report{})
			return
		}

		render.JSON(w, r, reports)
	}
}

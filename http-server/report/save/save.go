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

type ReportSaver interface {
	CreateReport(ctx context.Context, in storage.ReportInput) (int64, error)
	GetReport(ctx context.Context, id int64) (*storage.Report, error)
}

func SaveReport(log *slog.Logger, saver ReportSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.save.SaveReport"

		log := log.With(slog.String("op", op))

		var req request.Report
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Warn("invalid JSON", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, response.Error("Error al guardar"))
			return
		}

		in, err := req.Normalize()
		if err != nil {
			log.Warn("invalid report", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, response.ErrorWithFields("Error al guardar", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := saver.CreateReport(ctx, in)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidReference) || errors.Is(err, storage.ErrOutOfRange) {
				log.Warn("report rejected", slog.String("error", err.Error()))
				response.Fail(w, r, http.StatusBadRequest, response.Error("Error al guardar"))
				return
			}
			log.Error("failed to create report", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusInternalServerError, response.Error("Error al guardar"))
			return
		}

		log.Info("report created", slog.Int64("id", id), slog.Int("details", len(in.Details)))

		report, err := saver.GetReport(ctx, id)
		if err != nil {
			// the report is committed, the client only needs the id
			log.Error("failed to reload created report", slog.Int64("id", id), slog.String("error", err.Error()))
			render.JSON(w, r, map[string]int64{"id": id})
			return
		}

		render.JSON(w, r, report)
	}
}

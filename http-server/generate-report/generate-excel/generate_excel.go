package generate_excel

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"parte-diario/internal/lib/api/response"
	"parte-diario/internal/storage"
)

const fileName = "Reporte.xlsx"

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, rng storage.DateRange) ([]byte, error)
}

// GenerateReportExcel serves the spreadsheet for ?desde=YYYY-MM-DD&hasta=YYYY-MM-DD.
// Both bounds are required and inclusive.
func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

		fromStr := r.URL.Query().Get("desde")
		toStr := r.URL.Query().Get("hasta")
		if fromStr == "" || toStr == "" {
			response.Fail(w, r, http.StatusBadRequest, response.Error("Falta rango"))
			return
		}

		from, err := storage.ParseDate(fromStr)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.Error("Fecha desde inválida"))
			return
		}

		to, err := storage.ParseDate(toStr)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.Error("Fecha hasta inválida"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, storage.DateRange{From: from, To: to})
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusInternalServerError, response.Error("Error Excel"))
			return
		}

		log.Info("excel generated", slog.String("desde", fromStr), slog.String("hasta", toStr), slog.Int("bytes", len(excelBytes)))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Header().Set("Content-Length", strconv.Itoa(len(excelBytes)))
		w.Write(excelBytes)
	}
}

package main

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"parte-diario/http-server/catalog/get"
	"parte-diario/http-server/catalog/remove"
	"parte-diario/http-server/catalog/save"
	"parte-diario/http-server/generate-report/document"
	generate_excel "parte-diario/http-server/generate-report/generate-excel"
	reportget "parte-diario/http-server/report/get"
	reportsave "parte-diario/http-server/report/save"
	"parte-diario/http-server/report/update"
	"parte-diario/internal/config"
	"parte-diario/internal/constants"
	"parte-diario/internal/lib/api/response"
	"parte-diario/internal/middleware/auth"
)

// Storage is everything the API handlers need from the database.
type Storage interface {
	get.CatalogLister
	save.CatalogCreator
	remove.CatalogDeleter
	reportsave.ReportSaver
	update.ReportUpdater
	reportget.ReportGetter
	reportget.ReportSearcher
}

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage Storage,
	excel generate_excel.GenerateExcelHandler,
	renderer document.DocumentRenderer,
	assets fs.FS,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	admin := auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)

	for _, c := range constants.Catalogs {
		router.Get("/api/"+c.Slug, get.ListCatalog(log, c, storage))
		router.With(admin).Post("/api/"+c.Slug, save.SaveCatalogItem(log, c, storage))
		router.With(admin).Delete("/api/"+c.Slug+"/{id}", remove.DeleteCatalogItem(log, c, storage))
	}

	router.Post("/api/formularios", reportsave.SaveReport(log, storage))
	router.Get("/api/formularios/buscar", reportget.SearchReports(log, storage))
	router.Get("/api/formularios/{id}", reportget.GetReport(log, storage))
	router.Put("/api/formularios/{id}", update.UpdateReport(log, storage))

	router.Get("/api/reportes/excel", generate_excel.GenerateReportExcel(log, excel))
	router.Get("/api/reportes/pdf/{id}", document.PrintReport(log, renderer))

	router.HandleFunc("/api/*", apiNotFound)

	router.Get("/*", spaHandler(log, assets))

	return router
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, r, http.StatusNotFound, response.Error("API 404"))
}

// spaHandler serves files from assets and falls back to index.html for any
// path that is not a file, so client-side routes survive a reload. Paths
// under the API prefix never reach the client.
func spaHandler(log *slog.Logger, assets fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") {
			apiNotFound(w, r)
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

		if name != "" {
			if info, err := fs.Stat(assets, name); err == nil && !info.IsDir() {
				http.ServeFileFS(w, r, assets, name)
				return
			}
		}

		index, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			log.Error("client entry page missing", slog.String("error", err.Error()))
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(index))
	}
}

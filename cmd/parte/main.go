package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"parte-diario/internal/config"
	"parte-diario/internal/lib/logger"
	"parte-diario/internal/service/document"
	generate_excel "parte-diario/internal/service/generate-excel"
	"parte-diario/internal/storage/mysql"
	"parte-diario/web"
)

func main() {
	cfg := config.MustConfig()

	log := logger.Setup(cfg.Env, cfg.ErrorLog)

	// hours go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	storage, err := mysql.New(*cfg)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := storage.Migrate(ctx)
		cancel()
		if err != nil {
			log.Error("failed to migrate db", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	excelService := generate_excel.NewGenerateService(storage)
	documentService := document.NewDocumentService(storage)

	assets := web.Assets()
	if cfg.FrontendDir != "" {
		if info, err := os.Stat(cfg.FrontendDir); err == nil && info.IsDir() {
			assets = os.DirFS(cfg.FrontendDir)
		} else {
			log.Warn("frontend dir not found, using embedded client", slog.String("path", cfg.FrontendDir))
		}
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, storage, excelService, documentService, assets),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop server", slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped")
}

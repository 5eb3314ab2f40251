package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cafeprep/internal/cli"
	apphttp "cafeprep/internal/http"
	"cafeprep/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"))

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backend, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to open entry store", err, "backend", cfg.DataBackend)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()

	products, err := cli.LoadCatalog(cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to load product catalog", err, "path", cfg.CatalogFile)
	}

	notifier, closeNotifier, err := cli.NewNotifier(cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize notifier", err, "notifier", cfg.Notifier)
	}
	defer closeNotifier()

	svc := services.NewEntryService(backend.Store, notifier, logger)
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		CafeName: cfg.CafeName,
		Catalog:  products,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting cafeprep server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"notifier", cfg.Notifier,
			"products", products.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

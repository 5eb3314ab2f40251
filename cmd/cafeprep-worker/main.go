package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"cafeprep/internal/amqp"
	"cafeprep/internal/cli"
	"cafeprep/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"))

	logger.Info("Starting cafeprep-worker")

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	if cfg.Notifier != "queue" {
		cli.Fatal(logger, "Worker requires NOTIFIER=queue", errors.New("notifier is "+cfg.Notifier))
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backend, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to open entry store", err, "backend", cfg.DataBackend)
	}
	defer backend.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	w := worker.NewNotificationWorker(backend.Store, cli.SMTPNotifier(cfg, logger), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeEntryRecorded(gctx, w.HandleEntryRecorded)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// Package cli holds the start-up steps shared by cmd/cafeprep,
// cmd/cafeprep-worker and cmd/cafeprepctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cafeprep/internal/amqp"
	"cafeprep/internal/backend"
	"cafeprep/internal/catalog"
	"cafeprep/internal/config"
	"cafeprep/internal/log"
	"cafeprep/internal/notify"
)

// SetupLogger installs a text logger on w at the given LOG_LEVEL and returns it.
func SetupLogger(w io.Writer, level string) *slog.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Output = w
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger.Logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore creates the entry store selected by DATA_BACKEND.
// The caller must Close the result.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bc)
}

// LoadCatalog returns the configured product catalog, or the built-in one.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.CatalogFile)
}

// SMTPNotifier builds the email notifier from configuration.
func SMTPNotifier(cfg *config.Config, logger *slog.Logger) *notify.SMTPNotifier {
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Sender:    cfg.EmailSender,
		Password:  cfg.EmailPassword,
		Receivers: cfg.EmailReceiver,
	}, logger)
}

// NewNotifier builds the notifier selected by NOTIFIER. The returned close
// function is never nil.
func NewNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Notifier {
	case "smtp":
		return SMTPNotifier(cfg, logger), noop, nil
	case "queue":
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, noop, fmt.Errorf("connect AMQP: %w", err)
		}
		return notify.NewQueueNotifier(client), client.Close, nil
	case "log":
		return notify.NewLogNotifier(logger), noop, nil
	case "none", "":
		return notify.Nop{}, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}

// Fatal logs err and exits with status 1.
func Fatal(logger *slog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{log.FieldError, err}, args...)...)
	os.Exit(1)
}

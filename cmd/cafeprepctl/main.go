// Command cafeprepctl inspects and edits the entry log from a terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cafeprep/internal/cli"
	"cafeprep/internal/config"
	"cafeprep/internal/notify"
	"cafeprep/internal/services"
)

var (
	backendFlag string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "cafeprepctl",
	Short: "Inspect and edit the cafe's daily prep log",
	Long: `cafeprepctl reads the same configuration as the web app (.env and
environment variables) and works against the same entry store.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "override DATA_BACKEND (memory, file, sqlite, sheets)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	rootCmd.AddCommand(summaryCmd, dailyCmd, recordCmd, exportCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles what every subcommand needs.
type env struct {
	cfg     *config.Config
	svc     *services.EntryService
	logger  *slog.Logger
	cleanup []func() error
}

func (e *env) Close() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		_ = e.cleanup[i]()
	}
}

// setup loads configuration and opens the store. withNotifier also builds the
// configured notifier; read-only commands never notify.
func setup(ctx context.Context, withNotifier bool) (*env, error) {
	cli.LoadEnvFile()
	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}

	cfg := config.Load()
	if backendFlag != "" {
		cfg.DataBackend = backendFlag
	}
	logger := cli.SetupLogger(out, cfg.LogLevel)
	if !withNotifier {
		cfg.Notifier = "none"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger}
	backend, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.cleanup = append(e.cleanup, backend.Close)

	var n notify.Notifier = notify.Nop{}
	if withNotifier {
		var closeFn func() error
		n, closeFn, err = cli.NewNotifier(cfg, logger)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.cleanup = append(e.cleanup, closeFn)
	}

	e.svc = services.NewEntryService(backend.Store, n, logger)
	return e, nil
}

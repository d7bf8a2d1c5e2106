package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JULEEP/admin-frontend/config"
	"github.com/JULEEP/admin-frontend/internal/bootstrap"
	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1) //nolint:forbidigo // CLI must exit with failure status on errors.
	}
}

type options struct {
	resource string
	logFile  string
	token    string
}

func rootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "backoffice-tui",
		Short: "Browse and edit back office resources from the terminal",
		Long: `backoffice-tui opens the paginated resource views of the back office
console in the terminal. It talks to the same admin API as the web console,
configured through the UPSTREAM_* environment variables.

Keys:
  left/right  change page      t  toggle the highlighted row
  d           delete           y/n  confirm or cancel a delete
  tab         next resource    r  reload
  q           quit`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resource, "resource", "r", model.ResourceProducts, "resource to open first")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file (discarded when empty)")
	cmd.Flags().StringVar(&opts.token, "token", "", "upstream API token (defaults to UPSTREAM_API_TOKEN)")
	return cmd
}

func run(opts options) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI, so the session store stays in process.
	cfg.Session.Store = config.SessionStoreMemory
	cfg.Observability.Metrics.Enabled = false

	logOut, closeLog, err := openLog(opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := bootstrap.ConfigureLogger(logOut, cfg.Observability.Logging)

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{Config: &cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer services.Views.Close()

	now := time.Now()
	token := opts.token
	if token == "" {
		token = cfg.Upstream.APIToken
	}
	m, err := tui.New(tui.Options{
		Registry: services.Views,
		Session: model.Session{
			ID:        uuid.NewString(),
			APIToken:  token,
			CreatedAt: now,
			ExpiresAt: now.Add(cfg.Session.TTL),
		},
		Resource: opts.resource,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if _, err = tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() {
		if cerr := f.Close(); cerr != nil {
			slog.Error("close log file", "error", cerr)
		}
	}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"painel/internal/auth"
	"painel/internal/cli"
	"painel/internal/config"
	"painel/internal/dataset"
	apphttp "painel/internal/http"
	"painel/internal/log"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	Long: `Start the dashboard web server.

Settings come from the environment, optionally from a .env file in the
working directory. The extract is reloaded whenever it changes on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg)

	store, err := credentialStore(cfg, logger)
	if err != nil {
		return err
	}

	loader := dataset.NewLoader(logger, 4)
	srv := apphttp.NewServer(apphttp.Config{
		Addr:          cfg.Addr(),
		DataPath:      cfg.DataPath,
		PreviewRows:   cfg.PreviewRows,
		LoginAttempts: cfg.LoginRateLimit,
		SessionTTL:    cfg.SessionTTL,
	}, apphttp.Dependencies{
		Loader:   loader,
		Store:    store,
		Sessions: auth.NewSessions(cfg.SessionTTL, cfg.SessionMax, logger),
		Logger:   logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	var watcher *dataset.Watcher
	if cfg.WatchData {
		watcher, err = dataset.NewWatcher(cfg.DataPath, loader, 0, logger)
		if err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctx, done := cli.GracefulShutdown(runCtx, logger, shutdownTimeout, func(ctx context.Context) error {
		if watcher != nil {
			watcher.Stop()
		}
		return srv.Shutdown(ctx)
	})

	if snap, err := loader.Snapshot(ctx, cfg.DataPath); err != nil {
		logger.Warn("Extract not available at startup", log.FieldDataPath, cfg.DataPath, log.FieldError, err)
	} else {
		logger.Info("Extract ready", log.FieldDataPath, snap.Path, log.FieldRows, snap.Table.Len(), "notices", len(snap.Notices))
	}

	g, gctx := errgroup.WithContext(ctx)
	if watcher != nil {
		if err := watcher.Start(gctx); err != nil {
			logger.Warn("Extract watcher disabled", log.FieldError, err)
		}
	}

	g.Go(func() error {
		defer cancel()
		logger.Info("Starting painel server", log.FieldOperation, log.OpStartup, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		cli.WaitForShutdown(ctx, done)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// credentialStore returns the accounts from CREDENTIALS_FILE, or the
// built-in ones when it is unset.
func credentialStore(cfg *config.Config, logger *log.Logger) (*auth.StaticStore, error) {
	if cfg.CredentialsFile == "" {
		store := auth.DefaultStore()
		logger.Info("Using built-in accounts", "accounts", store.Len())
		return store, nil
	}
	store, err := auth.LoadFileStore(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded accounts", "accounts", store.Len(), "file", cfg.CredentialsFile)
	return store, nil
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halvard/quotesync/internal/backup"
	"github.com/halvard/quotesync/internal/engine"
	"github.com/halvard/quotesync/internal/storage"
	"github.com/halvard/quotesync/internal/transform"
	"github.com/halvard/quotesync/internal/vault"
	"github.com/halvard/quotesync/internal/watch"
)

// snapshotRetention is how long destination snapshots are kept.
const snapshotRetention = 7 * 24 * time.Hour

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger, logCloser, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("source_path", cfg.Source.Path),
		slog.String("destination_path", cfg.Destination.Path),
		slog.String("log_level", cfg.App.LogLevel),
		slog.Bool("dry_run", app.dryRun),
		slog.Bool("watch", app.watch))

	// Both vaults must already exist; a missing root is a setup error, not
	// something to silently create.
	for _, vc := range []VaultConfig{cfg.Source, cfg.Destination} {
		info, err := os.Stat(vc.Path)
		if err != nil {
			return fmt.Errorf("vault root %s: %w", vc.Path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault root %s is not a directory", vc.Path)
		}
	}

	srcStore, err := storage.NewFS(cfg.Source.Path)
	if err != nil {
		return fmt.Errorf("init source storage: %w", err)
	}
	dstStore, err := storage.NewFS(cfg.Destination.Path)
	if err != nil {
		return fmt.Errorf("init destination storage: %w", err)
	}

	pipeline := transform.Default()

	if err := snapshotBeforeMigration(dstStore, cfg.Destination.Path, pipeline, app.dryRun, logger); err != nil {
		return err
	}

	runPass := func(ctx context.Context) error {
		eng := engine.New(engine.Config{
			Source:      srcStore,
			Destination: dstStore,
			VaultName:   cfg.Source.VaultName(),
			Pipeline:    pipeline,
			Logger:      logger,
			DryRun:      app.dryRun,
		})
		rep, err := eng.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("pass complete", slog.String("summary", rep.Summary()), slog.Bool("dry_run", app.dryRun))
		fmt.Println(rep.Summary())
		if len(rep.Errors) > 0 && cfg.Logs.Enabled() {
			fmt.Printf("completed with %d errors, see %s\n", len(rep.Errors), cfg.Logs.ErrorPath)
		}
		return nil
	}

	if !app.watch {
		return runPass(ctx)
	}

	if err := runPass(ctx); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		roots := []string{cfg.Source.Path, cfg.Destination.Path}
		return watch.Watch(gCtx, roots, watch.DefaultSettle, logger, func(ctx context.Context) {
			if err := runPass(ctx); err != nil {
				logger.Error("pass failed", slog.String("error", err.Error()))
			}
		})
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			return context.Canceled
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Stopped")
	return nil
}

// snapshotBeforeMigration snapshots the destination vault when any note is
// below the current format version, then prunes snapshots past retention.
// Dry runs never snapshot: they also never migrate.
func snapshotBeforeMigration(dstStore storage.Provider, root string, pipeline *transform.Pipeline, dryRun bool, logger *slog.Logger) error {
	notes, loadErrs := vault.LoadDestVault(dstStore)
	for _, lerr := range loadErrs {
		logger.Warn("snapshot scan: unreadable note", slog.String("error", lerr.Error()))
	}
	stale := false
	for _, q := range notes {
		if q.Doc.Version() < pipeline.CurrentVersion() {
			stale = true
			break
		}
	}
	if !stale || dryRun {
		return nil
	}

	dir, err := backup.Create(root, pipeline.CurrentVersion(), time.Now())
	if err != nil {
		return err
	}
	logger.Info("snapshot created before migration", slog.String("dir", dir))

	removed, err := backup.Prune(root, snapshotRetention, time.Now())
	if err != nil {
		logger.Warn("snapshot prune failed", slog.String("error", err.Error()))
	} else if removed > 0 {
		logger.Info("old snapshots pruned", slog.Int("count", removed))
	}
	return nil
}

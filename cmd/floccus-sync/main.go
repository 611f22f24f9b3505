package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/whjimmortal/floccus/floccus"
	"github.com/whjimmortal/floccus/internal/adapter/localfs"
	"github.com/whjimmortal/floccus/internal/adapter/remote"
	"github.com/whjimmortal/floccus/internal/config"
	"github.com/whjimmortal/floccus/internal/logging"
	"github.com/whjimmortal/floccus/mapping"
	"golang.org/x/sync/errgroup"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Info("floccus-sync starting",
		slog.String("version", Version),
		slog.String("device", cfg.DeviceName),
		slog.Duration("poll_interval", cfg.PollInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := mapping.Open(cfg.MappingStorePath)
	if err != nil {
		return fmt.Errorf("opening mapping store: %w", err)
	}
	defer store.Close()

	remoteClient := remote.NewClient(&http.Client{Timeout: 30 * time.Second}, cfg.RemoteBaseURL, cfg.RemoteBearerToken, cfg.DeviceName)
	serverProvider := remote.New(remoteClient)

	localStore := localfs.NewStore(cfg.LocalVaultDir)
	localProvider := localfs.New(localStore)

	syncer := floccus.NewSyncer(localProvider, serverProvider, store, logger)

	g, gctx := errgroup.WithContext(ctx)

	runNow := make(chan struct{}, 1)
	localWatcher := localfs.NewWatcher(cfg.LocalVaultDir, logging.ForSide(logger, "local"), func() {
		localProvider.Invalidate()
		select {
		case runNow <- struct{}{}:
		default:
		}
	})
	g.Go(func() error {
		return localWatcher.Watch(gctx)
	})

	g.Go(func() error {
		return pollLoop(gctx, syncer, logger, cfg.PollInterval, runNow)
	})

	return g.Wait()
}

// pollLoop runs a sync pass every interval (plus a small random
// jitter, to avoid many devices sharing a poll interval hammering the
// remote API in lockstep), or immediately whenever runNow fires (the
// local watcher noticing an out-of-band change).
func pollLoop(ctx context.Context, syncer *floccus.Syncer, logger *slog.Logger, interval time.Duration, runNow <-chan struct{}) error {
	if err := runOnce(ctx, syncer, logger); err != nil {
		logger.Error("initial sync failed", slog.String("error", err.Error()))
	}

	timer := time.NewTimer(jittered(interval))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		case <-runNow:
			if !timer.Stop() {
				<-timer.C
			}
		}
		if err := runOnce(ctx, syncer, logger); err != nil {
			logger.Error("sync failed", slog.String("error", err.Error()))
		}
		timer.Reset(jittered(interval))
	}
}

// jittered returns interval scaled by a random factor in [0.9, 1.1].
func jittered(interval time.Duration) time.Duration {
	return time.Duration(float64(interval) * (0.9 + 0.2*rand.Float64()))
}

func runOnce(ctx context.Context, syncer *floccus.Syncer, logger *slog.Logger) error {
	start := time.Now()
	report, err := syncer.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("sync pass finished",
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("first_sync", report.FirstSync),
		slog.Int("local_actions", report.LocalActions),
		slog.Int("server_actions", report.ServerActions),
	)
	return nil
}

package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"calorina/internal/metrics"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// runServer serves handler until ctx is cancelled, pruning old telemetry
// every day when retentionDays is positive.
func runServer(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler, store *metrics.Store, retentionDays int) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if retentionDays > 0 {
		g.Go(func() error {
			pruneMetrics(gctx, logger, store, retentionDays, 24*time.Hour)
			return nil
		})
	}
	return g.Wait()
}

func pruneMetrics(ctx context.Context, logger *slog.Logger, store *metrics.Store, days int, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		n, err := store.Cleanup(ctx, days)
		if err != nil {
			logger.Warn("metrics cleanup failed", "error", err)
		} else if n > 0 {
			logger.Info("metrics cleanup", "removed", n, "retention_days", days)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OrphanSweeper removes secrets whose owner account no longer exists.
type OrphanSweeper interface {
	DeleteOrphanSecrets(ctx context.Context) (int64, error)
}

// SweepOrphans runs one sweep over store and logs the outcome. Nothing is
// logged when there was nothing to remove.
func SweepOrphans(ctx context.Context, store OrphanSweeper, log *zap.Logger) (int64, error) {
	removed, err := store.DeleteOrphanSecrets(ctx)
	if err != nil {
		log.Error("failed to clean orphaned secrets", zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		log.Info("cleaned orphaned secrets", zap.Int64("removed", removed))
	}
	return removed, nil
}

// StartOrphanSweeper calls SweepOrphans every interval in the background
// until ctx is done.
func StartOrphanSweeper(
	ctx context.Context,
	store OrphanSweeper,
	interval time.Duration,
	log *zap.Logger,
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				_, _ = SweepOrphans(ctx, store, log)
			}
		}
	}()
}

package reaper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"planningpoker/internal/services/rooms"
)

const sweepTimeout = 30 * time.Second

// Sweeper is the slice of the room service the reaper drives.
type Sweeper interface {
	Sweep(ctx context.Context) (rooms.SweepResult, error)
}

// Run sweeps once immediately and then every interval until ctx is done.
// It blocks; callers start it in its own goroutine.
func Run(ctx context.Context, svc Sweeper, interval time.Duration) {
	tk := time.NewTicker(interval)
	defer tk.Stop()

	sweepOnce(ctx, svc)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			sweepOnce(ctx, svc)
		}
	}
}

func sweepOnce(ctx context.Context, svc Sweeper) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	res, err := svc.Sweep(ctx)
	if err != nil {
		zap.L().Error("reaper.sweep", zap.Error(err))
		return
	}
	if res.Deleted > 0 || res.Failed > 0 {
		zap.L().Info("reaper.swept",
			zap.Int("scanned", res.Scanned),
			zap.Int("marked", res.Marked),
			zap.Int("deleted", res.Deleted),
			zap.Int("failed", res.Failed),
		)
		return
	}
	zap.L().Debug("reaper.swept", zap.Int("scanned", res.Scanned), zap.Int("marked", res.Marked))
}

package retention

import (
	"context"
	"time"

	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/service/notify"
)

type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Janitor periodically removes notifications older than the retention TTL.
type Janitor struct {
	pruner   Pruner
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

func NewJanitor(cfg *config.Config, svc *notify.Service, logger *zap.Logger) *Janitor {
	return newJanitor(svc, cfg.RetentionTTL, cfg.RetentionInterval, logger)
}

func newJanitor(pruner Pruner, ttl, interval time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{pruner: pruner, ttl: ttl, interval: interval, logger: logger}
}

// Run prunes once at start and then on every tick until ctx is done. It
// returns immediately when retention is disabled.
func (j *Janitor) Run(ctx context.Context) {
	if j.ttl <= 0 || j.interval <= 0 {
		j.logger.Info("retention disabled")
		return
	}
	j.logger.Info("retention janitor started", zap.Duration("ttl", j.ttl), zap.Duration("interval", j.interval))

	j.prune(ctx)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.prune(ctx)
		}
	}
}

func (j *Janitor) prune(ctx context.Context) {
	pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := j.pruner.Prune(pruneCtx, j.ttl)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error("retention prune failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		j.logger.Info("retention pruned notifications", zap.Int64("removed", n))
	}
}

package cache

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"askdata/internal/domain"
)

// Janitor periodically purges expired cache entries so the metastore does
// not accumulate dead rows between lazy-expiry reads.
type Janitor struct {
	cache  domain.ResultCache
	logger *slog.Logger
	cron   *cron.Cron
}

// NewJanitor creates a Janitor sweeping on the given cron schedule
// (e.g. "@every 1m").
func NewJanitor(cache domain.ResultCache, schedule string, logger *slog.Logger) (*Janitor, error) {
	j := &Janitor{cache: cache, logger: logger, cron: cron.New()}
	_, err := j.cron.AddFunc(schedule, j.sweep)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// Start begins background sweeping.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts sweeping and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) sweep() {
	n, err := j.cache.PurgeExpired(context.Background())
	if err != nil {
		j.logger.Warn("cache sweep failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Debug("cache sweep", "purged", n)
	}
}

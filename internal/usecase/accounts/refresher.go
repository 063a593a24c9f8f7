package accounts

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/simaogato/bankflow/internal/domain"
)

// refreshTimeout bounds a single account listing call
const refreshTimeout = 15 * time.Second

// Refresher periodically re-reads the account listing from the Authority
// and replaces the cache with it. The listing is the source of truth: each
// refresh supersedes any optimistic patch applied since the previous one.
type Refresher struct {
	source domain.AccountSource
	cache  *Cache
	cron   *cron.Cron
	log    zerolog.Logger
}

// NewRefresher creates a refresher for the given source and cache
func NewRefresher(source domain.AccountSource, cache *Cache, log zerolog.Logger) *Refresher {
	return &Refresher{
		source: source,
		cache:  cache,
		cron:   cron.New(),
		log:    log.With().Str("component", "account_refresher").Logger(),
	}
}

// Start registers the refresh job and starts the schedule.
// Schedule examples:
//   - "@every 30s" - Every 30 seconds
//   - "@every 5m"  - Every 5 minutes
func (r *Refresher) Start(schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := r.RefreshNow(ctx); err != nil {
			r.log.Error().Err(err).Msg("Scheduled account refresh failed")
		}
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.log.Info().Str("schedule", schedule).Msg("Account refresher started")
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info().Msg("Account refresher stopped")
}

// RefreshNow lists accounts from the Authority and replaces the cache
func (r *Refresher) RefreshNow(ctx context.Context) error {
	listed, err := r.source.ListAccounts(ctx)
	if err != nil {
		return err
	}
	r.cache.Replace(listed)
	return nil
}

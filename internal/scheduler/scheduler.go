package scheduler

import (
	"context"
	"fmt"
	"time"

	"StockDashboard/internal/model"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// Warmer pre-fetches history for a (ticker, start) key.
type Warmer interface {
	Warm(ctx context.Context, ticker string, start *time.Time) error
}

// Scheduler runs the cache warm-up job. Cache entries never expire, so after the
// first successful run each tick only retries keys whose fetch failed.
type Scheduler struct {
	Cron    *cron.Cron
	Warmer  Warmer
	Tickers []string
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, w Warmer, tickers []string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Warmer:  w,
		Tickers: tickers,
		Ctx:     ctx,
	}
}

// Register adds the populate/retry job on the given cron spec.
func (s *Scheduler) Register(warmCron string) error {
	if _, err := s.Cron.AddFunc(warmCron, s.warmTask); err != nil {
		return fmt.Errorf("register warm task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("tickers", len(s.Tickers)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunWarmNow executes the warm-up task immediately (WARM_ON_START).
func (s *Scheduler) RunWarmNow() int {
	return s.warm()
}

func (s *Scheduler) warmTask() {
	s.warm()
}

// warm fetches every ticker for every time range and returns how many keys are
// now cached. Keys already cached are served without a fetch.
func (s *Scheduler) warm() int {
	log.Info().Strs("tickers", s.Tickers).Msg("running cache warm-up")
	warmed := 0
	for _, ticker := range s.Tickers {
		for _, r := range model.TimeRanges {
			if err := s.Ctx.Err(); err != nil {
				return warmed
			}
			if err := s.Warmer.Warm(s.Ctx, ticker, r.Start()); err != nil {
				log.Warn().Err(err).Str("ticker", ticker).Str("range", string(r)).Msg("warm-up fetch failed")
				continue
			}
			warmed++
		}
	}
	log.Info().Int("warmed", warmed).Msg("cache warm-up done")
	return warmed
}

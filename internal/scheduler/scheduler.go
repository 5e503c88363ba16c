package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/Doc-Inf/Finanza/internal/cache"
	"github.com/Doc-Inf/Finanza/internal/queue"
	"github.com/Doc-Inf/Finanza/internal/repo"
	"github.com/Doc-Inf/Finanza/pkg/logger"
	"github.com/Doc-Inf/Finanza/pkg/nats"
)

// Scheduler enqueues a refresh task for every tracked symbol on a fixed
// interval. Retry/backoff beyond that stays with the queue; a user can
// always trigger a manual refresh through the API.
type Scheduler struct {
	repo      *repo.QuoteRepo
	publisher *nats.Publisher
	interval  time.Duration
	seen      *cache.SymbolBloomFilter
	scheduler gocron.Scheduler
}

func New(quoteRepo *repo.QuoteRepo, publisher *nats.Publisher, interval time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		repo:      quoteRepo,
		publisher: publisher,
		interval:  interval,
		seen:      cache.NewSymbolBloomFilter(100000, 0.001),
		scheduler: s,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	log := logger.Log

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.queueTrackedSymbols(ctx)
		}),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Info().Dur("interval", s.interval).Msg("scheduler started")

	go s.queueTrackedSymbols(ctx)

	return nil
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		logger.Log.Error().Err(err).Msg("scheduler shutdown error")
	}
}

func (s *Scheduler) queueTrackedSymbols(ctx context.Context) {
	log := logger.Log

	symbols, err := s.repo.ListTracked(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list tracked symbols")
		return
	}

	// fresh cycle, previous dedupe state no longer applies
	s.seen.Clear()

	queued := 0
	for _, symbol := range symbols {
		if s.seen.MayContain(symbol) {
			continue
		}
		s.seen.Add(symbol)

		task := queue.RefreshTask{
			ID:        uuid.NewString(),
			Symbol:    symbol,
			Source:    "scheduler",
			CreatedAt: time.Now().UTC(),
		}
		if err := s.publisher.PublishRefreshTask(ctx, task); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("enqueue refresh task")
			continue
		}
		queued++
	}

	log.Info().Int("tracked", len(symbols)).Int("queued", queued).Msg("refresh cycle queued")
}

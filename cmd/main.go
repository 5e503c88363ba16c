package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/Doc-Inf/Finanza/internal/api"
	"github.com/Doc-Inf/Finanza/internal/cache"
	"github.com/Doc-Inf/Finanza/internal/config"
	"github.com/Doc-Inf/Finanza/internal/fetcher"
	"github.com/Doc-Inf/Finanza/internal/repo"
	"github.com/Doc-Inf/Finanza/internal/scheduler"
	"github.com/Doc-Inf/Finanza/internal/worker"
	"github.com/Doc-Inf/Finanza/pkg/logger"
	"github.com/Doc-Inf/Finanza/pkg/nats"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.IsDev())
	log := logger.Log

	quoteRepo, err := repo.NewQuoteRepo(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer quoteRepo.Close()

	htmlCache, err := cache.NewHTMLCache(cfg.RedisURL, cfg.HTMLCacheTTL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without html cache")
		htmlCache = nil
	} else {
		defer htmlCache.Close()
	}

	natsClient, err := nats.New(cfg.NatsURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer natsClient.Close()

	pageFetcher := fetcher.New(fetcher.Config{
		Timeout:     cfg.FetchTimeout,
		InsecureTLS: cfg.InsecureTLS,
		RatePerSec:  cfg.FetchRatePerSec,
	})
	if cfg.InsecureTLS {
		log.Warn().Msg("TLS verification disabled, dev use only")
	}

	refresher := worker.NewRefresher(pageFetcher, quoteRepo, htmlCache)
	publisher := nats.NewPublisher(natsClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
	}()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             1 * 1024 * 1024,
	})
	api.NewHandler(quoteRepo, refresher, publisher).SetupRoutes(app)
	go func() {
		addr := ":" + cfg.HTTPPort
		log.Info().Str("addr", addr).Msg("HTTP API server starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	refreshScheduler, err := scheduler.New(quoteRepo, publisher, cfg.RefreshInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := refreshScheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer refreshScheduler.Stop()

	dlq := nats.NewDLQHandler(natsClient)
	go func() {
		if err := dlq.Run(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("DLQ handler error")
		}
	}()

	log.Info().
		Str("nats", cfg.NatsURL).
		Int("workers", cfg.WorkerCount).
		Msg("scraper started")

	refreshWorker := worker.NewRefreshWorker(natsClient, refresher)
	if err := refreshWorker.RunPool(ctx, cfg.WorkerCount); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("refresh worker error")
	}
}

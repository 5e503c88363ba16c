package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Doc-Inf/Finanza/pkg/logger"
)

const (
	StreamRefreshTasks   = "QUOTE_REFRESH_TASKS"
	StreamRefreshResults = "QUOTE_REFRESH_RESULTS"
	StreamDLQ            = "DLQ"

	SubjectRefreshTasks   = "quote.refresh.tasks"
	SubjectRefreshResults = "quote.refresh.results"
	SubjectDLQ            = "dlq.>"
)

type Client struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func New(url string) (*Client, error) {
	log := logger.Log

	opts := []nats.Option{
		nats.Name("finanza-scraper"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Warn().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Error().Err(err).Msg("nats disconnected")
			}
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	client := &Client{nc: nc, js: js}

	if err := client.ensureStreams(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure streams: %w", err)
	}

	log.Info().Str("url", url).Msg("nats connected")
	return client, nil
}

func (c *Client) ensureStreams(ctx context.Context) error {
	streams := []jetstream.StreamConfig{
		{
			Name:        StreamRefreshTasks,
			Subjects:    []string{SubjectRefreshTasks},
			Retention:   jetstream.WorkQueuePolicy,
			MaxAge:      6 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Discard:     jetstream.DiscardOld,
			MaxMsgs:     100000,
			Description: "Quote refresh tasks for scraper workers",
		},
		{
			Name:        StreamRefreshResults,
			Subjects:    []string{SubjectRefreshResults},
			Retention:   jetstream.WorkQueuePolicy,
			MaxAge:      24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Discard:     jetstream.DiscardOld,
			MaxMsgs:     100000,
			Description: "Refresh outcomes for monitoring",
		},
		{
			Name:        StreamDLQ,
			Subjects:    []string{SubjectDLQ},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      7 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Discard:     jetstream.DiscardOld,
			MaxMsgs:     10000,
			Description: "Dead letter queue for failed tasks",
		},
	}

	for _, cfg := range streams {
		_, err := c.js.CreateOrUpdateStream(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create stream %s: %w", cfg.Name, err)
		}
		logger.Log.Debug().Str("stream", cfg.Name).Msg("stream ensured")
	}

	return nil
}

func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

func (c *Client) Close() {
	c.nc.Close()
}

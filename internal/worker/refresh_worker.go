package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/Doc-Inf/Finanza/internal/queue"
	"github.com/Doc-Inf/Finanza/pkg/logger"
	"github.com/Doc-Inf/Finanza/pkg/nats"
)

// RefreshWorker consumes refresh tasks off the work queue and publishes an
// outcome per task.
type RefreshWorker struct {
	natsClient *nats.Client
	publisher  *nats.Publisher
	refresher  *Refresher
}

func NewRefreshWorker(natsClient *nats.Client, refresher *Refresher) *RefreshWorker {
	return &RefreshWorker{
		natsClient: natsClient,
		publisher:  nats.NewPublisher(natsClient),
		refresher:  refresher,
	}
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	return w.RunPool(ctx, 1)
}

func (w *RefreshWorker) RunPool(ctx context.Context, workerCount int) error {
	log := logger.Log

	if workerCount < 1 {
		workerCount = 1
	}

	consumer, err := nats.NewConsumer(w.natsClient, nats.ConsumerConfig{
		Stream:        nats.StreamRefreshTasks,
		Consumer:      "refresh-worker",
		MaxAckPending: workerCount,
		AckWait:       5 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	log.Info().Int("workers", workerCount).Msg("refresh worker pool started")

	return consumer.ConsumePool(ctx, workerCount, func(ctx context.Context, msg *nats.Message) error {
		var task queue.RefreshTask
		if err := msg.Unmarshal(&task); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal refresh task")
			return err
		}

		w.processTask(ctx, &task)
		return nil
	})
}

func (w *RefreshWorker) processTask(ctx context.Context, task *queue.RefreshTask) {
	log := logger.Log

	log.Info().
		Str("task", task.ID).
		Str("symbol", task.Symbol).
		Str("source", task.Source).
		Msg("refresh started")

	result := w.refresher.Refresh(ctx, task.Symbol)
	result.TaskID = task.ID

	if result.Error != "" {
		log.Warn().
			Str("task", task.ID).
			Str("symbol", task.Symbol).
			Str("reason", result.Error).
			Msg("refresh failed")
	}

	if err := w.publisher.PublishRefreshResult(ctx, result); err != nil {
		log.Error().Err(err).Str("task", task.ID).Msg("failed to publish refresh result")
	}
}

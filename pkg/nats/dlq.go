package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/Doc-Inf/Finanza/pkg/logger"
)

// DLQHandler picks up tasks that exhausted their delivery attempts and parks
// a record of each on the DLQ stream, so a stuck symbol can be inspected
// later instead of silently dropping out.
type DLQHandler struct {
	nc        *nats.Conn
	publisher *Publisher
}

func NewDLQHandler(client *Client) *DLQHandler {
	return &DLQHandler{nc: client.nc, publisher: NewPublisher(client)}
}

type AdvisoryMaxDeliveries struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Stream     string `json:"stream"`
	Consumer   string `json:"consumer"`
	StreamSeq  uint64 `json:"stream_seq"`
	Deliveries int    `json:"deliveries"`
}

func (h *DLQHandler) Run(ctx context.Context) error {
	log := logger.Log

	sub, err := h.nc.Subscribe("$JS.EVENT.ADVISORY.CONSUMER.MAX_DELIVERIES.>", func(msg *nats.Msg) {
		var advisory AdvisoryMaxDeliveries
		if err := json.Unmarshal(msg.Data, &advisory); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal DLQ advisory")
			return
		}

		log.Error().
			Str("stream", advisory.Stream).
			Str("consumer", advisory.Consumer).
			Uint64("seq", advisory.StreamSeq).
			Int("deliveries", advisory.Deliveries).
			Msg("DLQ: message reached max deliveries")

		if err := h.publisher.PublishToDLQ(ctx, advisory.Stream, advisory, "max deliveries reached"); err != nil {
			log.Error().Err(err).Msg("failed to park advisory on DLQ stream")
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	log.Info().Msg("DLQ handler started")

	<-ctx.Done()
	return nil
}

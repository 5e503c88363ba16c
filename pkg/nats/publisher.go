package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{js: client.JetStream()}
}

func (p *Publisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	return nil
}

func (p *Publisher) PublishRefreshTask(ctx context.Context, task any) error {
	return p.Publish(ctx, SubjectRefreshTasks, task)
}

func (p *Publisher) PublishRefreshResult(ctx context.Context, result any) error {
	return p.Publish(ctx, SubjectRefreshResults, result)
}

func (p *Publisher) PublishToDLQ(ctx context.Context, originalSubject string, data any, reason string) error {
	dlqMsg := map[string]any{
		"original_subject": originalSubject,
		"data":             data,
		"reason":           reason,
	}
	return p.Publish(ctx, "dlq."+originalSubject, dlqMsg)
}

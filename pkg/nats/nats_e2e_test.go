//go:build e2e
// +build e2e

package nats

import (
	"context"
	"os"
	"testing"
	"time"
)

func testClient(t *testing.T) *Client {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}

	c, err := New(url)
	if err != nil {
		t.Skipf("nats not reachable: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestPublishConsumeRoundTrip_E2E(t *testing.T) {
	c := testClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pub := NewPublisher(c)
	task := map[string]string{"id": "e2e-roundtrip-1", "symbol": "E2E_AAPL"}
	if err := pub.PublishRefreshTask(ctx, task); err != nil {
		t.Fatalf("PublishRefreshTask: %v", err)
	}

	consumer, err := NewConsumer(c, ConsumerConfig{
		Stream:   StreamRefreshTasks,
		Consumer: "e2e-roundtrip",
		AckWait:  30 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}

	// the work queue may hold leftovers from earlier runs, drain until ours
	for {
		msg, err := consumer.fetchOne(ctx)
		if err != nil {
			t.Fatalf("fetchOne: %v", err)
		}
		if msg == nil {
			continue
		}

		var got struct {
			ID     string `json:"id"`
			Symbol string `json:"symbol"`
		}
		if err := msg.Unmarshal(&got); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		msg.msg.Ack()

		if got.ID == "e2e-roundtrip-1" {
			if got.Symbol != "E2E_AAPL" {
				t.Errorf("symbol = %q", got.Symbol)
			}
			return
		}
	}
}

package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "COMMUTE_DELAYS",
			Subjects:  []string{"commute.delay.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "COMMUTE_ALERTS",
			Subjects:  []string{"commute.alerts.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "COMMUTE_CASES",
			Subjects:  []string{"commute.case.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    72 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishDelay publishes a delay notification on the user's subject so
// the WebSocket relay can filter per connection.
func (p *Publisher) PublishDelay(ctx context.Context, userID string, n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("commute.delay."+userID, data)
	return err
}

// PublishCancellation publishes a cancellation notification.
func (p *Publisher) PublishCancellation(ctx context.Context, userID string, n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("commute.alerts."+userID, data)
	return err
}

// PublishCase hands a freshly detected compensation case to the claim
// worker queue.
func (p *Publisher) PublishCase(ctx context.Context, c *domain.CompensationCase) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("commute.case."+c.ID, data)
	return err
}

// PublishBroadcast sends a fan-out message outside JetStream.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("commute.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

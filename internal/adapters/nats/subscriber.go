package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeDelays(ctx context.Context, handler func(ctx context.Context, n *domain.Notification) error) error {
	sub, err := s.js.Subscribe("commute.delay.>", func(msg *nats.Msg) {
		var n domain.Notification
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &n); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("delay-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeCases(ctx context.Context, handler func(ctx context.Context, c *domain.CompensationCase) error) error {
	sub, err := s.js.Subscribe("commute.case.>", func(msg *nats.Msg) {
		var c domain.CompensationCase
		if err := json.Unmarshal(msg.Data, &c); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &c); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("case-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

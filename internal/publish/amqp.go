// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package publish

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/logging"
)

// AMQPAlertSink publishes new alerts to a durable RabbitMQ queue through
// the default exchange. A dropped connection is redialed on the next
// publish.
type AMQPAlertSink struct {
	url   string
	queue string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewAMQPAlertSink dials RabbitMQ and declares the queue.
func NewAMQPAlertSink(cfg *config.AlertsConfig) (*AMQPAlertSink, error) {
	s := &AMQPAlertSink{url: cfg.AMQPURL, queue: cfg.AMQPQueue}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// connect opens the connection and channel. Callers hold mu, except the
// constructor.
func (s *AMQPAlertSink) connect() error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		s.queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue %s: %w", s.queue, err)
	}

	s.conn = conn
	s.channel = ch
	return nil
}

// Name implements ingest.Sink.
func (s *AMQPAlertSink) Name() string {
	return config.AlertsAMQP
}

// Publish sends each alert of b as a persistent message.
func (s *AMQPAlertSink) Publish(ctx context.Context, b *ingest.Batch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("amqp alert publisher is closed")
	}
	if s.conn == nil || s.conn.IsClosed() || s.channel == nil || s.channel.IsClosed() {
		logging.Ctx(ctx).Warn().Str("queue", s.queue).Msg("RabbitMQ connection lost, reconnecting")
		_ = s.closeLocked()
		if err := s.connect(); err != nil {
			return 0, err
		}
	}

	for i := range b.Alerts {
		a := &b.Alerts[i]
		body, err := encodeAlert(a)
		if err != nil {
			return i, err
		}

		err = s.channel.PublishWithContext(ctx,
			"",      // default exchange
			s.queue, // routing key
			false,   // mandatory
			false,   // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    a.EventUUID,
				Timestamp:    a.RaisedAt,
				Type:         string(a.Severity),
				Headers: amqp.Table{
					MetadataDeviceID: a.DeviceID,
					MetadataSyncID:   b.SyncID,
				},
				Body: body,
			})
		if err != nil {
			return i, fmt.Errorf("publish alert %s: %w", a.EventUUID, err)
		}
	}
	return len(b.Alerts), nil
}

// Close closes the channel and connection. It is idempotent.
func (s *AMQPAlertSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeLocked()
}

func (s *AMQPAlertSink) closeLocked() error {
	var err error
	if s.channel != nil && !s.channel.IsClosed() {
		err = s.channel.Close()
	}
	if s.conn != nil && !s.conn.IsClosed() {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	s.channel = nil
	s.conn = nil
	return err
}

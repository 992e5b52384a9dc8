// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package publish

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// Metadata keys set on every alert message.
const (
	MetadataSeverity = "severity"
	MetadataDeviceID = "device_id"
	MetadataSyncID   = "sync_id"
)

// DefaultSubjectPrefix is used when the configured prefix is empty.
const DefaultSubjectPrefix = "fleetwatch.alerts"

// encodeAlert is the wire form shared by all alert sinks.
func encodeAlert(a *models.AlertNotification) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode alert %s: %w", a.EventUUID, err)
	}
	return data, nil
}

// AlertSubject returns the topic an alert is published on.
func AlertSubject(prefix string, severity models.Severity) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + string(severity)
}

// AlertSink publishes new alerts through a Watermill publisher.
type AlertSink struct {
	publisher message.Publisher
	prefix    string
	name      string

	mu     sync.RWMutex
	closed bool
}

// NewAlertSink wraps pub. name labels metrics and logs.
func NewAlertSink(name string, pub message.Publisher, prefix string) *AlertSink {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &AlertSink{publisher: pub, prefix: prefix, name: name}
}

// NewNATSAlertSink connects a core NATS Watermill publisher.
func NewNATSAlertSink(cfg *config.AlertsConfig) (*AlertSink, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	natsOpts := []natsgo.Option{
		natsgo.Name("fleetwatch"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS alert publisher: %w", err)
	}
	return NewAlertSink(config.AlertsNATS, pub, cfg.SubjectPrefix), nil
}

// Name implements ingest.Sink.
func (s *AlertSink) Name() string {
	return s.name
}

// Publish sends each alert of b as its own message. It stops at the first
// failure and reports how many were sent.
func (s *AlertSink) Publish(ctx context.Context, b *ingest.Batch) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, fmt.Errorf("%s alert publisher is closed", s.name)
	}

	for i := range b.Alerts {
		a := &b.Alerts[i]
		data, err := encodeAlert(a)
		if err != nil {
			return i, err
		}

		msg := message.NewMessage(a.EventUUID, data)
		msg.SetContext(ctx)
		msg.Metadata.Set(MetadataSeverity, string(a.Severity))
		msg.Metadata.Set(MetadataDeviceID, a.DeviceID)
		msg.Metadata.Set(MetadataSyncID, b.SyncID)

		if err := s.publisher.Publish(AlertSubject(s.prefix, a.Severity), msg); err != nil {
			return i, fmt.Errorf("publish alert %s: %w", a.EventUUID, err)
		}
	}
	return len(b.Alerts), nil
}

// Close shuts the publisher down. It is idempotent.
func (s *AlertSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.publisher.Close()
}

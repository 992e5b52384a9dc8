// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/models"
)

func testBatch() *ingest.Batch {
	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return &ingest.Batch{
		SyncID:   "sync-1",
		SyncType: models.SyncTypeEvents,
		Account:  "ACME",
		Alerts: []models.AlertNotification{
			{
				EventUUID:      "11111111-1111-1111-1111-111111111111",
				RowID:          42,
				DeviceID:       "SN1",
				CompanyID:      "ACME",
				AlertType:      "Door",
				Severity:       models.SeverityCritical,
				EventEntry:     "Main Door Open",
				EventTimestamp: &at,
				RaisedAt:       at.Add(time.Minute),
			},
			{
				EventUUID: "22222222-2222-2222-2222-222222222222",
				RowID:     43,
				DeviceID:  "SN2",
				CompanyID: "ACME",
				AlertType: "Cash Box",
				Severity:  models.SeverityCritical,
				RaisedAt:  at.Add(time.Minute),
			},
		},
	}
}

func TestAlertSubject(t *testing.T) {
	tests := []struct {
		prefix   string
		severity models.Severity
		want     string
	}{
		{"fleetwatch.alerts", models.SeverityCritical, "fleetwatch.alerts.critical"},
		{"", models.SeverityCritical, "fleetwatch.alerts.critical"},
		{"ops", models.SeverityInfo, "ops.info"},
	}
	for _, tt := range tests {
		if got := AlertSubject(tt.prefix, tt.severity); got != tt.want {
			t.Errorf("AlertSubject(%q, %q) = %q, want %q", tt.prefix, tt.severity, got, tt.want)
		}
	}
}

func TestAlertSink_GoChannel(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10}, watermill.NopLogger{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := pubsub.Subscribe(ctx, "fleetwatch.alerts.critical")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	sink := NewAlertSink("test", pubsub, "fleetwatch.alerts")
	b := testBatch()

	n, err := sink.Publish(ctx, b)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Publish() = %d, want 2", n)
	}

	for i, want := range b.Alerts {
		var msg *message.Message
		select {
		case msg = <-msgs:
		case <-ctx.Done():
			t.Fatalf("timed out waiting for message %d", i)
		}
		msg.Ack()

		if msg.UUID != want.EventUUID {
			t.Errorf("message UUID = %q, want %q", msg.UUID, want.EventUUID)
		}
		if got := msg.Metadata.Get(MetadataSeverity); got != "critical" {
			t.Errorf("severity metadata = %q", got)
		}
		if got := msg.Metadata.Get(MetadataSyncID); got != "sync-1" {
			t.Errorf("sync_id metadata = %q", got)
		}

		var decoded models.AlertNotification
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("payload decode error = %v", err)
		}
		if decoded.RowID != want.RowID || decoded.AlertType != want.AlertType || decoded.DeviceID != want.DeviceID {
			t.Errorf("payload = %+v, want %+v", decoded, want)
		}
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := sink.Publish(ctx, b); err == nil {
		t.Error("Publish() after Close error = nil")
	}
}

// failingPublisher fails every publish after the first ok ones.
type failingPublisher struct {
	ok  int
	n   int
	err error
}

func (p *failingPublisher) Publish(_ string, msgs ...*message.Message) error {
	if p.n >= p.ok {
		return p.err
	}
	p.n += len(msgs)
	return nil
}

func (p *failingPublisher) Close() error { return nil }

func TestAlertSink_StopsAtFirstFailure(t *testing.T) {
	errBroker := errors.New("broker unavailable")
	sink := NewAlertSink("test", &failingPublisher{ok: 1, err: errBroker}, "")

	n, err := sink.Publish(context.Background(), testBatch())
	if !errors.Is(err, errBroker) {
		t.Fatalf("Publish() error = %v, want %v", err, errBroker)
	}
	if n != 1 {
		t.Errorf("Publish() = %d, want 1 sent before the failure", n)
	}
}

func TestAlertSink_NoAlerts(t *testing.T) {
	sink := NewAlertSink("test", &failingPublisher{err: errors.New("unused")}, "")
	n, err := sink.Publish(context.Background(), &ingest.Batch{SyncID: "s"})
	if err != nil || n != 0 {
		t.Errorf("Publish() = %d, %v, want 0, nil", n, err)
	}
}

func startEmbeddedNATS(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("create NATS server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSAlertSink_EmbeddedServer(t *testing.T) {
	ns := startEmbeddedNATS(t)

	nc, err := natsgo.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync("fleetwatch.alerts.>")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	sink, err := NewNATSAlertSink(&config.AlertsConfig{
		Driver:        config.AlertsNATS,
		NATSURL:       ns.ClientURL(),
		SubjectPrefix: "fleetwatch.alerts",
	})
	if err != nil {
		t.Fatalf("NewNATSAlertSink() error = %v", err)
	}
	defer func() { _ = sink.Close() }()

	if sink.Name() != config.AlertsNATS {
		t.Errorf("Name() = %q", sink.Name())
	}

	b := testBatch()
	if _, err := sink.Publish(context.Background(), b); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	marshaler := &wmNats.NATSMarshaler{}
	for i, want := range b.Alerts {
		nm, err := sub.NextMsg(5 * time.Second)
		if err != nil {
			t.Fatalf("NextMsg() #%d error = %v", i, err)
		}
		if nm.Subject != "fleetwatch.alerts.critical" {
			t.Errorf("subject = %q", nm.Subject)
		}

		msg, err := marshaler.Unmarshal(nm)
		if err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if msg.UUID != want.EventUUID {
			t.Errorf("message UUID = %q, want %q", msg.UUID, want.EventUUID)
		}
		var decoded models.AlertNotification
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("payload decode error = %v", err)
		}
		if decoded.EventUUID != want.EventUUID {
			t.Errorf("payload event_uuid = %q", decoded.EventUUID)
		}
	}
}

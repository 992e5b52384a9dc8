// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package websocket

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/metrics"
)

// SinkName labels the hub in sink metrics and logs.
const SinkName = "websocket"

// broadcastBuffer bounds the hub queue and each client queue.
const broadcastBuffer = 256

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal path (SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may point at a hung shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types sent over the alert stream.
const (
	MessageTypeAlert         = "alert"
	MessageTypeSyncCompleted = "sync_completed"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

var (
	// ErrHubStopped is returned by Publish once Serve has returned.
	ErrHubStopped = errors.New("alert stream hub stopped")

	// ErrBroadcastFull is returned when the hub queue could not take every
	// message of a batch.
	ErrBroadcastFull = errors.New("alert stream broadcast queue full")
)

// Message is one frame on the alert stream.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SyncCompletedData follows the alerts of every committed cycle that had
// listeners.
type SyncCompletedData struct {
	SyncID    string `json:"sync_id"`
	SyncType  string `json:"sync_type"`
	Account   string `json:"account,omitempty"`
	Events    int    `json:"events"`
	Devices   int    `json:"devices"`
	Alerts    int    `json:"alerts"`
	Timestamp string `json:"timestamp"`
}

// Hub keeps the connected alert stream clients and fans messages out to
// them. It is both an ingest.Sink and a suture.Service.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	now        func() time.Time
}

// NewHub creates a hub. Nothing is delivered until Serve runs.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Serve runs the hub until ctx is canceled, then closes every client.
//
// Lifecycle events are drained before broadcasts so a client registered
// ahead of a message always receives it.
func (h *Hub) Serve(ctx context.Context) error {
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.register:
			h.addClient(client)
			continue
		case client := <-h.unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("Alert stream client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WSConnections.Dec()
		logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("Alert stream client disconnected")
	}
}

// join hands a new client to Serve. It reports false once the hub stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave never blocks past hub shutdown; by then the client is gone anyway.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", h.String()).
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("Alert stream hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns the clients in connection order. Callers hold mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients disconnects clients whose queue is full rather than
// blocking the hub on them.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			metrics.WSConnections.Dec()
			metrics.WSMessagesDropped.Inc()
			logging.Warn().Uint64("client_id", client.id).Msg("Alert stream client too slow, disconnecting")
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnections.Dec()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Name implements ingest.Sink.
func (h *Hub) Name() string {
	return SinkName
}

// Publish queues one alert message per new alert, then a sync_completed
// summary. Nothing is queued while no client is connected.
func (h *Hub) Publish(_ context.Context, b *ingest.Batch) (int, error) {
	select {
	case <-h.done:
		return 0, ErrHubStopped
	default:
	}
	if h.ClientCount() == 0 {
		return 0, nil
	}

	sent := 0
	for i := range b.Alerts {
		if !h.enqueue(Message{Type: MessageTypeAlert, Data: b.Alerts[i]}) {
			break
		}
		sent++
	}

	h.enqueue(Message{Type: MessageTypeSyncCompleted, Data: SyncCompletedData{
		SyncID:    b.SyncID,
		SyncType:  b.SyncType,
		Account:   b.Account,
		Events:    len(b.Events),
		Devices:   b.Devices,
		Alerts:    len(b.Alerts),
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}})

	if sent < len(b.Alerts) {
		return sent, fmt.Errorf("%w: queued %d of %d alerts", ErrBroadcastFull, sent, len(b.Alerts))
	}
	return sent, nil
}

func (h *Hub) enqueue(message Message) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", message.Type).Msg("Alert stream queue full, dropping message")
		return false
	}
}

// MarshalMessage encodes a message the way clients receive it.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

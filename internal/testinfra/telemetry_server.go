// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package testinfra

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// DefaultTelemetryAPIKey is the key MockTelemetryServer accepts.
const DefaultTelemetryAPIKey = "test-telemetry-key"

// TelemetryRequest is one captured request.
type TelemetryRequest struct {
	Path   string
	Query  url.Values
	APIKey string
}

// MockTelemetryServer serves /events and /devices. Requests with the wrong
// x-api-key get 401.
type MockTelemetryServer struct {
	APIKey string

	server *httptest.Server

	mu       sync.Mutex
	events   string
	devices  string
	status   int
	requests []TelemetryRequest
}

// NewMockTelemetryServer starts a server that returns empty arrays until
// configured. It is closed by t.Cleanup.
func NewMockTelemetryServer(t *testing.T) *MockTelemetryServer {
	t.Helper()

	m := &MockTelemetryServer{
		APIKey:  DefaultTelemetryAPIKey,
		events:  "[]",
		devices: "[]",
		status:  http.StatusOK,
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)
	return m
}

func (m *MockTelemetryServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, TelemetryRequest{
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		APIKey: r.Header.Get("x-api-key"),
	})
	status, events, devices := m.status, m.events, m.devices
	m.mu.Unlock()

	if r.Header.Get("x-api-key") != m.APIKey {
		http.Error(w, `{"message":"Forbidden"}`, http.StatusUnauthorized)
		return
	}

	var body string
	switch r.URL.Path {
	case "/events":
		body = events
	case "/devices":
		body = devices
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// URL is the base URL; endpoints are URL()+"/events" and URL()+"/devices".
func (m *MockTelemetryServer) URL() string {
	return m.server.URL
}

// SetEvents sets the /events response body.
func (m *MockTelemetryServer) SetEvents(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = body
}

// SetDevices sets the /devices response body.
func (m *MockTelemetryServer) SetDevices(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = body
}

// SetStatus sets the status code for both endpoints.
func (m *MockTelemetryServer) SetStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// Requests returns a copy of the captured requests.
func (m *MockTelemetryServer) Requests() []TelemetryRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TelemetryRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns how many requests hit path.
func (m *MockTelemetryServer) RequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// WaitForRequests waits until at least n requests reached path.
func (m *MockTelemetryServer) WaitForRequests(path string, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.RequestCount(path) >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return m.RequestCount(path) >= n
}

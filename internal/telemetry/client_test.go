// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/fleetwatch/internal/config"
)

// recordingServer serves fixed bodies per path and records the last request
// seen on each path.
type recordingServer struct {
	mu       sync.Mutex
	requests map[string]*http.Request
	status   int
	bodies   map[string]string
}

func newRecordingServer(t *testing.T, status int, bodies map[string]string) (*recordingServer, *httptest.Server) {
	t.Helper()
	rs := &recordingServer{requests: map[string]*http.Request{}, status: status, bodies: bodies}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.requests[r.URL.Path] = r.Clone(context.Background())
		rs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rs.status)
		_, _ = w.Write([]byte(rs.bodies[r.URL.Path]))
	}))
	t.Cleanup(srv.Close)
	return rs, srv
}

func (rs *recordingServer) last(path string) *http.Request {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.requests[path]
}

func testConfig(baseURL string) *config.TelemetryConfig {
	return &config.TelemetryConfig{
		BaseURL:       baseURL,
		APIKey:        "shared-key",
		DevicesAPIKey: "devices-key",
		Timeout:       5 * time.Second,
	}
}

func TestEventWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     *time.Time
		end       *time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"no bounds", nil, nil, now.Add(-24 * time.Hour), now},
		{"start only", &start, nil, start, now},
		{"end only", nil, &end, end.Add(-24 * time.Hour), end},
		{"both", &start, &end, start, end},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := EventWindow(now, tt.start, tt.end)
			if !s.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", s, tt.wantStart)
			}
			if !e.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", e, tt.wantEnd)
			}
		})
	}
}

func TestFetchEvents_RequestShape(t *testing.T) {
	rs, srv := newRecordingServer(t, http.StatusOK, map[string]string{
		"/events": `[{"serial":"SN1","row_id":101,"entry":"Door Open","eventtimestamp":"2024-03-10T11:00:00Z"}]`,
	})

	client := NewClient(testConfig(srv.URL))
	client.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	events, err := client.FetchEvents(context.Background(), "ACC-1", nil, nil)
	if err != nil {
		t.Fatalf("FetchEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Serial.String() != "SN1" || events[0].RowID.String() != "101" {
		t.Errorf("unexpected event: %+v", events[0])
	}

	req := rs.last("/events")
	if req == nil {
		t.Fatal("events endpoint was not called")
	}
	if got := req.Header.Get("x-api-key"); got != "shared-key" {
		t.Errorf("x-api-key = %q, want shared-key", got)
	}
	q := req.URL.Query()
	want := url.Values{
		"accountId": {"ACC-1"},
		"startDate": {"2024-03-09T12:00:00.000Z"},
		"endDate":   {"2024-03-10T12:00:00.000Z"},
	}
	for k, v := range want {
		if q.Get(k) != v[0] {
			t.Errorf("query %s = %q, want %q", k, q.Get(k), v[0])
		}
	}
}

func TestFetchEvents_ConvertsWindowToUTC(t *testing.T) {
	rs, srv := newRecordingServer(t, http.StatusOK, map[string]string{"/events": `[]`})
	client := NewClient(testConfig(srv.URL))

	zone := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, 1, 1, 2, 0, 0, 500_000_000, zone)
	end := time.Date(2024, 1, 2, 2, 0, 0, 0, zone)

	if _, err := client.FetchEvents(context.Background(), "", &start, &end); err != nil {
		t.Fatalf("FetchEvents() error = %v", err)
	}
	q := rs.last("/events").URL.Query()
	if got := q.Get("startDate"); got != "2024-01-01T00:00:00.500Z" {
		t.Errorf("startDate = %q", got)
	}
	if got := q.Get("endDate"); got != "2024-01-02T00:00:00.000Z" {
		t.Errorf("endDate = %q", got)
	}
	if !q.Has("accountId") {
		t.Error("accountId should always be sent to the events endpoint")
	}
}

func TestFetchDevices_OptionalParams(t *testing.T) {
	rs, srv := newRecordingServer(t, http.StatusOK, map[string]string{
		"/devices": `[{"serial":"SN1","eventrssi":-70},{"serial":"SN2"}]`,
	})
	client := NewClient(testConfig(srv.URL))

	devices, err := client.FetchDevices(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("FetchDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	req := rs.last("/devices")
	if req.URL.RawQuery != "" {
		t.Errorf("query = %q, want empty", req.URL.RawQuery)
	}
	if got := req.Header.Get("x-api-key"); got != "devices-key" {
		t.Errorf("x-api-key = %q, want devices-key", got)
	}

	if _, err := client.FetchDevices(context.Background(), "ACC-9", 250); err != nil {
		t.Fatalf("FetchDevices() error = %v", err)
	}
	q := rs.last("/devices").URL.Query()
	if q.Get("accountId") != "ACC-9" || q.Get("rowLimit") != "250" {
		t.Errorf("query = %v", q)
	}
}

func TestFetch_NonArrayBodyIsEmpty(t *testing.T) {
	bodies := []string{
		`{"message":"no data"}`,
		`null`,
		``,
		`"text"`,
		`<html>maintenance</html>`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			_, srv := newRecordingServer(t, http.StatusOK, map[string]string{"/events": body, "/devices": body})
			client := NewClient(testConfig(srv.URL))

			events, err := client.FetchEvents(context.Background(), "A", nil, nil)
			if err != nil {
				t.Fatalf("FetchEvents() error = %v", err)
			}
			if len(events) != 0 {
				t.Errorf("len(events) = %d, want 0", len(events))
			}
			devices, err := client.FetchDevices(context.Background(), "A", 0)
			if err != nil {
				t.Fatalf("FetchDevices() error = %v", err)
			}
			if len(devices) != 0 {
				t.Errorf("len(devices) = %d, want 0", len(devices))
			}
		})
	}
}

func TestFetch_SkipsNonObjectElements(t *testing.T) {
	_, srv := newRecordingServer(t, http.StatusOK, map[string]string{
		"/events": `[1, "x", null, {"serial":"SN1","row_id":"7"}]`,
	})
	client := NewClient(testConfig(srv.URL))

	events, err := client.FetchEvents(context.Background(), "A", nil, nil)
	if err != nil {
		t.Fatalf("FetchEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Serial.String() != "SN1" {
		t.Errorf("events = %+v", events)
	}
}

func TestFetch_MalformedArrayIsEmpty(t *testing.T) {
	_, srv := newRecordingServer(t, http.StatusOK, map[string]string{
		"/events":  `[{"serial":`,
		"/devices": `[1,2`,
	})
	client := NewClient(testConfig(srv.URL))

	events, err := client.FetchEvents(context.Background(), "A", nil, nil)
	if err != nil {
		t.Fatalf("FetchEvents() error = %v, want nil", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}

	devices, err := client.FetchDevices(context.Background(), "A", 0)
	if err != nil {
		t.Fatalf("FetchDevices() error = %v, want nil", err)
	}
	if len(devices) != 0 {
		t.Errorf("len(devices) = %d, want 0", len(devices))
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			_, srv := newRecordingServer(t, status, map[string]string{"/events": `{"error":"nope"}`})
			client := NewClient(testConfig(srv.URL))

			_, err := client.FetchEvents(context.Background(), "A", nil, nil)
			if !errors.Is(err, ErrUnexpectedStatus) {
				t.Fatalf("error = %v, want ErrUnexpectedStatus", err)
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *StatusError", err)
			}
			if se.StatusCode != status || se.Endpoint != "events" {
				t.Errorf("StatusError = %+v", se)
			}
			if !strings.Contains(se.Body, "nope") {
				t.Errorf("Body = %q, want upstream message", se.Body)
			}
		})
	}
}

func TestFetch_DoesNotRetry(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	if _, err := client.FetchDevices(context.Background(), "", 0); err == nil {
		t.Fatal("expected error")
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg)

	if _, err := client.FetchEvents(context.Background(), "A", nil, nil); err == nil {
		t.Error("expected timeout error")
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	_, srv := newRecordingServer(t, http.StatusOK, map[string]string{"/events": `[]`})
	client := NewClient(testConfig(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchEvents(ctx, "A", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestFetch_RateLimited(t *testing.T) {
	_, srv := newRecordingServer(t, http.StatusOK, map[string]string{"/devices": `[]`})
	cfg := testConfig(srv.URL)
	cfg.RequestsPerSecond = 0.5
	cfg.Burst = 1
	client := NewClient(cfg)

	if _, err := client.FetchDevices(context.Background(), "", 0); err != nil {
		t.Fatalf("first FetchDevices() error = %v", err)
	}

	// The second token is two seconds away, past this deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := client.FetchDevices(ctx, "", 0); err == nil {
		t.Error("expected limiter wait to fail")
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	client := NewClient(&config.TelemetryConfig{EventsURL: "not a url", APIKey: "k"})
	if _, err := client.FetchEvents(context.Background(), "A", nil, nil); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestFetch_EndpointOverrides(t *testing.T) {
	rs, srv := newRecordingServer(t, http.StatusOK, map[string]string{"/v2/report": `[]`})
	cfg := &config.TelemetryConfig{
		EventsURL:    srv.URL + "/v2/report?format=json",
		EventsAPIKey: "events-key",
		APIKey:       "shared",
	}
	client := NewClient(cfg)

	if _, err := client.FetchEvents(context.Background(), "A", nil, nil); err != nil {
		t.Fatalf("FetchEvents() error = %v", err)
	}
	req := rs.last("/v2/report")
	if req == nil {
		t.Fatal("override URL was not called")
	}
	if req.URL.Query().Get("format") != "json" {
		t.Error("existing query parameters should be preserved")
	}
	if req.Header.Get("x-api-key") != "events-key" {
		t.Errorf("x-api-key = %q, want events-key", req.Header.Get("x-api-key"))
	}
}

func TestReadBodyForError_Truncates(t *testing.T) {
	big := strings.Repeat("x", maxErrorBodySize+100)
	got := readBodyForError(strings.NewReader(big))
	if !strings.HasSuffix(string(got), "(truncated)") {
		t.Error("expected truncation marker")
	}
	if len(got) > maxErrorBodySize+32 {
		t.Errorf("len = %d, exceeds bound", len(got))
	}
}

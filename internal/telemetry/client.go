// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package telemetry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/metrics"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// DefaultWindow is the events window used when no bounds are given.
const DefaultWindow = 24 * time.Hour

// timestampLayout is ISO-8601 in UTC with milliseconds.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// maxErrorBodySize bounds how much of an error response is kept.
const maxErrorBodySize = 64 * 1024

// maxResponseSize bounds a successful response body.
const maxResponseSize = 256 << 20

// ErrUnexpectedStatus matches any *StatusError.
var ErrUnexpectedStatus = errors.New("telemetry: unexpected status")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Client talks to the telemetry events and devices endpoints.
type Client struct {
	eventsURL  string
	devicesURL string
	eventsKey  string
	devicesKey string

	client  *http.Client
	limiter *rate.Limiter // nil disables pacing
	now     func() time.Time
}

// NewClient builds a Client from cfg. Endpoint URLs and per-endpoint keys
// resolve through the config fallbacks.
func NewClient(cfg *config.TelemetryConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		eventsURL:  cfg.EventsEndpoint(),
		devicesURL: cfg.DevicesEndpoint(),
		eventsKey:  cfg.EventsKey(),
		devicesKey: cfg.DevicesKey(),
		client:     &http.Client{Timeout: timeout},
		limiter:    limiter,
		now:        time.Now,
	}
}

// EventWindow resolves the optional bounds of an events request. With no
// bounds the window is the trailing 24 hours ending now. A lone start ends
// now; a lone end starts 24 hours earlier.
func EventWindow(now time.Time, start, end *time.Time) (time.Time, time.Time) {
	e := now
	if end != nil {
		e = *end
	}
	s := e.Add(-DefaultWindow)
	if start != nil {
		s = *start
	}
	return s.UTC(), e.UTC()
}

// FetchEvents returns the raw events for account in [start, end].
func (c *Client) FetchEvents(ctx context.Context, account string, start, end *time.Time) ([]models.RawEvent, error) {
	s, e := EventWindow(c.now(), start, end)

	params := url.Values{}
	params.Set("accountId", account)
	params.Set("startDate", s.Format(timestampLayout))
	params.Set("endDate", e.Format(timestampLayout))

	body, err := c.get(ctx, "events", c.eventsURL, c.eventsKey, params)
	if err != nil {
		return nil, err
	}
	var events []models.RawEvent
	if err := decodeRecords(body, &events); err != nil {
		logMalformed(ctx, "events", err)
		events = nil
	}

	logging.Ctx(ctx).Debug().
		Str("account", account).
		Time("start", s).
		Time("end", e).
		Int("events", len(events)).
		Msg("Fetched telemetry events")
	return events, nil
}

// FetchDevices returns the raw device inventory. Empty account and
// non-positive rowLimit are left out of the query.
func (c *Client) FetchDevices(ctx context.Context, account string, rowLimit int) ([]models.RawDevice, error) {
	params := url.Values{}
	if account != "" {
		params.Set("accountId", account)
	}
	if rowLimit > 0 {
		params.Set("rowLimit", strconv.Itoa(rowLimit))
	}

	body, err := c.get(ctx, "devices", c.devicesURL, c.devicesKey, params)
	if err != nil {
		return nil, err
	}
	var devices []models.RawDevice
	if err := decodeRecords(body, &devices); err != nil {
		logMalformed(ctx, "devices", err)
		devices = nil
	}

	logging.Ctx(ctx).Debug().
		Str("account", account).
		Int("devices", len(devices)).
		Msg("Fetched telemetry devices")
	return devices, nil
}

// get performs one GET and returns the body of a 2xx response. Transport
// failures and other statuses are errors; the body is not interpreted here.
func (c *Client) get(ctx context.Context, endpoint, rawURL, apiKey string, params url.Values) ([]byte, error) {
	reqURL, err := withQuery(rawURL, params)
	if err != nil {
		return nil, fmt.Errorf("invalid %s URL: %w", endpoint, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s request not sent: %w", endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordTelemetryRequest(endpoint, "error", time.Since(started))
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordTelemetryRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, nil
}

// logMalformed records a 2xx body that could not be decoded. The fetch
// still succeeds with no records.
func logMalformed(ctx context.Context, endpoint string, err error) {
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("endpoint", endpoint).
		Msg("Malformed telemetry response, treating as empty")
}

// decodeRecords decodes a JSON array of objects into out. Bodies that are
// not arrays leave out empty. Array elements that are not objects are
// skipped. An error means a body that looked like an array but did not
// parse.
func decodeRecords(body []byte, out interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return err
	}

	objects := make([]json.RawMessage, 0, len(elems))
	for _, e := range elems {
		if t := bytes.TrimSpace(e); len(t) > 0 && t[0] == '{' {
			objects = append(objects, t)
		}
	}

	joined, err := json.Marshal(objects)
	if err != nil {
		return err
	}
	return json.Unmarshal(joined, out)
}

func withQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host in %q", rawURL)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fleetwatch/internal/database"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/models"
	"github.com/tomtom215/fleetwatch/internal/validation"
)

// Error codes used in API error bodies.
const (
	ErrCodeValidation         = validation.CodeValidation
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeDatabase           = "DATABASE_ERROR"
	ErrCodeSyncFailed         = "SYNC_FAILED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes response with an ETag. GET requests carrying a matching
// If-None-Match get 304.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if status == http.StatusOK && r.Method == http.MethodGet {
		etag := generateETag(response.Data)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag hashes the payload only, so the changing timestamp in the
// envelope does not defeat revalidation.
func generateETag(data interface{}) string {
	payload, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	_, _ = h.Write(payload)
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// respondSuccess wraps data in a success envelope. count is set for lists.
func respondSuccess(w http.ResponseWriter, r *http.Request, start time.Time, data interface{}, count *int) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       count,
		},
	})
}

// respondList is respondSuccess with the list length as count.
func respondList[T any](w http.ResponseWriter, r *http.Request, start time.Time, items []T) {
	n := len(items)
	respondSuccess(w, r, start, items, &n)
}

// respondAPIError writes apiErr with status, logging err when given.
func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", apiErr.Code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, r, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message}, err)
}

// respondStoreError maps ErrNotFound to 404 and anything else to 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, what string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, what+" not found", nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "failed to load "+what, err)
}

// validateRequest returns the VALIDATION_ERROR body for v, or nil.
func validateRequest(v interface{}) *models.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

// parseIntParam reads an optional integer query parameter. Absent means 0.
func parseIntParam(r *http.Request, key string) (int, *models.APIError) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.New(key, "number", key+" must be an integer", raw).ToAPIError()
	}
	return n, nil
}

// decodeBody decodes an optional JSON body into dst. An empty body leaves
// dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) *models.APIError {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &models.APIError{
			Code:    ErrCodeValidation,
			Message: "request body must be a JSON object",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}
	return nil
}

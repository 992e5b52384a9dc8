// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"net/http"
)

// AlertStream upgrades to the live alert websocket, or answers 503 when no
// stream is wired.
func (h *Handler) AlertStream(w http.ResponseWriter, r *http.Request) {
	if h.alertStream == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "alert stream is not enabled", nil)
		return
	}
	h.alertStream.ServeHTTP(w, r)
}

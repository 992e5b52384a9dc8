// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package cache

import (
	"context"

	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/logging"
)

// InvalidatorName labels the cache sink in metrics and logs.
const InvalidatorName = "read_cache"

// Invalidator is an ingest.Sink that clears a Cache after each committed
// cycle.
type Invalidator struct {
	cache *Cache
}

// NewInvalidator returns a sink clearing c.
func NewInvalidator(c *Cache) *Invalidator {
	return &Invalidator{cache: c}
}

// Name implements ingest.Sink.
func (i *Invalidator) Name() string {
	return InvalidatorName
}

// Publish clears the cache and reports how many entries were dropped.
func (i *Invalidator) Publish(ctx context.Context, b *ingest.Batch) (int, error) {
	n := i.cache.Clear()
	if n > 0 {
		logging.Ctx(ctx).Debug().Int("entries", n).Str("sync_id", b.SyncID).Msg("Read cache cleared")
	}
	return n, nil
}

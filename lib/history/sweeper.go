// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bureau-foundation/runhistory/lib/clock"
	"github.com/bureau-foundation/runhistory/lib/logstore"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

// SweepResult describes one retention sweep.
type SweepResult struct {
	// Expired is the number of attempts removed from the index by
	// this sweep.
	Expired int

	// Deleted counts logs removed from the store, including ones that
	// were already gone.
	Deleted int

	// Dropped counts deletions given up on after a permission error.
	Dropped int

	// Pending is the number of deletions left for the next sweep.
	Pending int
}

// Sweeper expires completed attempts whose logs have not been
// modified for longer than the maximum age. Expired attempts leave the
// index at once; their logs are deleted from the store, and deletions
// that fail transiently are retried on the next sweep.
type Sweeper struct {
	store    logstore.Store
	index    *Index
	clock    clock.Clock
	logger   *slog.Logger
	counters *sweepCounters

	maxAge time.Duration

	// sweepMu keeps sweeps from overlapping and guards pending.
	sweepMu sync.Mutex

	// pending maps log location to an expired attempt whose log has
	// not been deleted yet.
	pending map[string]historyschema.AttemptRecord

	// pendingCount mirrors len(pending) for readers that must not
	// wait for a sweep to finish.
	pendingCount atomic.Int64
}

// NewSweeper returns a sweeper with no pending deletions.
func NewSweeper(store logstore.Store, index *Index, clk clock.Clock, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		index:    index,
		clock:    clk,
		logger:   logger,
		counters: newSweepCounters(otelMeter()),
		maxAge:   maxAge,
		pending:  make(map[string]historyschema.AttemptRecord),
	}
}

// Pending returns the number of logs waiting to be deleted.
func (s *Sweeper) Pending() int { return int(s.pendingCount.Load()) }

// Sweep runs one retention pass.
func (s *Sweeper) Sweep(ctx context.Context) SweepResult {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	ctx, span := tracer.Start(ctx, "history.sweep")
	s.counters.ticks.Add(ctx, 1)

	now := s.clock.Now().UnixMilli()
	maxAge := s.maxAge.Milliseconds()

	var expired []historyschema.AttemptRecord
	s.index.update(func(current *Listing) *Listing {
		var retained []historyschema.ApplicationRecord
		removed := make(map[string]struct{})
		for _, application := range current.applications {
			var kept []historyschema.AttemptRecord
			var dropped int
			for _, attempt := range application.Attempts {
				if attempt.Completed && now-attempt.LastUpdated > maxAge {
					expired = append(expired, attempt)
					dropped++
				} else {
					kept = append(kept, attempt)
				}
			}
			switch {
			case dropped == 0:
			case len(kept) == 0:
				removed[application.AppID] = struct{}{}
			default:
				retained = append(retained, newApplication(application.AppID, kept))
			}
		}
		if len(expired) == 0 {
			return current
		}
		sortApplications(retained)
		return mergeApplications(current, retained, removed)
	})

	for _, attempt := range expired {
		s.pending[attempt.LogLocation] = attempt
	}
	result := SweepResult{Expired: len(expired)}
	s.deletePending(ctx, &result)
	result.Pending = len(s.pending)
	s.pendingCount.Store(int64(len(s.pending)))

	span.SetAttributes(
		attribute.Int("runhistory.expired", result.Expired),
		attribute.Int("runhistory.deleted", result.Deleted),
		attribute.Int("runhistory.pending", result.Pending),
	)
	endSpan(span, nil)

	if result.Expired > 0 || result.Deleted > 0 || result.Dropped > 0 || result.Pending > 0 {
		s.logger.Info("retention sweep finished",
			"expired", result.Expired,
			"deleted", result.Deleted,
			"dropped", result.Dropped,
			"pending", result.Pending,
		)
	}
	return result
}

// deletePending tries every pending deletion once, in log location
// order. A log that is already gone counts as deleted; a permission
// error is final.
func (s *Sweeper) deletePending(ctx context.Context, result *SweepResult) {
	locations := make([]string, 0, len(s.pending))
	for location := range s.pending {
		locations = append(locations, location)
	}
	sort.Strings(locations)

	for _, location := range locations {
		if ctx.Err() != nil {
			return
		}
		attempt := s.pending[location]
		err := s.store.RemoveAll(ctx, location)
		switch {
		case err == nil || errors.Is(err, logstore.ErrNotExist):
			delete(s.pending, location)
			result.Deleted++
			s.counters.deletions.Add(ctx, 1)
			s.logger.Debug("deleted expired event log", "path", location, "app_id", attempt.AppID)
		case errors.Is(err, logstore.ErrPermission):
			delete(s.pending, location)
			result.Dropped++
			s.counters.deletionFailures.Add(ctx, 1)
			s.logger.Info("no permission to delete expired event log, giving up",
				"path", location, "app_id", attempt.AppID, "error", err)
		default:
			s.counters.deletionFailures.Add(ctx, 1)
			s.logger.Warn("deleting expired event log failed, will retry",
				"path", location, "app_id", attempt.AppID, "error", err)
		}
	}
}

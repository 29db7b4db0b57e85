// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/runhistory/lib/eventlog"
	"github.com/bureau-foundation/runhistory/lib/logstore"
	"github.com/bureau-foundation/runhistory/lib/replay"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

// ErrMissingAppID means a log that must name its application did not.
var ErrMissingAppID = errors.New("event log has no application id")

// Default scan tuning.
const (
	DefaultWorkers   = 1
	DefaultBatchSize = 20
)

// Replayer summarizes one event stream. *replay.Replayer is the
// production implementation.
type Replayer interface {
	Replay(ctx context.Context, source io.Reader, sourceName string, allowIncomplete bool) (*replay.Summary, error)
}

// ScanResult describes one completed scan tick.
type ScanResult struct {
	// Listed is the number of root entries examined.
	Listed int

	// Candidates is the number of entries at or after the watermark.
	Candidates int

	Replayed int
	Failed   int

	// Watermark is the watermark after the tick.
	Watermark int64
}

// Scanner finds new and changed event logs under the store root and
// merges their attempts into an Index.
type Scanner struct {
	store    logstore.Store
	replayer Replayer
	index    *Index
	logger   *slog.Logger
	counters *scanCounters

	workers   int
	batchSize int

	// scanMu keeps ticks from overlapping.
	scanMu    sync.Mutex
	watermark atomic.Int64
}

// NewScanner returns a scanner that has seen nothing yet. workers
// bounds the number of batches replayed concurrently; batchSize is the
// number of entries per batch. Values below 1 select the defaults.
func NewScanner(store logstore.Store, replayer Replayer, index *Index, workers, batchSize int, logger *slog.Logger) *Scanner {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	scanner := &Scanner{
		store:     store,
		replayer:  replayer,
		index:     index,
		logger:    logger,
		counters:  newScanCounters(otelMeter()),
		workers:   workers,
		batchSize: batchSize,
	}
	scanner.watermark.Store(-1)
	return scanner
}

// Watermark returns the greatest modification time, in Unix
// milliseconds, seen by a completed tick. It is -1 before the first.
func (s *Scanner) Watermark() int64 { return s.watermark.Load() }

type candidate struct {
	entry   *eventlog.Entry
	modTime int64
}

// Scan runs one tick. An error means the tick was abandoned and the
// watermark did not move; attempts from batches that finished before
// the failure may already have been merged; the next tick replays
// them again.
func (s *Scanner) Scan(ctx context.Context) (result ScanResult, err error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	ctx, span := tracer.Start(ctx, "history.scan")
	defer func() {
		span.SetAttributes(
			attribute.Int("runhistory.listed", result.Listed),
			attribute.Int("runhistory.candidates", result.Candidates),
			attribute.Int("runhistory.replayed", result.Replayed),
			attribute.Int("runhistory.replay_failures", result.Failed),
		)
		endSpan(span, err)
	}()

	s.counters.ticks.Add(ctx, 1)
	watermark := s.watermark.Load()
	result.Watermark = watermark

	listing, err := s.store.List(ctx, "")
	if err != nil {
		s.counters.failures.Add(ctx, 1)
		return result, fmt.Errorf("listing log directory %s: %w", s.store, err)
	}
	result.Listed = len(listing)

	candidates, candidateMax, err := s.filter(ctx, listing, watermark)
	if err != nil {
		s.counters.failures.Add(ctx, 1)
		return result, err
	}
	result.Candidates = len(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})

	var replayed, failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for start := 0; start < len(candidates); start += s.batchSize {
		batch := candidates[start:min(start+s.batchSize, len(candidates))]
		group.Go(func() error {
			ok, bad, err := s.replayBatch(groupCtx, batch)
			replayed.Add(int64(ok))
			failed.Add(int64(bad))
			return err
		})
	}
	err = group.Wait()
	result.Replayed = int(replayed.Load())
	result.Failed = int(failed.Load())
	if err != nil {
		s.counters.failures.Add(ctx, 1)
		return result, fmt.Errorf("replaying event logs: %w", err)
	}

	if candidateMax > watermark {
		s.watermark.Store(candidateMax)
		result.Watermark = candidateMax
	}
	return result, nil
}

// filter resolves every listed entry and keeps those modified at or
// after watermark. candidateMax is the greatest modification time
// among all resolved entries, kept or not.
func (s *Scanner) filter(ctx context.Context, listing []logstore.FileInfo, watermark int64) ([]candidate, int64, error) {
	candidateMax := watermark
	var candidates []candidate
	for _, info := range listing {
		entry, err := eventlog.Resolve(ctx, s.store, info)
		if err != nil {
			if errors.Is(err, logstore.ErrPermission) || errors.Is(err, logstore.ErrNotExist) {
				s.logger.Debug("skipping unreadable log entry", "path", info.Path, "error", err)
				continue
			}
			return nil, watermark, fmt.Errorf("resolving %s: %w", info.Path, err)
		}
		modTime, ok := entry.ModTime()
		if !ok {
			continue
		}
		candidateMax = max(candidateMax, modTime)
		if modTime >= watermark {
			candidates = append(candidates, candidate{entry: entry, modTime: modTime})
		}
	}
	return candidates, candidateMax, nil
}

// replayBatch replays every entry of batch and merges the successes as
// one update. Per-entry failures are logged and counted; only
// cancellation fails the batch.
func (s *Scanner) replayBatch(ctx context.Context, batch []candidate) (replayed, failed int, err error) {
	records := make([]historyschema.AttemptRecord, 0, len(batch))
	for _, candidate := range batch {
		if err := ctx.Err(); err != nil {
			return replayed, failed, err
		}
		record, err := s.replayEntry(ctx, candidate.entry)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return replayed, failed, ctxErr
			}
			failed++
			s.counters.replayFailures.Add(ctx, 1)
			s.logger.Warn("event log replay failed", "path", candidate.entry.Path, "error", err)
			continue
		}
		replayed++
		records = append(records, record)
	}
	s.counters.entriesReplayed.Add(ctx, replayed)
	s.index.Merge(records)
	return replayed, failed, nil
}

func (s *Scanner) replayEntry(ctx context.Context, entry *eventlog.Entry) (historyschema.AttemptRecord, error) {
	reader, sourceName, err := entry.Open(ctx, s.store)
	if err != nil {
		return historyschema.AttemptRecord{}, err
	}
	defer reader.Close()

	summary, err := s.replayer.Replay(ctx, reader, sourceName, !entry.Completed())
	if err != nil {
		return historyschema.AttemptRecord{}, fmt.Errorf("replaying %s: %w", sourceName, err)
	}

	appID := summary.AppID
	if appID == "" {
		if entry.RequiresAppID() {
			return historyschema.AttemptRecord{}, fmt.Errorf("replaying %s: %w", sourceName, ErrMissingAppID)
		}
		appID = entry.Name
	}
	modTime, _ := entry.ModTime()
	record := historyschema.AttemptRecord{
		LogLocation: entry.Path,
		AppID:       appID,
		AppName:     summary.AppName,
		AttemptID:   summary.AttemptID,
		StartTime:   summary.StartTime,
		EndTime:     summary.EndTime,
		LastUpdated: modTime,
		User:        summary.User,
		Completed:   entry.Completed(),
	}
	if err := record.Validate(); err != nil {
		return historyschema.AttemptRecord{}, err
	}
	s.logger.Debug("replayed event log",
		"path", entry.Path,
		"app_id", appID,
		"attempt_id", record.AttemptID,
		"writer_version", summary.Version,
	)
	return record, nil
}

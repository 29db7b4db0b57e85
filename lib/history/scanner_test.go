// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/runhistory/lib/logstore"
	"github.com/bureau-foundation/runhistory/lib/replay"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

func newTestScanner(store logstore.Store, workers, batchSize int) (*Scanner, *Index) {
	index := NewIndex()
	return NewScanner(store, replay.New(), index, workers, batchSize, discardLogger()), index
}

func scan(t *testing.T, scanner *Scanner) ScanResult {
	t.Helper()
	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return result
}

func TestScanIndexesLogs(t *testing.T) {
	store := logstore.NewMemory()
	store.WriteFile("app-1", eventLog("app-1", "", 100, 200), at(1000))
	store.WriteFile("app-2.inprogress", eventLog("app-2", "1", 300, historyschema.NotFinished), at(2000))

	scanner, index := newTestScanner(store, 1, 20)
	if got := scanner.Watermark(); got != -1 {
		t.Fatalf("initial Watermark() = %d, want -1", got)
	}
	result := scan(t, scanner)

	want := ScanResult{Listed: 2, Candidates: 2, Replayed: 2, Watermark: 2000}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("ScanResult (-want +got):\n%s", diff)
	}

	listing := index.Snapshot()
	checkListing(t, listing)
	if diff := cmp.Diff([]string{"app-1", "app-2"}, appOrder(listing)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}

	finished, err := listing.Attempt("app-1", "")
	if err != nil {
		t.Fatalf("Attempt(app-1): %v", err)
	}
	wantFinished := historyschema.AttemptRecord{
		LogLocation: "app-1",
		AppID:       "app-1",
		AppName:     "job",
		StartTime:   100,
		EndTime:     200,
		LastUpdated: 1000,
		User:        "alice",
		Completed:   true,
	}
	if diff := cmp.Diff(wantFinished, finished); diff != "" {
		t.Errorf("app-1 attempt (-want +got):\n%s", diff)
	}

	running, err := listing.Attempt("app-2", "1")
	if err != nil {
		t.Fatalf("Attempt(app-2, 1): %v", err)
	}
	if running.Completed || !running.Running() || running.LastUpdated != 2000 {
		t.Errorf("app-2 attempt = %+v, want running, not completed, updated at 2000", running)
	}
}

func TestScanWatermarkIsInclusive(t *testing.T) {
	store := logstore.NewMemory()
	store.WriteFile("app-1.inprogress", eventLog("app-1", "", 100, historyschema.NotFinished), at(1000))
	scanner, index := newTestScanner(store, 1, 20)
	scan(t, scanner)

	// Rewritten within the same millisecond: the modification time
	// equals the watermark and must still be picked up.
	store.WriteFile("app-1.inprogress", eventLog("app-1", "", 100, 400), at(1000))
	store.WriteFile("old", eventLog("old", "", 1, 2), at(999))
	result := scan(t, scanner)
	if result.Candidates != 1 || result.Replayed != 1 {
		t.Errorf("second scan = %+v, want exactly the entry at the watermark", result)
	}

	attempt, err := index.Snapshot().Attempt("app-1", "")
	if err != nil {
		t.Fatalf("Attempt(app-1): %v", err)
	}
	if attempt.EndTime != 400 {
		t.Errorf("EndTime = %d, want 400 from the rewritten log", attempt.EndTime)
	}
	if _, err := index.Snapshot().Application("old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("entry older than the watermark was indexed: %v", err)
	}
}

func TestScanWatermarkNeverDecreases(t *testing.T) {
	store := logstore.NewMemory()
	scanner, _ := newTestScanner(store, 1, 20)
	ctx := context.Background()

	steps := []struct {
		write   string
		modTime int64
		remove  string
	}{
		{write: "a", modTime: 2000},
		{write: "b", modTime: 1500, remove: "a"},
		{write: "c", modTime: 3000},
		{remove: "c"},
		{write: "d", modTime: 2500},
	}
	previous := scanner.Watermark()
	for i, step := range steps {
		if step.remove != "" {
			if err := store.RemoveAll(ctx, step.remove); err != nil {
				t.Fatalf("RemoveAll(%s): %v", step.remove, err)
			}
		}
		if step.write != "" {
			store.WriteFile(step.write, eventLog(step.write, "", 1, 2), at(step.modTime))
		}
		scan(t, scanner)
		current := scanner.Watermark()
		if current < previous {
			t.Fatalf("step %d: watermark went from %d to %d", i, previous, current)
		}
		previous = current
	}
	if previous != 3000 {
		t.Errorf("final watermark = %d, want 3000", previous)
	}
}

func TestScanRootListingFailureKeepsWatermark(t *testing.T) {
	store := logstore.NewMemory()
	store.WriteFile("app-1", eventLog("app-1", "", 1, 2), at(1000))
	scanner, index := newTestScanner(store, 1, 20)

	store.Fail(logstore.OpList, "", logstore.ErrUnavailable)
	if _, err := scanner.Scan(context.Background()); !errors.Is(err, logstore.ErrUnavailable) {
		t.Fatalf("Scan error = %v, want ErrUnavailable", err)
	}
	if got := scanner.Watermark(); got != -1 {
		t.Errorf("Watermark() after failed tick = %d, want -1", got)
	}
	if got := index.Snapshot().Len(); got != 0 {
		t.Errorf("failed tick indexed %d applications", got)
	}
	if got := scanner.counters.failures.Load(); got != 1 {
		t.Errorf("scan failures = %d, want 1", got)
	}

	store.Fail(logstore.OpList, "", nil)
	scan(t, scanner)
	if got := scanner.Watermark(); got != 1000 {
		t.Errorf("Watermark() after recovery = %d, want 1000", got)
	}
}

func TestScanSkipsPermissionDeniedEntry(t *testing.T) {
	store := logstore.NewMemory()
	store.WriteFile("denied/EVENT_LOG_1", eventLog("denied", "", 1, 2), at(5000))
	store.WriteFile("app-1", eventLog("app-1", "", 1, 2), at(1000))
	store.Fail(logstore.OpList, "denied", logstore.ErrPermission)

	scanner, index := newTestScanner(store, 1, 20)
	result := scan(t, scanner)
	if result.Candidates != 1 || result.Failed != 0 {
		t.Errorf("ScanResult = %+v, want one candidate and no failures", result)
	}
	if diff := cmp.Diff([]string{"app-1"}, appOrder(index.Snapshot())); diff != "" {
		t.Errorf("indexed applications (-want +got):\n%s", diff)
	}
	if got := scanner.Watermark(); got != 1000 {
		t.Errorf("Watermark() = %d, want 1000", got)
	}

	store.Fail(logstore.OpList, "denied", nil)
	scan(t, scanner)
	if _, err := index.Snapshot().Application("denied"); err != nil {
		t.Errorf("entry not indexed once readable: %v", err)
	}
}

func TestScanReplayFailureIsIsolated(t *testing.T) {
	store := logstore.NewMemory()
	store.WriteFile("bad", []byte("{\"Event\":\"SparkListenerLogStart\"}\nnot json\n{\"Event\":\"SparkListenerJobEnd\"}\n"), at(3000))
	store.WriteFile("not-a-log", []byte("{\"Event\":\"SparkListenerJobStart\"}\n"), at(2500))
	store.WriteFile("missing-id", eventLog("", "", 1, 2), at(2200))
	store.WriteFile("negative-end", eventLog("negative-end", "", 1, -5), at(2150))
	store.WriteFile("good", eventLog("good", "", 1, 2), at(2000))
	// Legacy directories that cannot be opened: an unknown codec and
	// no EVENT_LOG_ file next to the markers.
	store.WriteFile("legacy-brotli/EVENT_LOG_1", eventLog("brotli", "", 1, 2), at(2700))
	store.WriteFile("legacy-brotli/COMPRESSION_CODEC_brotli", nil, at(2700))
	store.WriteFile("legacy-brotli/APPLICATION_COMPLETE", nil, at(2700))
	store.WriteFile("legacy-no-log/SPARK_VERSION_1.0", nil, at(2600))
	store.WriteFile("legacy-ok/EVENT_LOG_1", eventLog("legacy-ok", "", 1, 3), at(1900))
	store.WriteFile("legacy-ok/APPLICATION_COMPLETE", nil, at(1900))

	scanner, index := newTestScanner(store, 1, 2)
	result := scan(t, scanner)
	if result.Replayed != 2 || result.Failed != 6 {
		t.Errorf("ScanResult = %+v, want 2 replayed and 6 failed", result)
	}
	if diff := cmp.Diff([]string{"legacy-ok", "good"}, appOrder(index.Snapshot())); diff != "" {
		t.Errorf("indexed applications (-want +got):\n%s", diff)
	}
	if got := scanner.Watermark(); got != 3000 {
		t.Errorf("Watermark() = %d, want 3000: failed entries still advance it", got)
	}
	if got := scanner.counters.replayFailures.Load(); got != 6 {
		t.Errorf("replay failures = %d, want 6", got)
	}
}

func TestScanLegacyDirectories(t *testing.T) {
	store := logstore.NewMemory()
	// Old writer, still running, no application id in the log.
	store.WriteFile("legacy-old/EVENT_LOG_1", eventLog("", "", 100, historyschema.NotFinished), at(1000))
	store.WriteFile("legacy-old/SPARK_VERSION_1.0", nil, at(900))
	// Newer writer without an id is an error.
	store.WriteFile("legacy-new/EVENT_LOG_1", eventLog("", "", 100, 200), at(1000))
	store.WriteFile("legacy-new/SPARK_VERSION_1.2.0", nil, at(900))
	store.WriteFile("legacy-new/APPLICATION_COMPLETE", nil, at(1100))
	// Finished, with an id.
	store.WriteFile("legacy-done/EVENT_LOG_1", eventLog("app-9", "", 100, 300), at(1200))
	store.WriteFile("legacy-done/SPARK_VERSION_1.3.1", nil, at(900))
	store.WriteFile("legacy-done/APPLICATION_COMPLETE", nil, at(1300))
	// Not written yet.
	store.Mkdir("legacy-empty", at(9000))

	scanner, index := newTestScanner(store, 1, 20)
	result := scan(t, scanner)
	if result.Candidates != 3 || result.Replayed != 2 || result.Failed != 1 {
		t.Errorf("ScanResult = %+v, want 3 candidates, 2 replayed, 1 failed", result)
	}
	if got := scanner.Watermark(); got != 1300 {
		t.Errorf("Watermark() = %d, want 1300 (empty directories carry no time)", got)
	}

	listing := index.Snapshot()
	synthetic, err := listing.Attempt("legacy-old", "")
	if err != nil {
		t.Fatalf("legacy log without an id was not indexed under its name: %v", err)
	}
	if synthetic.Completed || synthetic.LogLocation != "legacy-old" || synthetic.LastUpdated != 1000 {
		t.Errorf("legacy-old attempt = %+v", synthetic)
	}
	done, err := listing.Attempt("app-9", "")
	if err != nil {
		t.Fatalf("Attempt(app-9): %v", err)
	}
	if !done.Completed || done.LastUpdated != 1300 || done.LogLocation != "legacy-done" {
		t.Errorf("legacy-done attempt = %+v", done)
	}
	if _, err := listing.Application("legacy-new"); !errors.Is(err, ErrNotFound) {
		t.Errorf("legacy log that requires an id was indexed: %v", err)
	}
}

func TestScanRenamedLogReplacesInProgressAttempt(t *testing.T) {
	store := logstore.NewMemory()
	store.WriteFile("app-1_1.inprogress", eventLog("app-1", "1", 100, historyschema.NotFinished), at(1000))
	scanner, index := newTestScanner(store, 1, 20)
	scan(t, scanner)

	if err := store.RemoveAll(context.Background(), "app-1_1.inprogress"); err != nil {
		t.Fatal(err)
	}
	store.WriteFile("app-1_1", eventLog("app-1", "1", 100, 500), at(2000))
	scan(t, scanner)

	application, err := index.Snapshot().Application("app-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(application.Attempts) != 1 {
		t.Fatalf("attempts = %+v, want one", application.Attempts)
	}
	if got := application.Attempts[0]; got.LogLocation != "app-1_1" || !got.Completed || got.EndTime != 500 {
		t.Errorf("attempt = %+v, want the completed log", got)
	}
}

func TestScanStaleInProgressCopyAcrossBatches(t *testing.T) {
	for _, batchSize := range []int{1, 20} {
		t.Run(fmt.Sprintf("batch=%d", batchSize), func(t *testing.T) {
			store := logstore.NewMemory()
			// A copy-then-delete rename caught halfway: both logs are listed.
			store.WriteFile("app-1_1", eventLog("app-1", "1", 100, 500), at(2000))
			store.WriteFile("app-1_1.inprogress", eventLog("app-1", "1", 100, historyschema.NotFinished), at(1000))

			scanner, index := newTestScanner(store, 1, batchSize)
			scan(t, scanner)

			application, err := index.Snapshot().Application("app-1")
			if err != nil {
				t.Fatal(err)
			}
			if len(application.Attempts) != 1 {
				t.Fatalf("attempts = %+v, want one", application.Attempts)
			}
			if got := application.Attempts[0]; got.LogLocation != "app-1_1" || !got.Completed || got.EndTime != 500 {
				t.Errorf("attempt = %+v, want the completed log", got)
			}
		})
	}
}

func TestScanParallelBatches(t *testing.T) {
	store := logstore.NewMemory()
	const logs = 47
	for i := range logs {
		name := fmt.Sprintf("app-%03d", i)
		store.WriteFile(name, eventLog(name, "", int64(i), int64(i+1000)), at(int64(10000+i)))
	}

	scanner, index := newTestScanner(store, 4, 5)
	result := scan(t, scanner)
	if result.Replayed != logs {
		t.Errorf("Replayed = %d, want %d", result.Replayed, logs)
	}
	listing := index.Snapshot()
	checkListing(t, listing)
	if listing.Len() != logs {
		t.Errorf("Len() = %d, want %d", listing.Len(), logs)
	}
	if got, want := appOrder(listing)[0], fmt.Sprintf("app-%03d", logs-1); got != want {
		t.Errorf("first application = %s, want %s", got, want)
	}
	if got := scanner.Watermark(); got != int64(10000+logs-1) {
		t.Errorf("Watermark() = %d", got)
	}
}

func TestScanCancelledTickFails(t *testing.T) {
	store := logstore.NewMemory()
	store.WriteFile("app-1", eventLog("app-1", "", 1, 2), at(1000))
	scanner, _ := newTestScanner(store, 1, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := scanner.Scan(ctx); err == nil {
		t.Fatal("Scan with a cancelled context succeeded")
	}
	if got := scanner.Watermark(); got != -1 {
		t.Errorf("Watermark() = %d, want -1", got)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/bureau-foundation/runhistory/lib/clock"
	"github.com/bureau-foundation/runhistory/lib/logstore"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

// ErrInvalidRoot means the log directory does not exist or is not a
// directory. The provider cannot start without one.
var ErrInvalidRoot = errors.New("invalid log directory")

// Default schedule.
const (
	DefaultUpdateInterval  = 10 * time.Second
	DefaultCleanerInterval = 24 * time.Hour
	DefaultMaxAge          = 7 * 24 * time.Hour
)

// Config tunes a Provider.
type Config struct {
	// UpdateInterval is the delay between the end of one scan and
	// the start of the next.
	UpdateInterval time.Duration

	// Workers and BatchSize tune replay; see NewScanner.
	Workers   int
	BatchSize int

	// CleanerEnabled turns on the retention sweeper, which runs
	// CleanerInterval after the previous sweep ended and expires
	// completed attempts not modified for longer than MaxAge.
	CleanerEnabled  bool
	CleanerInterval time.Duration
	MaxAge          time.Duration
}

// Validate checks that the durations and sizes are usable.
func (c *Config) Validate() error {
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("update interval must be positive, got %s", c.UpdateInterval)
	}
	if c.Workers < 1 {
		return fmt.Errorf("replay workers must be at least 1, got %d", c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("replay batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.CleanerEnabled {
		if c.CleanerInterval <= 0 {
			return fmt.Errorf("cleaner interval must be positive, got %s", c.CleanerInterval)
		}
		if c.MaxAge <= 0 {
			return fmt.Errorf("cleaner max age must be positive, got %s", c.MaxAge)
		}
	}
	return nil
}

// Provider keeps an Index of the logs under a store root up to date.
// Scans and sweeps never overlap each other: both run under one lock,
// so every update to the index is computed from the latest Listing.
type Provider struct {
	store   logstore.Store
	index   *Index
	scanner *Scanner
	sweeper *Sweeper
	clock   clock.Clock
	logger  *slog.Logger
	config  Config

	startedAt time.Time

	// taskMu serializes scan and sweep ticks.
	taskMu sync.Mutex

	lastScan  atomic.Int64
	lastSweep atomic.Int64

	gauges metric.Registration
}

// NewProvider returns a provider over store. Nothing is read until
// Start.
func NewProvider(store logstore.Store, replayer Replayer, clk clock.Clock, config Config, logger *slog.Logger) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	index := NewIndex()
	provider := &Provider{
		store:     store,
		index:     index,
		scanner:   NewScanner(store, replayer, index, config.Workers, config.BatchSize, logger),
		sweeper:   NewSweeper(store, index, clk, config.MaxAge, logger),
		clock:     clk,
		logger:    logger,
		config:    config,
		startedAt: clk.Now(),
	}
	provider.registerGauges(otelMeter())
	return provider, nil
}

// registerGauges reports the index size and watermark through the
// global meter provider. Failure to register is not fatal.
func (p *Provider) registerGauges(meter metric.Meter) {
	applications, err := meter.Int64ObservableGauge("runhistory.applications",
		metric.WithDescription("Applications in the index."))
	if err != nil {
		p.logger.Debug("registering applications gauge failed", "error", err)
		return
	}
	watermark, err := meter.Int64ObservableGauge("runhistory.scan.watermark",
		metric.WithDescription("Newest log modification time processed, in Unix milliseconds."),
		metric.WithUnit("ms"))
	if err != nil {
		p.logger.Debug("registering watermark gauge failed", "error", err)
		return
	}
	p.gauges, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(applications, int64(p.index.Snapshot().Len()))
		observer.ObserveInt64(watermark, p.scanner.Watermark())
		return nil
	}, applications, watermark)
	if err != nil {
		p.logger.Debug("registering gauge callback failed", "error", err)
	}
}

// Index returns the index the provider maintains.
func (p *Provider) Index() *Index { return p.index }

// Start checks the log directory and runs the initial scan. A missing
// or non-directory root fails with ErrInvalidRoot; a failed initial
// scan is logged and retried by Run.
func (p *Provider) Start(ctx context.Context) error {
	info, err := p.store.Stat(ctx, "")
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidRoot, p.store, err)
	}
	if !info.IsDir {
		return fmt.Errorf("%w %s: not a directory", ErrInvalidRoot, p.store)
	}
	p.logger.Info("history provider starting",
		"log_directory", p.store.String(),
		"update_interval", p.config.UpdateInterval,
		"cleaner_enabled", p.config.CleanerEnabled,
	)
	p.ScanOnce(ctx)
	return nil
}

// Run scans every UpdateInterval and, when the cleaner is enabled,
// sweeps every CleanerInterval, starting with a sweep. Each delay is
// measured from the end of the previous run of the same task. Run
// blocks until ctx is cancelled.
func (p *Provider) Run(ctx context.Context) {
	nextScan := p.clock.After(p.config.UpdateInterval)
	var nextSweep <-chan time.Time
	if p.config.CleanerEnabled {
		nextSweep = p.clock.After(0)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-nextScan:
			p.ScanOnce(ctx)
			nextScan = p.clock.After(p.config.UpdateInterval)
		case <-nextSweep:
			p.SweepOnce(ctx)
			nextSweep = p.clock.After(p.config.CleanerInterval)
		}
	}
}

// ScanOnce runs one scan tick. Failures are logged; the watermark
// stays where it was and the next tick retries.
func (p *Provider) ScanOnce(ctx context.Context) (ScanResult, error) {
	p.taskMu.Lock()
	defer p.taskMu.Unlock()

	result, err := p.scanner.Scan(ctx)
	if err != nil {
		p.logger.Error("scan failed", "log_directory", p.store.String(), "error", err)
		return result, err
	}
	p.lastScan.Store(p.clock.Now().UnixMilli())
	if result.Candidates > 0 {
		p.logger.Debug("scan finished",
			"candidates", result.Candidates,
			"replayed", result.Replayed,
			"failed", result.Failed,
			"watermark", result.Watermark,
		)
	}
	return result, nil
}

// SweepOnce runs one retention sweep.
func (p *Provider) SweepOnce(ctx context.Context) SweepResult {
	p.taskMu.Lock()
	defer p.taskMu.Unlock()

	result := p.sweeper.Sweep(ctx)
	p.lastSweep.Store(p.clock.Now().UnixMilli())
	return result
}

// Status reports the scanner and sweeper state.
func (p *Provider) Status() historyschema.Status {
	scan, sweep := p.scanner.counters, p.sweeper.counters
	return historyschema.Status{
		LogDirectory:     p.store.String(),
		Watermark:        p.scanner.Watermark(),
		Applications:     p.index.Snapshot().Len(),
		PendingDeletions: p.sweeper.Pending(),
		CleanerEnabled:   p.config.CleanerEnabled,
		ScanTicks:        scan.ticks.Load(),
		ScanFailures:     scan.failures.Load(),
		EntriesReplayed:  scan.entriesReplayed.Load(),
		ReplayFailures:   scan.replayFailures.Load(),
		SweepTicks:       sweep.ticks.Load(),
		Deletions:        sweep.deletions.Load(),
		DeletionFailures: sweep.deletionFailures.Load(),
		LastScan:         p.lastScan.Load(),
		LastSweep:        p.lastSweep.Load(),
		UptimeSeconds:    p.clock.Now().Sub(p.startedAt).Seconds(),
	}
}

// Close unregisters the provider's gauges.
func (p *Provider) Close() error {
	if p.gauges == nil {
		return nil
	}
	return p.gauges.Unregister()
}

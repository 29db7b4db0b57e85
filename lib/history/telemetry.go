// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/bureau-foundation/runhistory/lib/history"

var tracer = otel.Tracer(instrumentationName)

// counter is a monotonic count kept locally for the status action and
// mirrored to an OpenTelemetry instrument for whatever meter provider
// the binary installed.
type counter struct {
	total      atomic.Uint64
	instrument metric.Int64Counter
}

func newCounter(meter metric.Meter, name, description string) *counter {
	instrument, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		instrument, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter(name)
	}
	return &counter{instrument: instrument}
}

func (c *counter) Add(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	c.total.Add(uint64(n))
	c.instrument.Add(ctx, int64(n))
}

func (c *counter) Load() uint64 { return c.total.Load() }

// scanCounters are the Scanner's operational counts.
type scanCounters struct {
	ticks           *counter
	failures        *counter
	entriesReplayed *counter
	replayFailures  *counter
}

func newScanCounters(meter metric.Meter) *scanCounters {
	return &scanCounters{
		ticks:           newCounter(meter, "runhistory.scan.ticks", "Scan ticks started."),
		failures:        newCounter(meter, "runhistory.scan.failures", "Scan ticks abandoned without advancing the watermark."),
		entriesReplayed: newCounter(meter, "runhistory.replay.entries", "Event logs replayed into the index."),
		replayFailures:  newCounter(meter, "runhistory.replay.failures", "Event logs that could not be replayed."),
	}
}

// sweepCounters are the Sweeper's operational counts.
type sweepCounters struct {
	ticks            *counter
	deletions        *counter
	deletionFailures *counter
}

func newSweepCounters(meter metric.Meter) *sweepCounters {
	return &sweepCounters{
		ticks:            newCounter(meter, "runhistory.sweep.ticks", "Retention sweeps run."),
		deletions:        newCounter(meter, "runhistory.sweep.deletions", "Expired event logs deleted."),
		deletionFailures: newCounter(meter, "runhistory.sweep.deletion_failures", "Expired event log deletions that failed."),
	}
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func otelMeter() metric.Meter { return otel.Meter(instrumentationName) }

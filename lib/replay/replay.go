// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bureau-foundation/runhistory/lib/eventcodec"
	"github.com/bureau-foundation/runhistory/lib/eventlog"
	"github.com/bureau-foundation/runhistory/lib/schema/history"
)

// ErrNotApplicationLog means the stream contains no application
// events at all.
var ErrNotApplicationLog = errors.New("not an application event log")

// Listener event discriminators the summary depends on.
const (
	eventLogStart         = "SparkListenerLogStart"
	eventApplicationStart = "SparkListenerApplicationStart"
	eventApplicationEnd   = "SparkListenerApplicationEnd"
)

// contextCheckInterval is how many lines are read between context
// checks.
const contextCheckInterval = 1024

// Summary is what a replay learns about one application run. Unknown
// fields keep their defaults: AppName is history.NotStarted, StartTime
// is -1 and EndTime is history.NotFinished.
type Summary struct {
	AppID     string
	AppName   string
	AttemptID string
	User      string
	StartTime int64
	EndTime   int64

	// Version is the writer version announced by the log, if any.
	Version string
}

// event holds the union of fields read from the interesting events.
type event struct {
	Event     string `json:"Event"`
	Version   string `json:"Spark Version"`
	AppName   string `json:"App Name"`
	AppID     string `json:"App ID"`
	AttemptID string `json:"App Attempt ID"`
	User      string `json:"User"`
	Timestamp int64  `json:"Timestamp"`
}

// Replayer summarizes event logs. The zero value is ready to use.
type Replayer struct{}

// New returns a Replayer.
func New() *Replayer { return &Replayer{} }

// Replay reads source to the end and returns the summary.
//
// With allowIncomplete set the log may still be being written: a
// malformed final line or a truncated compressed stream ends the
// replay with what has been read so far instead of failing it.
func (r *Replayer) Replay(ctx context.Context, source io.Reader, sourceName string, allowIncomplete bool) (*Summary, error) {
	codec := eventcodec.FromName(path.Base(sourceName), eventlog.InProgressSuffix)
	if codec != "" {
		decompressed, err := eventcodec.NewReader(codec, source)
		if err != nil {
			return nil, fmt.Errorf("replaying %s: %w", sourceName, err)
		}
		defer decompressed.Close()
		source = decompressed
	}

	summary := &Summary{
		AppName:   history.NotStarted,
		StartTime: -1,
		EndTime:   history.NotFinished,
	}

	reader := bufio.NewReaderSize(source, 64*1024)
	var (
		recognized  bool
		lineNumber  int
		pendingLine int
		pendingErr  error
	)
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNumber++
			if lineNumber%contextCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			if pendingErr != nil {
				// A malformed line followed by more data is
				// corruption, not truncation.
				return nil, fmt.Errorf("replaying %s: line %d: %w", sourceName, pendingLine, pendingErr)
			}
			matched, err := apply(summary, line)
			if err != nil {
				pendingLine, pendingErr = lineNumber, err
			}
			recognized = recognized || matched
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// A compressed log cut off mid-block fails inside the
			// decoder with codec-specific errors.
			if allowIncomplete && (codec != "" || errors.Is(readErr, io.ErrUnexpectedEOF)) {
				break
			}
			return nil, fmt.Errorf("replaying %s: %w", sourceName, readErr)
		}
	}

	if pendingErr != nil && !allowIncomplete {
		return nil, fmt.Errorf("replaying %s: line %d: %w", sourceName, pendingLine, pendingErr)
	}
	if !recognized {
		return nil, fmt.Errorf("replaying %s: %w", sourceName, ErrNotApplicationLog)
	}
	return summary, nil
}

// apply folds one line into the summary. It reports whether the line
// was one of the summary events.
func apply(summary *Summary, line []byte) (bool, error) {
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return false, nil
	}
	// Most lines are task and stage events; skip them without a full
	// decode.
	if !strings.Contains(trimmed, eventLogStart) &&
		!strings.Contains(trimmed, eventApplicationStart) &&
		!strings.Contains(trimmed, eventApplicationEnd) {
		if !json.Valid([]byte(trimmed)) {
			return false, fmt.Errorf("malformed event")
		}
		return false, nil
	}

	var decoded event
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return false, fmt.Errorf("malformed event: %w", err)
	}
	switch decoded.Event {
	case eventLogStart:
		summary.Version = decoded.Version
	case eventApplicationStart:
		if decoded.AppName != "" {
			summary.AppName = decoded.AppName
		}
		summary.AppID = decoded.AppID
		summary.AttemptID = decoded.AttemptID
		summary.User = decoded.User
		summary.StartTime = decoded.Timestamp
	case eventApplicationEnd:
		summary.EndTime = decoded.Timestamp
	default:
		return false, nil
	}
	return true, nil
}

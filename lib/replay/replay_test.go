// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package replay

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/runhistory/lib/schema/history"
)

const completeLog = `{"Event":"SparkListenerLogStart","Spark Version":"3.5.1"}
{"Event":"SparkListenerApplicationStart","App Name":"nightly-etl","App ID":"app-20260101-0001","App Attempt ID":"1","Timestamp":1000,"User":"ana"}
{"Event":"SparkListenerJobStart","Job ID":0,"Submission Time":1200}
{"Event":"SparkListenerJobEnd","Job ID":0,"Completion Time":1800}
{"Event":"SparkListenerApplicationEnd","Timestamp":2000}
`

func TestReplayCompleteLog(t *testing.T) {
	summary, err := New().Replay(context.Background(), strings.NewReader(completeLog), "app-20260101-0001_1", false)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := &Summary{
		AppID:     "app-20260101-0001",
		AppName:   "nightly-etl",
		AttemptID: "1",
		User:      "ana",
		StartTime: 1000,
		EndTime:   2000,
		Version:   "3.5.1",
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	first, err := New().Replay(context.Background(), strings.NewReader(completeLog), "app", false)
	if err != nil {
		t.Fatalf("first Replay: %v", err)
	}
	second, err := New().Replay(context.Background(), strings.NewReader(completeLog), "app", false)
	if err != nil {
		t.Fatalf("second Replay: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("replays differ:\n%s", diff)
	}
}

func TestReplayRunningApplication(t *testing.T) {
	running := `{"Event":"SparkListenerApplicationStart","App Name":"stream","App ID":"app-2","Timestamp":150,"User":"bo"}
{"Event":"SparkListenerJobStart","Job ID":0`
	summary, err := New().Replay(context.Background(), strings.NewReader(running), "app-2.inprogress", true)
	if err != nil {
		t.Fatalf("Replay with allowIncomplete: %v", err)
	}
	if summary.EndTime != history.NotFinished || summary.StartTime != 150 || summary.AppID != "app-2" {
		t.Errorf("summary = %+v", summary)
	}

	if _, err := New().Replay(context.Background(), strings.NewReader(running), "app-2", false); err == nil {
		t.Error("truncated final line accepted without allowIncomplete")
	}
}

func TestReplayCorruptionInTheMiddleFails(t *testing.T) {
	corrupt := `{"Event":"SparkListenerApplicationStart","App ID":"app-3","Timestamp":1}
not json at all
{"Event":"SparkListenerApplicationEnd","Timestamp":2}
`
	if _, err := New().Replay(context.Background(), strings.NewReader(corrupt), "app-3.inprogress", true); err == nil {
		t.Error("corrupt middle line accepted")
	}
}

func TestReplayNotAnApplicationLog(t *testing.T) {
	_, err := New().Replay(context.Background(), strings.NewReader(`{"Event":"SparkListenerJobStart","Job ID":0}`+"\n"), "x", false)
	if !errors.Is(err, ErrNotApplicationLog) {
		t.Fatalf("error = %v, want ErrNotApplicationLog", err)
	}
	_, err = New().Replay(context.Background(), strings.NewReader(""), "empty", false)
	if !errors.Is(err, ErrNotApplicationLog) {
		t.Fatalf("empty stream error = %v, want ErrNotApplicationLog", err)
	}
}

func TestReplayWithoutApplicationStart(t *testing.T) {
	summary, err := New().Replay(context.Background(), strings.NewReader(`{"Event":"SparkListenerLogStart","Spark Version":"1.0.2"}`+"\n"), "old", false)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.AppName != history.NotStarted || summary.AppID != "" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestReplayCompressedByExtension(t *testing.T) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	writer.Write([]byte(completeLog))
	writer.Close()

	summary, err := New().Replay(context.Background(), &buffer, "app-20260101-0001.lz4", false)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.AppName != "nightly-etl" || summary.EndTime != 2000 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestReplayHonorsCancellation(t *testing.T) {
	var builder strings.Builder
	for i := 0; i < 3*contextCheckInterval; i++ {
		builder.WriteString(`{"Event":"SparkListenerTaskEnd"}` + "\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Replay(ctx, strings.NewReader(builder.String()), "big", false); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

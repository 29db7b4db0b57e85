// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(milliseconds int64) time.Time { return time.UnixMilli(milliseconds) }

// eventLog renders a minimal event log. An empty appID leaves the
// application id out; end == NotFinished leaves out the end event.
func eventLog(appID, attemptID string, start, end int64) []byte {
	var builder strings.Builder
	builder.WriteString(`{"Event":"SparkListenerLogStart","Spark Version":"3.5.1"}` + "\n")
	builder.WriteString(`{"Event":"SparkListenerApplicationStart","App Name":"job"`)
	if appID != "" {
		fmt.Fprintf(&builder, `,"App ID":%q`, appID)
	}
	if attemptID != "" {
		fmt.Fprintf(&builder, `,"App Attempt ID":%q`, attemptID)
	}
	fmt.Fprintf(&builder, `,"Timestamp":%d,"User":"alice"}`+"\n", start)
	builder.WriteString(`{"Event":"SparkListenerJobStart","Job ID":0}` + "\n")
	if end != historyschema.NotFinished {
		fmt.Fprintf(&builder, `{"Event":"SparkListenerApplicationEnd","Timestamp":%d}`+"\n", end)
	}
	return []byte(builder.String())
}

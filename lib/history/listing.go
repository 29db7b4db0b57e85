// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"errors"
	"fmt"

	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

// ErrNotFound means a lookup named an application or attempt that is
// not in the index.
var ErrNotFound = errors.New("not found")

// Listing is one published state of the index. A Listing is never
// modified after it is published; the records it returns share
// storage with it and must be treated as read-only.
type Listing struct {
	applications []historyschema.ApplicationRecord
	byID         map[string]int
}

var emptyListing = newListing(nil)

func newListing(applications []historyschema.ApplicationRecord) *Listing {
	byID := make(map[string]int, len(applications))
	for i := range applications {
		byID[applications[i].AppID] = i
	}
	return &Listing{applications: applications, byID: byID}
}

// Len returns the number of applications.
func (l *Listing) Len() int { return len(l.applications) }

// Applications returns every application in index order.
func (l *Listing) Applications() []historyschema.ApplicationRecord {
	return l.applications[:len(l.applications):len(l.applications)]
}

// Application returns the record for appID.
func (l *Listing) Application(appID string) (historyschema.ApplicationRecord, error) {
	index, ok := l.byID[appID]
	if !ok {
		return historyschema.ApplicationRecord{}, fmt.Errorf("application %q: %w", appID, ErrNotFound)
	}
	return l.applications[index], nil
}

// Attempt returns the attempt of appID whose attempt id is exactly
// attemptID. An empty attemptID matches only an attempt recorded
// without an id; choosing the latest attempt is up to the caller.
func (l *Listing) Attempt(appID, attemptID string) (historyschema.AttemptRecord, error) {
	application, err := l.Application(appID)
	if err != nil {
		return historyschema.AttemptRecord{}, err
	}
	attempt, ok := application.Attempt(attemptID)
	if !ok {
		return historyschema.AttemptRecord{}, fmt.Errorf("application %q attempt %q: %w", appID, attemptID, ErrNotFound)
	}
	return attempt, nil
}

// precedes reports whether a sorts strictly before b: the later end
// time of the latest attempt first, then the later start time. Both
// records must have at least one attempt.
func precedes(a, b *historyschema.ApplicationRecord) bool {
	latestA, latestB := a.Latest(), b.Latest()
	if latestA.EndTime != latestB.EndTime {
		return latestA.EndTime > latestB.EndTime
	}
	return latestA.StartTime > latestB.StartTime
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"sort"

	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

// mergeAttempts replaces the attempts in existing that share an
// attempt id with one in incoming, adds the rest of incoming, and
// returns the result sorted by start time, newest first. Two empty
// attempt ids are equal. When incoming itself repeats an attempt id
// (an in-progress log and its renamed final log in one scan), the one
// updated last wins. The same holds against existing: an attempt read
// from a different log that was updated strictly later is kept, so a
// stale in-progress copy replayed after its final log cannot undo it.
func mergeAttempts(existing, incoming []historyschema.AttemptRecord) []historyschema.AttemptRecord {
	latest := make(map[string]historyschema.AttemptRecord, len(incoming))
	order := make([]string, 0, len(incoming))
	for _, attempt := range incoming {
		previous, seen := latest[attempt.AttemptID]
		if !seen {
			order = append(order, attempt.AttemptID)
		}
		if !seen || attempt.LastUpdated >= previous.LastUpdated {
			latest[attempt.AttemptID] = attempt
		}
	}

	merged := make([]historyschema.AttemptRecord, 0, len(existing)+len(order))
	for _, attempt := range existing {
		replacement, replaced := latest[attempt.AttemptID]
		if !replaced {
			merged = append(merged, attempt)
			continue
		}
		if replacement.LogLocation != attempt.LogLocation && attempt.LastUpdated > replacement.LastUpdated {
			latest[attempt.AttemptID] = attempt
		}
	}
	for _, attemptID := range order {
		merged = append(merged, latest[attemptID])
	}
	sortAttempts(merged)
	return merged
}

func sortAttempts(attempts []historyschema.AttemptRecord) {
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].StartTime > attempts[j].StartTime
	})
}

// newApplication builds an application record from attempts already
// sorted newest first.
func newApplication(appID string, attempts []historyschema.AttemptRecord) historyschema.ApplicationRecord {
	return historyschema.ApplicationRecord{
		AppID:    appID,
		AppName:  attempts[0].AppName,
		Attempts: attempts,
	}
}

// groupAttempts folds records into the applications of current they
// belong to and returns the touched applications in index order.
func groupAttempts(current *Listing, records []historyschema.AttemptRecord) []historyschema.ApplicationRecord {
	grouped := make(map[string][]historyschema.AttemptRecord)
	var appIDs []string
	for _, record := range records {
		if _, ok := grouped[record.AppID]; !ok {
			appIDs = append(appIDs, record.AppID)
		}
		grouped[record.AppID] = append(grouped[record.AppID], record)
	}

	touched := make([]historyschema.ApplicationRecord, 0, len(appIDs))
	for _, appID := range appIDs {
		var existing []historyschema.AttemptRecord
		if index, ok := current.byID[appID]; ok {
			existing = current.applications[index].Attempts
		}
		touched = append(touched, newApplication(appID, mergeAttempts(existing, grouped[appID])))
	}
	sortApplications(touched)
	return touched
}

func sortApplications(applications []historyschema.ApplicationRecord) {
	sort.SliceStable(applications, func(i, j int) bool {
		return precedes(&applications[i], &applications[j])
	})
}

// mergeApplications merges the ordered applications of current with
// updated, which must also be in index order, in one linear pass.
// Applications of current that appear in updated or in removed are
// dropped from the current side; updated supplies their replacement.
// On a tie the current side is emitted first.
func mergeApplications(current *Listing, updated []historyschema.ApplicationRecord, removed map[string]struct{}) *Listing {
	replaced := make(map[string]struct{}, len(updated)+len(removed))
	for i := range updated {
		replaced[updated[i].AppID] = struct{}{}
	}
	for appID := range removed {
		replaced[appID] = struct{}{}
	}

	old := current.applications
	merged := make([]historyschema.ApplicationRecord, 0, len(old)+len(updated))
	emitted := make(map[string]struct{}, len(old)+len(updated))
	emit := func(application historyschema.ApplicationRecord) {
		if _, duplicate := emitted[application.AppID]; duplicate {
			return
		}
		emitted[application.AppID] = struct{}{}
		merged = append(merged, application)
	}

	i, j := 0, 0
	for i < len(old) || j < len(updated) {
		if i < len(old) {
			if _, skip := replaced[old[i].AppID]; skip {
				i++
				continue
			}
		}
		if j < len(updated) && (i >= len(old) || precedes(&updated[j], &old[i])) {
			emit(updated[j])
			j++
		} else {
			emit(old[i])
			i++
		}
	}
	return newListing(merged)
}

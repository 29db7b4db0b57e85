// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"sync"
	"sync/atomic"

	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
)

// Index holds the current Listing. Snapshot is lock-free; writers are
// serialized so that no update is computed from a stale Listing.
type Index struct {
	writeMu sync.Mutex
	current atomic.Pointer[Listing]
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	index := &Index{}
	index.current.Store(emptyListing)
	return index
}

// Snapshot returns the current Listing.
func (x *Index) Snapshot() *Listing {
	return x.current.Load()
}

// Merge folds freshly replayed attempts into the index and publishes
// the result. Attempts replace existing attempts with the same
// application and attempt id.
func (x *Index) Merge(records []historyschema.AttemptRecord) *Listing {
	if len(records) == 0 {
		return x.Snapshot()
	}
	return x.update(func(current *Listing) *Listing {
		return mergeApplications(current, groupAttempts(current, records), nil)
	})
}

// update publishes the Listing that build derives from the current
// one. build runs with the write lock held.
func (x *Index) update(build func(*Listing) *Listing) *Listing {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()
	next := build(x.current.Load())
	x.current.Store(next)
	return next
}

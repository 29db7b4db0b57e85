// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the
// history provider and the retention sweeper.
//
// Production code holds a Clock field and never calls time.Now or
// time.After directly. Binaries pass Real(); tests pass Fake(t0)
// and move time explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	provider := history.NewProvider(..., fake, ...)
//	go provider.Run(ctx)
//	fake.WaitForTimers(1)          // first scan timer armed
//	fake.Advance(10 * time.Second) // run the next scan
//
// WaitForTimers closes the race between a goroutine arming a
// timer and the test advancing the clock past it.
package clock

// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the current time for testability. Production
// code injects Real(); tests inject Fake() and move time by hand.
//
// Entitlement decisions depend on the current instant (expiry is
// checked on every evaluation), so anything that evaluates a license
// takes a Clock instead of calling time.Now directly. The verifier
// core goes further and accepts the instant as an explicit argument;
// Clock is for the callers that have to pick that instant.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake returns a FakeClock pinned to the given instant. Time stands
// still until Advance or Set is called.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for tests. Safe for concurrent
// use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the fake time forward (or backward, with a negative
// duration) by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set pins the fake time to the given instant.
func (c *FakeClock) Set(instant time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = instant
}

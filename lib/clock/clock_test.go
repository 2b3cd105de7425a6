// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestRealClockTracksWallClock(t *testing.T) {
	before := time.Now()
	now := Real().Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Real().Now() = %v outside [%v, %v]", now, before, after)
	}
}

func TestFakeClockStandsStill(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if !fake.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", fake.Now(), start)
	}
	// Still the same on the next read: no hidden wall-clock coupling.
	if !fake.Now().Equal(start) {
		t.Error("fake time drifted between reads")
	}
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(start)

	fake.Advance(48 * time.Hour)
	if got, want := fake.Now(), start.Add(48*time.Hour); !got.Equal(want) {
		t.Errorf("after Advance: Now() = %v, want %v", got, want)
	}

	fake.Advance(-24 * time.Hour)
	if got, want := fake.Now(), start.Add(24*time.Hour); !got.Equal(want) {
		t.Errorf("after negative Advance: Now() = %v, want %v", got, want)
	}
}

func TestFakeClockSet(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	fake.Set(expiry)
	if !fake.Now().Equal(expiry) {
		t.Errorf("after Set: Now() = %v, want %v", fake.Now(), expiry)
	}
}

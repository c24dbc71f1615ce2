package timeutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestMockClock_Now(t *testing.T) {
	fixedTime := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewMockClock(fixedTime)

	if now := clock.Now(); !now.Equal(fixedTime) {
		t.Errorf("got %v, want %v", now, fixedTime)
	}
	if now := clock.Now(); !now.Equal(fixedTime) {
		t.Errorf("second read moved the clock: %v", now)
	}
	assert.Equal(t, 2, clock.Reads())
}

func TestMockClock_SetAndAdvance(t *testing.T) {
	clock := NewMockClock(time.Time{})
	newTime := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	clock.Set(newTime)
	assert.True(t, clock.Now().Equal(newTime))

	clock.Advance(90 * time.Minute)
	assert.Equal(t, 90*time.Minute, clock.Since(newTime))
}

func TestSteppingClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewSteppingClock(start, time.Second)

	t0 := clock.Now()
	t1 := clock.Now()
	assert.Equal(t, start, t0)
	assert.Equal(t, time.Second, t1.Sub(t0))
	assert.Equal(t, 2*time.Second, clock.Since(start))
}

func TestMockClock_Concurrent(t *testing.T) {
	clock := NewSteppingClock(time.Unix(0, 0), time.Millisecond)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				clock.Now()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, clock.Reads())
	assert.Equal(t, 800*time.Millisecond, clock.Since(time.Unix(0, 0)))
}

func TestLoadLocation_Fallback(t *testing.T) {
	loc := LoadLocation("Not/AZone", 9*time.Hour)
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9*3600, offset)
	assert.Equal(t, "Not/AZone", loc.String())
}

package hitplot

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSchedulerCoalescesInvalidations(t *testing.T) {
	clock := NewManualClock(epoch)
	var ranAt []time.Time
	s := NewScheduler(clock, 300*time.Millisecond, func() { ranAt = append(ranAt, clock.Now()) })

	// Five invalidations 50ms apart, all inside the debounce window.
	for range 5 {
		s.Invalidate()
		clock.Advance(50 * time.Millisecond)
		s.Tick()
	}
	last := epoch.Add(200 * time.Millisecond)
	if !s.Stale() {
		t.Fatal("scheduler should be stale while a rebuild is pending")
	}
	if got := s.State(); got != StatePendingRebuild {
		t.Errorf("State() = %v, want %v", got, StatePendingRebuild)
	}

	for clock.Now().Before(last.Add(time.Second)) {
		clock.Advance(10 * time.Millisecond)
		s.Tick()
	}

	if len(ranAt) != 1 {
		t.Fatalf("rebuild ran %d times, want 1", len(ranAt))
	}
	if want := last.Add(300 * time.Millisecond); ranAt[0].Sub(want) > 10*time.Millisecond || ranAt[0].Before(want) {
		t.Errorf("rebuild ran at %v, want %v", ranAt[0].Sub(epoch), want.Sub(epoch))
	}
	if s.Stale() {
		t.Error("scheduler should be idle after the rebuild")
	}
	if s.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", s.Runs())
	}
}

func TestSchedulerFiresAtDeadline(t *testing.T) {
	clock := NewManualClock(epoch)
	runs := 0
	s := NewScheduler(clock, 100*time.Millisecond, func() { runs++ })

	s.Invalidate()
	deadline, armed := s.Deadline()
	if !armed || !deadline.Equal(epoch.Add(100*time.Millisecond)) {
		t.Fatalf("Deadline() = %v, %v; want epoch+100ms, true", deadline, armed)
	}

	clock.Advance(99 * time.Millisecond)
	if s.Tick() {
		t.Error("Tick before the deadline should not rebuild")
	}
	clock.Advance(time.Millisecond)
	if !s.Tick() {
		t.Error("Tick at the deadline should rebuild")
	}
	if s.Tick() {
		t.Error("Tick after the rebuild should be a no-op")
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestSchedulerZeroDelayIsSynchronous(t *testing.T) {
	runs := 0
	s := NewScheduler(NewManualClock(epoch), 0, func() { runs++ })

	s.Invalidate()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1 immediately", runs)
	}
	if s.Stale() {
		t.Error("zero-delay scheduler should be idle after Invalidate")
	}
	if s.Tick() {
		t.Error("Tick should have nothing to do")
	}
}

func TestSchedulerNegativeDelay(t *testing.T) {
	s := NewScheduler(nil, -time.Second, nil)
	if s.Delay() != 0 {
		t.Errorf("Delay() = %v, want 0", s.Delay())
	}
	s.Invalidate()
	if s.Runs() != 1 || s.Stale() {
		t.Errorf("Runs() = %d, Stale() = %v; want 1, false", s.Runs(), s.Stale())
	}
}

func TestSchedulerCancel(t *testing.T) {
	clock := NewManualClock(epoch)
	runs := 0
	s := NewScheduler(clock, 100*time.Millisecond, func() { runs++ })

	s.Invalidate()
	s.Cancel()
	s.Cancel()
	clock.Advance(time.Second)
	s.Tick()
	if runs != 0 {
		t.Errorf("runs = %d, want 0 after Cancel", runs)
	}
	if !s.Stale() {
		t.Error("a canceled rebuild leaves the layer stale")
	}

	// Cancel after a natural expiry is a no-op.
	s.Invalidate()
	clock.Advance(100 * time.Millisecond)
	s.Tick()
	s.Cancel()
	if runs != 1 || s.Stale() {
		t.Errorf("runs = %d, Stale() = %v; want 1, false", runs, s.Stale())
	}
}

func TestSchedulerReentrantInvalidate(t *testing.T) {
	t.Run("debounced", func(t *testing.T) {
		clock := NewManualClock(epoch)
		var s *Scheduler
		runs := 0
		s = NewScheduler(clock, 50*time.Millisecond, func() {
			runs++
			if runs == 1 {
				s.Invalidate()
			}
		})

		s.Invalidate()
		clock.Advance(50 * time.Millisecond)
		s.Tick()
		if runs != 1 {
			t.Fatalf("runs = %d, want 1", runs)
		}
		if got := s.State(); got != StatePendingRebuild {
			t.Errorf("State() = %v, want %v after a nested invalidate", got, StatePendingRebuild)
		}
		clock.Advance(50 * time.Millisecond)
		s.Tick()
		if runs != 2 || s.Stale() {
			t.Errorf("runs = %d, Stale() = %v; want 2, false", runs, s.Stale())
		}
	})

	t.Run("zero delay", func(t *testing.T) {
		var s *Scheduler
		runs, depth, maxDepth := 0, 0, 0
		s = NewScheduler(NewManualClock(epoch), 0, func() {
			depth++
			maxDepth = max(maxDepth, depth)
			runs++
			if runs == 1 {
				s.Invalidate()
			}
			depth--
		})

		s.Invalidate()
		if runs != 1 || maxDepth != 1 {
			t.Fatalf("runs = %d, maxDepth = %d; want 1, 1", runs, maxDepth)
		}
		if !s.Stale() {
			t.Error("a follow-up rebuild should keep the layer stale")
		}
		if !s.Tick() {
			t.Error("Tick should run the follow-up rebuild")
		}
		if runs != 2 || maxDepth != 1 || s.Stale() {
			t.Errorf("runs = %d, maxDepth = %d, Stale() = %v; want 2, 1, false", runs, maxDepth, s.Stale())
		}
	})
}

func TestSchedulerStateString(t *testing.T) {
	tests := []struct {
		s    SchedulerState
		want string
	}{
		{StateIdle, "idle"},
		{StatePendingRebuild, "pending"},
		{StateRebuilding, "rebuilding"},
		{SchedulerState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("SchedulerState(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(epoch)
	c.Advance(time.Minute)
	if got := c.Now(); !got.Equal(epoch.Add(time.Minute)) {
		t.Errorf("Now() = %v, want epoch+1m", got)
	}
	c.Set(epoch)
	if got := c.Now(); !got.Equal(epoch) {
		t.Errorf("Now() = %v, want epoch", got)
	}
}

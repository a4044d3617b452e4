package hitplot

import "time"

// DefaultDebounceDelay is the quiet period after the last invalidation before
// the interaction layer is rebuilt.
const DefaultDebounceDelay = 300 * time.Millisecond

// SchedulerState is the rebuild state of a Scheduler.
type SchedulerState uint8

const (
	StateIdle           SchedulerState = iota // interaction layer matches the data
	StatePendingRebuild                       // waiting for the debounce deadline
	StateRebuilding                           // rebuild callback running
)

var schedulerStateNames = [...]string{
	StateIdle:           "idle",
	StatePendingRebuild: "pending",
	StateRebuilding:     "rebuilding",
}

func (s SchedulerState) String() string {
	if int(s) < len(schedulerStateNames) {
		return schedulerStateNames[s]
	}
	return "unknown"
}

// Scheduler coalesces invalidations into a single debounced rebuild. It owns
// no goroutine: the owner calls Tick from its frame loop and the rebuild runs
// on the first tick at or after the deadline.
type Scheduler struct {
	clock   Clock
	delay   time.Duration
	rebuild func()

	state    SchedulerState
	armed    bool
	deadline time.Time
	followUp bool
	runs     int
}

// NewScheduler creates an idle scheduler. A nil clock uses SystemClock and a
// negative delay is treated as zero.
func NewScheduler(clock Clock, delay time.Duration, rebuild func()) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{clock: clock, delay: max(delay, 0), rebuild: rebuild}
}

// State returns the current state.
func (s *Scheduler) State() SchedulerState { return s.state }

// Stale reports whether pointer events must be suppressed.
func (s *Scheduler) Stale() bool { return s.state != StateIdle }

// Deadline returns the pending rebuild time and whether one is armed.
func (s *Scheduler) Deadline() (time.Time, bool) { return s.deadline, s.armed }

// Runs returns how many rebuilds have executed.
func (s *Scheduler) Runs() int { return s.runs }

// Delay returns the debounce delay.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Invalidate marks the layer stale and restarts the debounce window. With a
// zero delay the rebuild runs before Invalidate returns. Called from inside
// the rebuild callback it never recurses: the window is re-armed, or with a
// zero delay a follow-up rebuild runs on the next Tick.
func (s *Scheduler) Invalidate() {
	if s.state == StateRebuilding {
		if s.delay > 0 {
			s.arm()
		} else {
			s.followUp = true
		}
		return
	}
	if s.delay == 0 {
		s.run()
		return
	}
	s.state = StatePendingRebuild
	s.arm()
}

func (s *Scheduler) arm() {
	s.armed = true
	s.deadline = s.clock.Now().Add(s.delay)
}

// Tick runs the pending rebuild when its deadline has passed and reports
// whether it did.
func (s *Scheduler) Tick() bool {
	if s.state == StateRebuilding {
		return false
	}
	if s.followUp {
		s.followUp = false
		s.run()
		return true
	}
	if s.armed && !s.clock.Now().Before(s.deadline) {
		s.run()
		return true
	}
	return false
}

// Cancel drops the pending rebuild, if any. The layer stays stale until the
// next Invalidate. Calling Cancel again, or after the rebuild ran, is a no-op.
func (s *Scheduler) Cancel() {
	s.armed = false
	s.followUp = false
	s.deadline = time.Time{}
}

func (s *Scheduler) run() {
	s.armed = false
	s.state = StateRebuilding
	if s.rebuild != nil {
		s.rebuild()
	}
	s.runs++
	if s.armed || s.followUp {
		s.state = StatePendingRebuild
		return
	}
	s.state = StateIdle
}

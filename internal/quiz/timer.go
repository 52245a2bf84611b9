package quiz

// TimerState enumerates the countdown state machine:
// Running → Warning → Expired, with Stopped reachable from any state.
type TimerState string

const (
	TimerRunning TimerState = "RUNNING"
	TimerWarning TimerState = "WARNING"
	TimerExpired TimerState = "EXPIRED"
	TimerStopped TimerState = "STOPPED"
)

// TickResult reports what a single tick did. Warning and Expired each fire
// at most once over the timer's lifetime.
type TickResult struct {
	Remaining int
	Warning   bool
	Expired   bool
}

// Timer is a monotonic one-second countdown with a one-shot warning
// threshold and a terminal expiry. It holds no clock of its own: the host
// scheduler calls Tick once per elapsed second. Not safe for concurrent
// use — the Engine serializes access.
type Timer struct {
	remaining    int
	warnAt       int
	warningFired bool
	state        TimerState
}

// NewTimer creates a running timer. warnAt is the remaining-seconds
// threshold for the warning event. The warning only fires on a downward
// crossing: a session whose whole limit sits at or below the threshold
// starts with the warning spent.
func NewTimer(limitSeconds, warnAt int) *Timer {
	if limitSeconds < 0 {
		limitSeconds = 0
	}
	return &Timer{
		remaining:    limitSeconds,
		warnAt:       warnAt,
		warningFired: limitSeconds <= warnAt,
		state:        TimerRunning,
	}
}

// Tick consumes one second. Ticks against an expired or stopped timer are
// no-ops; a tick already scheduled when Stop was called therefore cannot
// re-trigger anything.
func (t *Timer) Tick() TickResult {
	if t.state == TimerExpired || t.state == TimerStopped {
		return TickResult{Remaining: t.remaining}
	}

	if t.remaining > 0 {
		t.remaining--
	}

	res := TickResult{Remaining: t.remaining}

	// The <= comparison keeps the warning a one-shot even if tick delivery
	// is irregular and skips the exact threshold value.
	if !t.warningFired && t.remaining <= t.warnAt && t.remaining > 0 {
		t.warningFired = true
		t.state = TimerWarning
		res.Warning = true
	}

	if t.remaining == 0 {
		t.state = TimerExpired
		res.Expired = true
		if !t.warningFired {
			// Expiry subsumes the warning; never fire it afterwards.
			t.warningFired = true
		}
	}

	return res
}

// Stop halts the countdown irrevocably. Safe to call multiple times.
func (t *Timer) Stop() {
	if t.state != TimerExpired {
		t.state = TimerStopped
	}
}

// Remaining returns the seconds left on the clock.
func (t *Timer) Remaining() int { return t.remaining }

// State returns the current timer state.
func (t *Timer) State() TimerState { return t.state }

// WarningFired reports whether the one-shot warning has been emitted.
func (t *Timer) WarningFired() bool { return t.warningFired }

package quiz

import "testing"

func TestTimerCountsDown(t *testing.T) {
	tm := NewTimer(10, 5)

	res := tm.Tick()
	if res.Remaining != 9 {
		t.Errorf("Remaining = %d, want 9", res.Remaining)
	}
	if tm.State() != TimerRunning {
		t.Errorf("State = %q, want %q", tm.State(), TimerRunning)
	}
}

func TestTimerWarningFiresOnceAtThreshold(t *testing.T) {
	tm := NewTimer(303, 300)

	warnings := 0
	for i := 0; i < 10; i++ {
		res := tm.Tick()
		if res.Warning {
			warnings++
			if res.Remaining != 300 {
				t.Errorf("warning at remaining=%d, want 300", res.Remaining)
			}
		}
	}

	if warnings != 1 {
		t.Errorf("warnings = %d, want exactly 1", warnings)
	}
	if !tm.WarningFired() {
		t.Error("WarningFired = false after crossing threshold")
	}
}

func TestTimerWarningStateTransition(t *testing.T) {
	tm := NewTimer(301, 300)

	res := tm.Tick()
	if !res.Warning {
		t.Fatal("expected warning on first tick")
	}
	if tm.State() != TimerWarning {
		t.Errorf("State = %q, want %q", tm.State(), TimerWarning)
	}
}

func TestTimerShortLimitNeverWarns(t *testing.T) {
	// A limit at or below the threshold starts with the warning spent.
	tm := NewTimer(60, 300)

	for i := 0; i < 60; i++ {
		if res := tm.Tick(); res.Warning {
			t.Fatalf("warning fired at remaining=%d for a 60s limit", res.Remaining)
		}
	}
	if tm.State() != TimerExpired {
		t.Errorf("State = %q, want %q", tm.State(), TimerExpired)
	}
}

func TestTimerExpiry(t *testing.T) {
	tm := NewTimer(3, 300)

	var expired bool
	for i := 0; i < 3; i++ {
		expired = tm.Tick().Expired
	}

	if !expired {
		t.Error("Expired = false on the tick reaching zero")
	}
	if tm.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", tm.Remaining())
	}
	if tm.State() != TimerExpired {
		t.Errorf("State = %q, want %q", tm.State(), TimerExpired)
	}
}

func TestTimerFloorsAtZero(t *testing.T) {
	tm := NewTimer(1, 300)

	tm.Tick()
	for i := 0; i < 5; i++ {
		res := tm.Tick()
		if res.Remaining != 0 {
			t.Errorf("Remaining = %d after expiry, want 0", res.Remaining)
		}
		if res.Expired {
			t.Error("Expired fired more than once")
		}
	}
}

func TestTimerStopIsIdempotent(t *testing.T) {
	tm := NewTimer(10, 5)

	tm.Stop()
	tm.Stop()

	if tm.State() != TimerStopped {
		t.Errorf("State = %q, want %q", tm.State(), TimerStopped)
	}

	res := tm.Tick()
	if res.Remaining != 10 || res.Warning || res.Expired {
		t.Errorf("tick after stop mutated timer: %+v", res)
	}
}

func TestTimerStopDoesNotMaskExpiry(t *testing.T) {
	tm := NewTimer(1, 300)
	tm.Tick()
	tm.Stop()

	if tm.State() != TimerExpired {
		t.Errorf("State = %q after stopping an expired timer, want %q", tm.State(), TimerExpired)
	}
}

func TestTimerZeroLimit(t *testing.T) {
	tm := NewTimer(0, 300)

	res := tm.Tick()
	if res.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", res.Remaining)
	}
	if !res.Expired {
		t.Error("zero-limit timer should expire on first tick")
	}
}

func TestTimerFullCountdownWarnsOnce(t *testing.T) {
	tm := NewTimer(302, 300)

	warnings := 0
	for i := 0; i < 302; i++ {
		if tm.Tick().Warning {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("warnings = %d over full countdown, want 1", warnings)
	}
	if tm.State() != TimerExpired {
		t.Errorf("State = %q, want %q", tm.State(), TimerExpired)
	}
}

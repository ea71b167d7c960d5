package loop

import (
	"context"
	"testing"
	"time"

	"github.com/rlund/airsusp/internal/bus"
	"github.com/rlund/airsusp/internal/dynamo"
	"github.com/rlund/airsusp/internal/integrators"
)

func newTestRunner(t *testing.T, sys dynamo.System, policy FaultPolicy) *Runner {
	t.Helper()
	lp := newTestLoop(t, sys)
	return NewRunner(lp, time.Millisecond, policy)
}

// waitFor polls cond on a coarse interval so the runner tests stay
// honest on loaded machines: assert that something eventually happens,
// never how fast.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestRunner_StartStop(t *testing.T) {
	r := newTestRunner(t, calmSys{}, FaultReset)
	r.Go(context.Background())
	defer r.Close()

	// Paused until told otherwise.
	if r.Stepping() {
		t.Error("runner stepping before Start")
	}

	r.loop.Signals().Send(bus.Start)
	if !waitFor(t, 2*time.Second, func() bool {
		return r.loop.Timer().Steps.Load() > 0
	}) {
		t.Fatal("no steps taken after Start")
	}

	r.loop.Signals().Send(bus.Stop)
	waitFor(t, time.Second, func() bool { return !r.Stepping() })

	// Let any in-flight tick land, then confirm the count stays put.
	time.Sleep(20 * time.Millisecond)
	before := r.loop.Timer().Steps.Load()
	time.Sleep(50 * time.Millisecond)
	if after := r.loop.Timer().Steps.Load(); after != before {
		t.Errorf("runner kept stepping after Stop: %d -> %d", before, after)
	}
}

func TestRunner_ResetControl(t *testing.T) {
	r := newTestRunner(t, calmSys{}, FaultReset)
	r.loop.Reset(dynamo.StateVector{Heave: 0.05})
	r.Go(context.Background())
	defer r.Close()

	r.loop.Signals().Send(bus.Start)
	if !waitFor(t, 2*time.Second, func() bool {
		s, ok := r.loop.Queue().Get()
		return ok && s.Step >= 10
	}) {
		t.Fatal("runner never reached step 10")
	}

	r.loop.Signals().Send(bus.Stop)
	waitFor(t, time.Second, func() bool { return !r.Stepping() })
	time.Sleep(20 * time.Millisecond)

	r.loop.Signals().Send(bus.Reset)
	r.loop.Signals().Send(bus.Start)

	// The first snapshots after a reset restart the step numbering.
	if !waitFor(t, 2*time.Second, func() bool {
		s, ok := r.loop.Queue().Get()
		return ok && s.Step > 0 && s.Step < 10
	}) {
		t.Error("step numbering did not restart after Reset")
	}
}

func TestRunner_FaultHaltPausesStepping(t *testing.T) {
	r := newTestRunner(t, brokenSys{}, FaultHalt)
	r.Go(context.Background())
	defer r.Close()

	r.loop.Signals().Send(bus.Start)
	if !waitFor(t, 2*time.Second, func() bool { return r.LastFault() != nil }) {
		t.Fatal("fault never surfaced")
	}
	if !waitFor(t, time.Second, func() bool { return !r.Stepping() }) {
		t.Error("halt policy did not pause stepping after a fault")
	}
}

func TestRunner_FaultResetKeepsStepping(t *testing.T) {
	r := newTestRunner(t, tiltSys{}, FaultReset)
	r.Go(context.Background())
	defer r.Close()

	r.loop.Signals().Send(bus.Start)
	if !waitFor(t, 2*time.Second, func() bool {
		return r.loop.Timer().Faults.Load() >= 3
	}) {
		t.Fatal("reset policy should keep ticking through repeated faults")
	}
	if !r.Stepping() {
		t.Error("reset policy paused stepping")
	}
}

func TestRunner_CloseIsIdempotent(t *testing.T) {
	r := newTestRunner(t, calmSys{}, FaultReset)
	r.Go(context.Background())

	r.Close()
	r.Close()

	// A runner that never started closes without blocking too.
	lp, err := New(calmSys{}, integrators.NewRK4(), DefaultLoopConfig())
	if err != nil {
		t.Fatal(err)
	}
	NewRunner(lp, 0, FaultReset).Close()
}

func TestParseFaultPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FaultPolicy
		wantErr bool
	}{
		{"halt", FaultHalt, false},
		{"reset", FaultReset, false},
		{"", FaultReset, false},
		{"panic", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFaultPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFaultPolicy(%q) error = %v", tt.in, err)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseFaultPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

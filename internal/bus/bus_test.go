package bus

import (
	"sync"
	"testing"
)

func TestBus_NotifyCoalesces(t *testing.T) {
	b := New()

	// Many notifications, one pending wakeup.
	for i := 0; i < 10; i++ {
		b.NotifySnapshot()
	}

	select {
	case <-b.Snapshots():
	default:
		t.Fatal("no wakeup pending after notifications")
	}
	select {
	case <-b.Snapshots():
		t.Fatal("notifications did not coalesce to one wakeup")
	default:
	}

	// Notify never blocks even with a full channel.
	b.NotifySnapshot()
	b.NotifySnapshot()
}

func TestBus_ControlOrderAndLosslessness(t *testing.T) {
	b := New()

	sent := []Control{Start, Stop, Reset, Start, Shutdown}
	for _, c := range sent {
		b.Send(c)
	}

	got := b.Drain()
	if len(got) != len(sent) {
		t.Fatalf("drained %d controls, want %d", len(got), len(sent))
	}
	for i := range sent {
		if got[i] != sent[i] {
			t.Errorf("position %d: got %v, want %v", i, got[i], sent[i])
		}
	}

	if b.Drain() != nil {
		t.Error("second drain should return nil")
	}
}

func TestBus_ConcurrentSendsAllArrive(t *testing.T) {
	b := New()
	const senders = 8
	const perSender = 500

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				b.Send(Start)
			}
		}()
	}
	wg.Wait()

	if got := len(b.Drain()); got != senders*perSender {
		t.Errorf("drained %d controls, want %d", got, senders*perSender)
	}
}

func TestControl_String(t *testing.T) {
	tests := []struct {
		c    Control
		want string
	}{
		{Start, "start"},
		{Stop, "stop"},
		{Reset, "reset"},
		{Shutdown, "shutdown"},
		{Control(99), "control(?)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Control(%d).String() = %q, want %q", int(tt.c), got, tt.want)
		}
	}
}

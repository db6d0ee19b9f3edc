package jobqueue

import (
	"testing"
	"time"
)

// Stop must wait for the counter flush worker to exit before returning,
// including when the worker is parked in its select at stop time.
func TestManagerStopWaitsForFlushWorker(t *testing.T) {
	m := &Manager{
		queue:  &Queue{stopCh: make(chan struct{})},
		stopCh: make(chan struct{}),
	}
	m.running = true
	m.counterFlushTicker = time.NewTicker(time.Hour)
	defer m.counterFlushTicker.Stop()

	m.wg.Add(1)
	go m.counterFlushWorker()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while the flush worker was parked")
	}

	if m.IsRunning() {
		t.Fatal("manager still reports running after Stop")
	}
}

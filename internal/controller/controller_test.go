package controller

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/larsks/gpiobuttond/internal/gesture"
	"github.com/larsks/gpiobuttond/internal/hwdriver"
	"github.com/larsks/gpiobuttond/internal/hwdriver/dummy"
)

func newTestController(t *testing.T) (*Controller, *dummy.Driver) {
	t.Helper()
	drv := dummy.New()
	ctrl := New(drv)
	t.Cleanup(func() { _ = ctrl.Stop(true) })
	return ctrl, drv
}

func TestController_MakeButtonRejectsDuplicatePin(t *testing.T) {
	ctrl, _ := newTestController(t)

	if _, err := ctrl.MakeButton(1, gesture.PressedWhenHigh, hwdriver.PullDown, "a", 0); err != nil {
		t.Fatalf("first MakeButton: %v", err)
	}
	if _, err := ctrl.MakeButton(1, gesture.PressedWhenHigh, hwdriver.PullDown, "b", 0); err == nil {
		t.Fatal("expected error registering a pin twice")
	}
}

func TestController_MakeButtonRejectsNegativeBounce(t *testing.T) {
	ctrl, _ := newTestController(t)
	if _, err := ctrl.MakeButton(1, gesture.PressedWhenHigh, hwdriver.PullDown, "a", -1); err == nil {
		t.Fatal("expected error for negative bounce")
	}
}

func TestController_PressReleaseProducesClick(t *testing.T) {
	ctrl, drv := newTestController(t)

	button, err := ctrl.MakeButton(1, gesture.PressedWhenHigh, hwdriver.PullDown, "a", 0)
	if err != nil {
		t.Fatalf("MakeButton: %v", err)
	}

	clicked := make(chan struct{}, 1)
	button.AddOnClick(func(b *Button) { clicked <- struct{}{} })

	if err := ctrl.StartInThread(); err != nil {
		t.Fatalf("StartInThread: %v", err)
	}
	if ctrl.Status() != Running {
		t.Fatalf("status = %v, want Running", ctrl.Status())
	}

	now := time.Now()
	drv.SetLevel(1, true, now)
	drv.SetLevel(1, false, now.Add(50*time.Millisecond))

	select {
	case <-clicked:
	case <-time.After(2 * time.Second):
		t.Fatal("click handler never fired")
	}
}

// Stop(wait=true) must block until a handler already in flight finishes.
func TestController_StopWaitsForRunningHandler(t *testing.T) {
	ctrl, drv := newTestController(t)

	button, err := ctrl.MakeButton(1, gesture.PressedWhenHigh, hwdriver.PullDown, "a", 0)
	if err != nil {
		t.Fatalf("MakeButton: %v", err)
	}

	handlerStarted := make(chan struct{})
	var handlerFinished int32
	button.AddOnPress(func(b *Button) {
		close(handlerStarted)
		time.Sleep(200 * time.Millisecond)
		atomic.StoreInt32(&handlerFinished, 1)
	})

	if err := ctrl.StartInThread(); err != nil {
		t.Fatalf("StartInThread: %v", err)
	}

	drv.SetLevel(1, true, time.Now())
	<-handlerStarted

	if err := ctrl.Stop(true); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if atomic.LoadInt32(&handlerFinished) != 1 {
		t.Fatal("Stop(wait=true) returned before the in-flight handler finished")
	}
	if ctrl.Status() != Stopped {
		t.Fatalf("status = %v, want Stopped", ctrl.Status())
	}

	// A post-stop edge must not produce further events: onEdge's status
	// guard now rejects it outright, on top of the executor draining
	// and the scheduler no longer running.
	drv.SetLevel(1, false, time.Now())
	time.Sleep(20 * time.Millisecond)
}

// Stop flips status to Stopping synchronously, before executor.Stop's
// draining flag is ever set (that happens later, inside Stop's
// background goroutine, after the scheduler drains). An edge delivered
// in that window must still be rejected by onEdge's own status check
// rather than relying on the executor to drop it.
func TestController_EdgeDuringStoppingProducesNoEvents(t *testing.T) {
	ctrl, drv := newTestController(t)

	button, err := ctrl.MakeButton(1, gesture.PressedWhenHigh, hwdriver.PullDown, "a", 0)
	if err != nil {
		t.Fatalf("MakeButton: %v", err)
	}

	var pressCount int32
	button.AddOnPress(func(b *Button) { atomic.AddInt32(&pressCount, 1) })

	if err := ctrl.StartInThread(); err != nil {
		t.Fatalf("StartInThread: %v", err)
	}

	ctrl.mu.Lock()
	ctrl.status = Stopping
	ctrl.mu.Unlock()

	drv.SetLevel(1, true, time.Now())
	time.Sleep(20 * time.Millisecond)

	if n := atomic.LoadInt32(&pressCount); n != 0 {
		t.Fatalf("press handler ran %d times for an edge delivered during Stopping, want 0", n)
	}

	ctrl.mu.Lock()
	ctrl.status = Running
	ctrl.mu.Unlock()
	_ = ctrl.Stop(true)
}

func TestController_StopIsIdempotent(t *testing.T) {
	ctrl, _ := newTestController(t)
	if err := ctrl.StartInThread(); err != nil {
		t.Fatalf("StartInThread: %v", err)
	}
	if err := ctrl.Stop(true); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := ctrl.Stop(true); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if ctrl.Status() != Stopped {
		t.Fatalf("status = %v, want Stopped", ctrl.Status())
	}
}

func TestController_DeleteButtonRejectsForeignHandle(t *testing.T) {
	ctrl, _ := newTestController(t)
	other, _ := newTestController(t)

	b, err := other.MakeButton(1, gesture.PressedWhenHigh, hwdriver.PullDown, "a", 0)
	if err != nil {
		t.Fatalf("MakeButton: %v", err)
	}

	if err := ctrl.DeleteButton(b); err == nil {
		t.Fatal("expected error deleting a button from another controller")
	}
}

func TestController_RunErrorsWhenNotReady(t *testing.T) {
	ctrl, _ := newTestController(t)
	if err := ctrl.StartInThread(); err != nil {
		t.Fatalf("StartInThread: %v", err)
	}
	if err := ctrl.StartInThread(); err == nil {
		t.Fatal("expected error starting an already-running controller")
	}
}

package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) errorMessages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var msgs []string
	for _, r := range h.records {
		if r.Level == slog.LevelError {
			msgs = append(msgs, r.Message)
		}
	}
	return msgs
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func newTestPool(t *testing.T, workers, queueSize int) (*Pool, *recordingHandler) {
	t.Helper()
	handler := &recordingHandler{}
	p := NewPool(context.Background(), "test", workers, queueSize, slog.New(handler))
	t.Cleanup(p.Close)
	return p, handler
}

func TestPoolSubmitReturnsBeforeUnitCompletes(t *testing.T) {
	p, _ := newTestPool(t, 1, 4)

	release := make(chan struct{})
	done := make(chan struct{})
	submitted := make(chan struct{})

	go func() {
		p.Submit(func(context.Context) error {
			<-release
			close(done)
			return nil
		})
		close(submitted)
	}()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatalf("Submit blocked on a running unit")
	}
	select {
	case <-done:
		t.Fatalf("unit completed before Submit returned")
	default:
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("unit did not run after release")
	}
}

func TestPoolLogsFailedUnitOnceAndKeepsServing(t *testing.T) {
	p, handler := newTestPool(t, 1, 4)

	p.Submit(func(context.Context) error {
		return errors.New("command exploded")
	})

	waitFor(t, time.Second, func() bool {
		return len(handler.errorMessages()) == 1
	})
	if msgs := handler.errorMessages(); !strings.Contains(msgs[0], "executing command asynchronously") {
		t.Fatalf("unexpected error log message %q", msgs[0])
	}

	ran := make(chan struct{})
	p.Submit(func(context.Context) error {
		close(ran)
		return nil
	})
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("worker did not survive a failed unit")
	}

	time.Sleep(20 * time.Millisecond)
	if got := len(handler.errorMessages()); got != 1 {
		t.Fatalf("expected exactly one error log, got %d", got)
	}
}

func TestPoolContainsPanickingUnit(t *testing.T) {
	p, handler := newTestPool(t, 1, 4)

	p.Submit(func(context.Context) error {
		panic("boom")
	})

	waitFor(t, time.Second, func() bool {
		return len(handler.errorMessages()) == 1
	})

	ran := make(chan struct{})
	p.Submit(func(context.Context) error {
		close(ran)
		return nil
	})
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("worker did not survive a panicking unit")
	}
}

func TestPoolSpillsWhenQueueIsFull(t *testing.T) {
	p, _ := newTestPool(t, 1, 0)

	release := make(chan struct{})
	defer close(release)
	p.Submit(func(context.Context) error {
		<-release
		return nil
	})

	// The single worker is busy and the queue holds nothing, so this unit
	// must still be accepted and run without blocking the caller.
	ran := make(chan struct{})
	submitted := make(chan struct{})
	go func() {
		p.Submit(func(context.Context) error {
			close(ran)
			return nil
		})
		close(submitted)
	}()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatalf("Submit blocked while queue was full")
	}
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("spilled unit never ran")
	}
}

func TestPoolSubmitAfterCloseStillRunsUnit(t *testing.T) {
	handler := &recordingHandler{}
	p := NewPool(context.Background(), "test", 1, 4, slog.New(handler))
	p.Close()

	ran := make(chan struct{})
	p.Submit(func(context.Context) error {
		close(ran)
		return nil
	})
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("unit submitted after close never ran")
	}
}

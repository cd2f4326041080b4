// Package schedule implements spec §4.1's scheduler: the time source and
// task runner consumed by stateful stream operators. Two implementations
// are provided: Real (wall-clock, goroutine-per-task) and Mock
// (single-threaded, deterministic, used by tests and by any caller that
// wants reproducible time-based behaviour).
package schedule

import (
	"time"

	"github.com/google/uuid"
)

// TaskFunc is the callback invoked by the scheduler when a task fires.
type TaskFunc func()

// Handle is returned by AddPeriodic/AddOnce. Calling Cancel requests that
// the task no longer fire; cancellation is idempotent and safe to call
// after the task has already fired (e.g. for a one-shot task). Per the
// design notes in spec §9, a discarded Handle does NOT cancel the task --
// cancellation is always an explicit act.
type Handle struct {
	cancel func()
}

// Cancel requests removal of the task. Safe to call multiple times and
// safe to call after the task has fired.
func (h Handle) Cancel() {
	if h.cancel != nil {
		h.cancel()
	}
}

// ID is an opaque per-task identifier, used only for log/metric
// correlation (spec §3.4's task id).
type ID = uuid.UUID

// Scheduler is the narrow interface stateful operators consume; they must
// never read the wall clock directly (spec §4.1).
type Scheduler interface {
	// AddPeriodic invokes fn every interval of engine time, starting at
	// now+interval. Returns an error on resource exhaustion (spec §7's
	// Resource error) or when the implementation rejects interval (Mock:
	// under one second; Real: not positive); the zero Handle is returned in
	// that case.
	AddPeriodic(interval time.Duration, fn TaskFunc) (Handle, error)

	// AddOnce invokes fn once, at now+delay.
	AddOnce(delay time.Duration, fn TaskFunc) (Handle, error)

	// UnixTime returns the scheduler's current notion of time, in seconds
	// since the epoch.
	UnixTime() int64

	// Clear cancels every task.
	Clear()
}

package stream

import (
	"sync"
	"time"

	"github.com/joeycumines/riemann-go/event"
)

type stableOp struct {
	mu sync.Mutex

	dt int64 // seconds, compared against event time

	hasState       bool
	state          string
	transitionTime int64
	buffer         []event.Event
	stabilized     bool
}

// Stable emits events only once the event's state has been unchanged for
// at least dt of event time (not scheduler time). While waiting for
// stability it buffers every same-state event; once stable it flushes the
// whole buffer in arrival order and emits every subsequent same-state
// event immediately. Any state change resets the stability clock and
// drops the buffer. Matches spec §4.4.2's `stable(dt)`.
func Stable(dt time.Duration) Processor {
	return &stableOp{dt: int64(dt / time.Second)}
}

func (s *stableOp) Process(e event.Event, emit Emit) {
	s.mu.Lock()

	if !s.hasState || e.State != s.state {
		s.hasState = true
		s.state = e.State
		s.transitionTime = e.Time
		s.buffer = nil
		s.stabilized = false
	}

	if s.stabilized {
		s.mu.Unlock()
		emit(e)
		return
	}

	s.buffer = append(s.buffer, e)

	var toEmit []event.Event
	if e.Time-s.transitionTime >= s.dt {
		toEmit = s.buffer
		s.buffer = nil
		s.stabilized = true
	}
	s.mu.Unlock()

	for _, ev := range toEmit {
		emit(ev)
	}
}

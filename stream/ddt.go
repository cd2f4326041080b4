package stream

import (
	"sync"

	"github.com/joeycumines/riemann-go/event"
)

type ddtOp struct {
	mu   sync.Mutex
	prev event.Event
	has  bool
}

// DDT emits the derivative of the metric with respect to event time: the
// first event is remembered but never emitted; each subsequent event with
// Δt = e.Time - prev.Time > 0 is emitted with metric (m(e) - m(prev)) / Δt;
// events with Δt <= 0 are suppressed (but still become the new prev).
// Matches spec §4.4.5's `ddt()`.
func DDT() Processor {
	return &ddtOp{}
}

func (d *ddtOp) Process(e event.Event, emit Emit) {
	d.mu.Lock()
	prev := d.prev
	hadPrev := d.has
	d.prev = e
	d.has = true
	d.mu.Unlock()

	if !hadPrev {
		return
	}

	dt := e.Time - prev.Time
	if dt <= 0 {
		return
	}

	out := e.Clone()
	out.SetFloat64Metric((e.Metric() - prev.Metric()) / float64(dt))
	emit(out)
}

package stream

import (
	"sync"

	"github.com/joeycumines/riemann-go/event"
)

type counterOp struct {
	mu    sync.Mutex
	total int64
}

// Counter adds 1 to a running total, or the event's metric if it is set
// and integer-coerced, and emits the event with its metric set to the new
// total. Matches spec §4.4.4's `counter()`.
func Counter() Processor {
	return &counterOp{}
}

func (c *counterOp) Process(e event.Event, emit Emit) {
	delta := int64(1)
	if e.HasMetric() {
		delta = int64(e.Metric())
	}

	c.mu.Lock()
	c.total += delta
	total := c.total
	c.mu.Unlock()

	out := e.Clone()
	out.SetIntMetric(total)
	emit(out)
}

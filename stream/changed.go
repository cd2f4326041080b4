package stream

import (
	"sync"

	"github.com/joeycumines/riemann-go/event"
)

type changedOp struct {
	mu      sync.Mutex
	field   string
	last    string
	hasLast bool
}

// Changed remembers the last observed value of field (compared as a
// string, via event.Field) and forwards an event iff its value differs
// from the last seen. If initial is non-empty it seeds the comparator, so
// the first event is suppressed iff its value equals initial. Matches
// spec §4.4.1's `changed(key, initial?)`.
func Changed(field string, initial ...string) Processor {
	op := &changedOp{field: field}
	if len(initial) > 0 {
		op.last = initial[0]
		op.hasLast = true
	}
	return op
}

func (c *changedOp) Process(e event.Event, emit Emit) {
	v := e.Field(c.field)

	c.mu.Lock()
	changed := !c.hasLast || v != c.last
	c.last = v
	c.hasLast = true
	c.mu.Unlock()

	if changed {
		emit(e)
	}
}

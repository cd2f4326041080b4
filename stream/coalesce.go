package stream

import (
	"sync"

	"github.com/joeycumines/riemann-go/event"
)

// CoalesceFunc consumes the ordered sequence of currently-live events and
// may produce a derived event, e.g. a rollup or a side-channel observer.
type CoalesceFunc func(events []event.Event) event.Event

type coalesceKey struct {
	host, service string
}

type coalesceOp struct {
	mu    sync.Mutex
	clock Clock
	f     CoalesceFunc

	order []coalesceKey
	seen  map[coalesceKey]bool
	live  map[coalesceKey]event.Event
}

// Coalesce maintains a mapping (host, service) -> latest event. Each event
// replaces any existing entry for its key; entries past their expiry (per
// the expired() rule, spec §4.3) are evicted lazily, at callback time, not
// proactively. After updating, f is invoked with every still-live entry,
// in the order each key was first seen. Matches spec §4.4.9's
// `coalesce(f)`.
func Coalesce(clock Clock, f CoalesceFunc) Processor {
	return &coalesceOp{
		clock: clock,
		f:     f,
		seen:  make(map[coalesceKey]bool),
		live:  make(map[coalesceKey]event.Event),
	}
}

func (c *coalesceOp) Process(e event.Event, emit Emit) {
	key := coalesceKey{host: e.Host, service: e.Service}

	c.mu.Lock()
	if !c.seen[key] {
		c.seen[key] = true
		c.order = append(c.order, key)
	}
	c.live[key] = e

	ordered := make([]event.Event, 0, len(c.order))
	for _, k := range c.order {
		ev, ok := c.live[k]
		if !ok {
			continue
		}
		if IsExpired(c.clock, ev) {
			delete(c.live, k)
			continue
		}
		ordered = append(ordered, ev)
	}
	c.mu.Unlock()

	emit(c.f(ordered))
}

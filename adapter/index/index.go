// Package index keeps the last event seen for each (host, service) pair,
// grounded on original_source/src/index/index.cpp's simple last-event map.
// It is not part of the core stream graph (spec §6.3 treats an index as an
// opaque consumer); callers typically wire it in with stream.ProcessorFunc
// as the tail of a graph.
package index

import (
	"sync"

	"github.com/joeycumines/riemann-go/event"
)

type key struct{ host, service string }

// Index is a concurrency-safe last-event-per-(host,service) table. The zero
// value is empty and ready to use.
type Index struct {
	mu     sync.RWMutex
	byHost map[key]event.Event
}

// AddEvent records e as the latest event for its (host, service) pair,
// overwriting whatever was previously stored. Matches the original's
// index::add_event.
func (x *Index) AddEvent(e event.Event) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.byHost == nil {
		x.byHost = make(map[key]event.Event)
	}
	x.byHost[key{e.Host, e.Service}] = e
}

// Lookup returns the last event recorded for (host, service), if any.
func (x *Index) Lookup(host, service string) (event.Event, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.byHost[key{host, service}]
	return e, ok
}

// Len reports how many distinct (host, service) pairs are currently indexed.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byHost)
}

// Snapshot returns a copy of every currently indexed event, in no
// particular order.
func (x *Index) Snapshot() []event.Event {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]event.Event, 0, len(x.byHost))
	for _, e := range x.byHost {
		out = append(out, e)
	}
	return out
}

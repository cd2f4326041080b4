package stream

import (
	"sync"

	"github.com/joeycumines/riemann-go/event"
)

// ProjectFunc consumes the ordered sequence of currently-filled predicate
// slots and may produce a derived event.
type ProjectFunc func(events []event.Event) event.Event

type projectOp struct {
	mu     sync.Mutex
	clock  Clock
	preds  []Predicate
	f      ProjectFunc
	slots  []event.Event
	filled []bool
}

// Project maintains one slot per predicate: on each event, every matching
// predicate's slot is overwritten with it. After updating, f is invoked
// with the ordered sequence of currently-filled, non-expired slots (expired
// slots are evicted lazily, at callback time). Matches spec §4.4.10's
// `project(predicates, f)`.
func Project(clock Clock, preds []Predicate, f ProjectFunc) Processor {
	return &projectOp{
		clock:  clock,
		preds:  preds,
		f:      f,
		slots:  make([]event.Event, len(preds)),
		filled: make([]bool, len(preds)),
	}
}

func (p *projectOp) Process(e event.Event, emit Emit) {
	p.mu.Lock()
	for i, pred := range p.preds {
		if pred(e) {
			p.slots[i] = e
			p.filled[i] = true
		}
	}

	var ordered []event.Event
	for i := range p.slots {
		if !p.filled[i] {
			continue
		}
		if IsExpired(p.clock, p.slots[i]) {
			p.filled[i] = false
			continue
		}
		ordered = append(ordered, p.slots[i])
	}
	p.mu.Unlock()

	emit(p.f(ordered))
}

package stream

import (
	"sync"
	"time"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/ring"
)

type throttleOp struct {
	mu     sync.Mutex
	n      int
	dt     int64
	window *ring.Buffer[int64]
}

// Throttle admits at most n events per rolling window of dt event-time
// seconds: on each event, timestamps older than the window are dropped,
// and the event is admitted iff fewer than n timestamps remain. Matches
// spec §4.4.3's `throttle(n, dt)`.
func Throttle(n int, dt time.Duration) Processor {
	return &throttleOp{n: n, dt: int64(dt / time.Second), window: ring.New[int64](n)}
}

func (t *throttleOp) Process(e event.Event, emit Emit) {
	t.mu.Lock()
	cutoff := e.Time - t.dt
	for t.window.Len() > 0 && t.window.At(0) <= cutoff {
		t.window.PopFront()
	}
	admit := t.window.Len() < t.n
	if admit {
		t.window.PushBack(e.Time)
	}
	t.mu.Unlock()

	if admit {
		emit(e)
	}
}

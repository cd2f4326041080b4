package stream

import (
	"sync"
	"time"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/ring"
)

// WindowFunc consumes an ordered window of events and derives one event
// from them (spec §4.4.7). It may return the zero Event if there's nothing
// meaningful to forward; the window operators forward whatever it returns
// without inspecting it.
type WindowFunc func(events []event.Event) event.Event

type fixedEventWindowOp struct {
	mu     sync.Mutex
	n      int
	f      WindowFunc
	buffer []event.Event
}

// FixedEventWindow buffers events in arrival order; once exactly n have
// accumulated, it invokes f with them and starts a fresh empty buffer.
// Matches spec §4.4.7's `fixed_event_window(n, f)`.
func FixedEventWindow(n int, f WindowFunc) Processor {
	return &fixedEventWindowOp{n: n, f: f}
}

func (w *fixedEventWindowOp) Process(e event.Event, emit Emit) {
	w.mu.Lock()
	w.buffer = append(w.buffer, e)
	var toFlush []event.Event
	if len(w.buffer) == w.n {
		toFlush = w.buffer
		w.buffer = nil
	}
	w.mu.Unlock()

	if toFlush != nil {
		emit(w.f(toFlush))
	}
}

type movingEventWindowOp struct {
	mu  sync.Mutex
	n   int
	f   WindowFunc
	buf *ring.Buffer[event.Event]
}

// MovingEventWindow maintains a buffer of at most n most-recent events
// (oldest discarded once full) and, on every event, invokes f with the
// current buffer contents. Matches spec §4.4.7's `moving_event_window(n, f)`.
func MovingEventWindow(n int, f WindowFunc) Processor {
	return &movingEventWindowOp{n: n, f: f, buf: ring.New[event.Event](n)}
}

func (w *movingEventWindowOp) Process(e event.Event, emit Emit) {
	w.mu.Lock()
	w.buf.PushBack(e)
	for w.buf.Len() > w.n {
		w.buf.PopFront()
	}
	snapshot := w.buf.Slice()
	w.mu.Unlock()

	emit(w.f(snapshot))
}

type fixedTimeWindowOp struct {
	mu sync.Mutex

	dt int64 // seconds
	f  WindowFunc

	hasOpen   bool
	openIndex int64
	bucket    []event.Event
}

// FixedTimeWindow buckets events by floor(e.Time/dt). When an event arrives
// whose bucket index exceeds the currently open bucket, the open bucket is
// flushed (f invoked with its events) and a new bucket opened; events whose
// bucket index has already been flushed are dropped. Matches spec §4.4.7's
// `fixed_time_window(dt, f)`.
func FixedTimeWindow(dt time.Duration, f WindowFunc) Processor {
	return &fixedTimeWindowOp{dt: int64(dt / time.Second), f: f}
}

func (w *fixedTimeWindowOp) Process(e event.Event, emit Emit) {
	idx := e.Time / w.dt

	w.mu.Lock()
	var toFlush []event.Event
	var flush bool
	switch {
	case !w.hasOpen:
		w.hasOpen = true
		w.openIndex = idx
		w.bucket = append(w.bucket, e)
	case idx < w.openIndex:
		// already flushed; drop.
	case idx == w.openIndex:
		w.bucket = append(w.bucket, e)
	default:
		toFlush = w.bucket
		flush = true
		w.openIndex = idx
		w.bucket = []event.Event{e}
	}
	w.mu.Unlock()

	if flush {
		emit(w.f(toFlush))
	}
}

type movingTimeWindowOp struct {
	mu sync.Mutex

	dt int64 // seconds
	f  WindowFunc

	hasMax  bool
	maxTime int64
	buffer  []event.Event
}

// MovingTimeWindow maintains the events whose time lies in
// (maxTime-dt, maxTime], where maxTime is the largest event time seen so
// far; on every event it updates maxTime, appends in arrival order, drops
// events that have fallen out of the window, and invokes f with what
// remains. Matches spec §4.4.7's `moving_time_window(dt, f)`.
func MovingTimeWindow(dt time.Duration, f WindowFunc) Processor {
	return &movingTimeWindowOp{dt: int64(dt / time.Second), f: f}
}

func (w *movingTimeWindowOp) Process(e event.Event, emit Emit) {
	w.mu.Lock()
	if !w.hasMax || e.Time > w.maxTime {
		w.maxTime = e.Time
		w.hasMax = true
	}
	w.buffer = append(w.buffer, e)

	cutoff := w.maxTime - w.dt
	filtered := w.buffer[:0]
	for _, ev := range w.buffer {
		if ev.Time > cutoff {
			filtered = append(filtered, ev)
		}
	}
	w.buffer = filtered
	snapshot := append([]event.Event(nil), w.buffer...)
	w.mu.Unlock()

	emit(w.f(snapshot))
}

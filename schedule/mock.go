package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type mockTask struct {
	seq      uint64
	id       ID
	interval int64 // seconds; 0 for a one-shot task
	once     bool
	next     int64 // next deadline, unix seconds
	fn       TaskFunc
}

// Mock is a single-threaded, deterministic scheduler: UnixTime returns the
// last value passed to SetTime, and SetTime is the only way to advance
// time. It exists so time-driven operators (rate and percentiles ticks,
// coalesce/project expiry) can be driven deterministically in tests,
// matching spec §4.1's "Mock (test clock)".
type Mock struct {
	mu    sync.Mutex
	now   int64
	seq   uint64
	tasks map[uint64]*mockTask
}

// NewMock constructs a Mock starting at the given unix time.
func NewMock(start int64) *Mock {
	return &Mock{now: start, tasks: make(map[uint64]*mockTask)}
}

func (m *Mock) AddPeriodic(interval time.Duration, fn TaskFunc) (Handle, error) {
	secs := int64(interval / time.Second)
	if secs <= 0 {
		return Handle{}, fmt.Errorf("schedule: periodic interval must be >= 1s, got %s", interval)
	}
	return m.add(secs, false, fn)
}

func (m *Mock) AddOnce(delay time.Duration, fn TaskFunc) (Handle, error) {
	secs := int64(delay / time.Second)
	if secs <= 0 {
		return Handle{}, fmt.Errorf("schedule: once delay must be >= 1s, got %s", delay)
	}
	return m.add(secs, true, fn)
}

func (m *Mock) add(secs int64, once bool, fn TaskFunc) (Handle, error) {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	t := &mockTask{
		seq:      seq,
		id:       uuid.New(),
		interval: secs,
		once:     once,
		next:     m.now + secs,
		fn:       fn,
	}
	m.tasks[seq] = t
	m.mu.Unlock()

	return Handle{cancel: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.tasks, seq)
	}}, nil
}

func (m *Mock) UnixTime() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = make(map[uint64]*mockTask)
}

// SetTime advances the mock clock to t and, before returning, synchronously
// fires every task whose next deadline is <= t, in deadline order (ties
// broken by insertion order), re-arming periodic tasks as it goes. A
// single SetTime call may fire a periodic task more than once, if the
// jump spans multiple of its intervals.
func (m *Mock) SetTime(t int64) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var winner *mockTask
		for _, tr := range m.tasks {
			if tr.next > t {
				continue
			}
			if winner == nil || tr.next < winner.next || (tr.next == winner.next && tr.seq < winner.seq) {
				winner = tr
			}
		}
		if winner == nil {
			m.mu.Unlock()
			return
		}

		fn := winner.fn
		if winner.once {
			delete(m.tasks, winner.seq)
		} else {
			winner.next += winner.interval
		}
		m.mu.Unlock()

		fn()
	}
}

package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type realTask struct {
	stop     chan struct{}
	stopOnce sync.Once
}

func (t *realTask) cancel() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Real is the production scheduler: a goroutine per registered task,
// driven by time.Ticker/time.AfterFunc. Firing order within a single
// SetTime-like "tick" is unspecified across tasks/threads (there is no
// such thing as a single tick in the real implementation); each task's own
// sequence of firings is monotone. SetTime is not supported.
type Real struct {
	mu       sync.Mutex
	tasks    map[*realTask]struct{}
	maxTasks int // 0 means unbounded
	metrics  *Metrics
}

// NewReal constructs a Real scheduler. maxTasks, if positive, bounds the
// number of concurrently registered tasks; AddPeriodic/AddOnce return an
// error once that bound is reached, modelling spec §7's "scheduler
// task-queue full" resource error. metrics may be nil.
func NewReal(maxTasks int, metrics *Metrics) *Real {
	return &Real{
		tasks:    make(map[*realTask]struct{}),
		maxTasks: maxTasks,
		metrics:  metrics,
	}
}

func (r *Real) reserve() (*realTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxTasks > 0 && len(r.tasks) >= r.maxTasks {
		return nil, fmt.Errorf("schedule: task queue full (max %d)", r.maxTasks)
	}
	t := &realTask{stop: make(chan struct{})}
	r.tasks[t] = struct{}{}
	return t, nil
}

// release removes t from the active set, returning true if it was present
// (i.e. this call is the one that actually tore it down).
func (r *Real) release(t *realTask) bool {
	r.mu.Lock()
	_, existed := r.tasks[t]
	delete(r.tasks, t)
	r.mu.Unlock()
	t.cancel()
	return existed
}

func (r *Real) AddPeriodic(interval time.Duration, fn TaskFunc) (Handle, error) {
	if interval <= 0 {
		return Handle{}, fmt.Errorf("schedule: periodic interval must be positive, got %s", interval)
	}
	t, err := r.reserve()
	if err != nil {
		return Handle{}, err
	}
	_ = uuid.New() // generated and discarded: Real keeps no per-task id

	if r.metrics != nil {
		r.metrics.tasksActive.Add(1)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				start := time.Now()
				fn()
				if r.metrics != nil {
					r.metrics.observeTick(time.Since(start))
				}
			}
		}
	}()

	return Handle{cancel: func() {
		if r.release(t) && r.metrics != nil {
			r.metrics.tasksActive.Add(-1)
		}
	}}, nil
}

func (r *Real) AddOnce(delay time.Duration, fn TaskFunc) (Handle, error) {
	if delay <= 0 {
		return Handle{}, fmt.Errorf("schedule: once delay must be positive, got %s", delay)
	}
	t, err := r.reserve()
	if err != nil {
		return Handle{}, err
	}

	if r.metrics != nil {
		r.metrics.tasksActive.Add(1)
	}

	timer := time.AfterFunc(delay, func() {
		select {
		case <-t.stop:
			return
		default:
		}
		fn()
		if r.release(t) && r.metrics != nil {
			r.metrics.tasksActive.Add(-1)
		}
	})

	return Handle{cancel: func() {
		timer.Stop()
		if r.release(t) && r.metrics != nil {
			r.metrics.tasksActive.Add(-1)
		}
	}}, nil
}

func (r *Real) UnixTime() int64 {
	return time.Now().Unix()
}

func (r *Real) Clear() {
	r.mu.Lock()
	tasks := make([]*realTask, 0, len(r.tasks))
	for t := range r.tasks {
		tasks = append(tasks, t)
	}
	r.tasks = make(map[*realTask]struct{})
	r.mu.Unlock()

	if r.metrics != nil && len(tasks) > 0 {
		r.metrics.tasksActive.Add(-int64(len(tasks)))
	}
	for _, t := range tasks {
		t.cancel()
	}
}

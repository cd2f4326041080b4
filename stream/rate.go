package stream

import (
	"sync"
	"time"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/schedule"
)

type rateOp struct {
	mu          sync.Mutex
	dt          time.Duration
	scheduler   schedule.Scheduler
	metrics     *Metrics
	accumulator float64
	template    event.Event
	out         Emit
}

// Rate accumulates the canonical metric of every event it sees and, every
// dt, emits one derived event (based on the most recently seen event's
// other fields) whose metric is the accumulated total divided by dt -- the
// mean rate over the interval. If no events arrived since the last tick, it
// emits a zero-metric event derived from the last known template. The
// periodic task is registered during the graph's init pass (spec §4.2/§9),
// not at construction. metrics may be nil. Matches spec §4.4.6's
// `rate(dt)`.
func Rate(scheduler schedule.Scheduler, dt time.Duration, metrics *Metrics) Processor {
	return &rateOp{scheduler: scheduler, dt: dt, metrics: metrics}
}

func (r *rateOp) bindOutput(out Emit) { r.out = out }

func (r *rateOp) Process(e event.Event, _ Emit) {
	r.mu.Lock()
	r.accumulator += e.Metric()
	r.template = e
	r.mu.Unlock()
}

func (r *rateOp) Init() error {
	_, err := r.scheduler.AddPeriodic(r.dt, r.tick)
	return err
}

func (r *rateOp) tick() {
	r.mu.Lock()
	total := r.accumulator
	tmpl := r.template
	r.accumulator = 0
	r.mu.Unlock()

	out := tmpl.Clone()
	out.SetFloat64Metric(total / r.dt.Seconds())
	if r.metrics != nil {
		r.metrics.Observe("rate", 1)
	}
	if r.out != nil {
		r.out(out)
	}
}

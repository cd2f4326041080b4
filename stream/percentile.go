package stream

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/schedule"
	"golang.org/x/exp/slices"
)

type percentileOp struct {
	mu sync.Mutex

	scheduler   schedule.Scheduler
	interval    time.Duration
	percentiles []float64
	metrics     *Metrics

	order     []string
	seen      map[string]bool
	buffers   map[string][]float64
	templates map[string]event.Event
	out       Emit
}

// Percentiles buffers each event's canonical metric per service; every
// interval it sorts each service's buffer and emits one event per
// requested percentile (spec §4.4.8), with metric
// buffer[clamp(round(p*(len-1)),0,len-1)] (nearest-rank, matching the
// worked seed test rather than the prose's floor(), which disagree at the
// midpoint of an even-length buffer -- see DESIGN.md) and a service name
// suffixed to identify which percentile it carries. A service with no
// events since the
// last tick still emits one zero-metric event per percentile, so
// downstream consumers see a steady cadence. Percentile values must be in
// [0.0, 1.0]. Matches spec §4.4.8's `percentiles(interval, [p1, p2, …])`.
func Percentiles(scheduler schedule.Scheduler, interval time.Duration, percentiles []float64, metrics *Metrics) Processor {
	return &percentileOp{
		scheduler:   scheduler,
		interval:    interval,
		percentiles: append([]float64(nil), percentiles...),
		metrics:     metrics,
		seen:        make(map[string]bool),
		buffers:     make(map[string][]float64),
		templates:   make(map[string]event.Event),
	}
}

func (p *percentileOp) bindOutput(out Emit) { p.out = out }

func (p *percentileOp) Process(e event.Event, _ Emit) {
	p.mu.Lock()
	if !p.seen[e.Service] {
		p.seen[e.Service] = true
		p.order = append(p.order, e.Service)
	}
	p.buffers[e.Service] = append(p.buffers[e.Service], e.Metric())
	p.templates[e.Service] = e
	p.mu.Unlock()
}

func (p *percentileOp) Init() error {
	_, err := p.scheduler.AddPeriodic(p.interval, p.tick)
	return err
}

// percentileServiceName is the suffixing convention used to identify which
// requested percentile an emitted event carries; spec §9 leaves the exact
// format as an implementation choice.
func percentileServiceName(service string, p float64) string {
	return fmt.Sprintf("%s p%g", service, p)
}

func (p *percentileOp) tick() {
	p.mu.Lock()
	order := append([]string(nil), p.order...)
	snapshots := make(map[string][]float64, len(order))
	templates := make(map[string]event.Event, len(order))
	for _, svc := range order {
		snapshots[svc] = p.buffers[svc]
		templates[svc] = p.templates[svc]
		p.buffers[svc] = nil
	}
	p.mu.Unlock()

	var toEmit []event.Event
	for _, svc := range order {
		vals := snapshots[svc]
		tmpl := templates[svc]
		slices.Sort(vals)
		for _, pct := range p.percentiles {
			out := tmpl.Clone()
			out.Service = percentileServiceName(svc, pct)
			if len(vals) == 0 {
				out.SetFloat64Metric(0)
			} else {
				idx := clampIndex(int(math.Round(pct*float64(len(vals)-1))), len(vals))
				out.SetFloat64Metric(vals[idx])
			}
			toEmit = append(toEmit, out)
		}
	}

	if p.metrics != nil && len(toEmit) > 0 {
		p.metrics.Observe("percentiles", uint64(len(toEmit)))
	}
	if p.out == nil {
		return
	}
	for _, ev := range toEmit {
		p.out(ev)
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

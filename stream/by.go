package stream

import (
	"strings"
	"sync"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/rlog"
)

// Template builds one child instance of the sub-graph `by` fans out to,
// using its own private Graph so By can run that child's init pass in
// isolation, on demand, long after the top-level graph's own init pass has
// already run. Matches spec §4.5's `child_template`.
type Template func(g *Graph) List

type byOp struct {
	mu       sync.Mutex
	keys     []string
	template Template
	logger   rlog.Logger
	metrics  *Metrics

	order    []string
	seen     map[string]bool
	children map[string]List
	out      Emit
}

// By instantiates one independent copy of template per distinct tuple of
// field values `(e[keys[0]], e[keys[1]], …)` and routes each event to
// exactly the matching child, creating it on first occurrence. Children
// are cached indefinitely (spec §4.5: "no eviction in the specified
// scope"). A child's output forwards into the by node's own downstream.
// logger may be nil (treated as rlog.NoOp()); it receives a Warn entry if a
// child's init hook fails, in which case that child is dropped and
// recreated on the next event bearing its key tuple. Matches spec §4.5's
// `by(keys, child_template)`.
func By(keys []string, template Template, logger rlog.Logger, metrics *Metrics) Processor {
	if logger == nil {
		logger = rlog.NoOp()
	}
	return &byOp{
		keys:     keys,
		template: template,
		logger:   logger,
		metrics:  metrics,
		seen:     make(map[string]bool),
		children: make(map[string]List),
	}
}

func (b *byOp) bindOutput(out Emit) { b.out = out }

func (b *byOp) keyFor(e event.Event) string {
	parts := make([]string, len(b.keys))
	for i, k := range b.keys {
		parts[i] = e.Field(k)
	}
	return strings.Join(parts, "\x00")
}

func (b *byOp) Process(e event.Event, _ Emit) {
	key := b.keyFor(e)

	b.mu.Lock()
	child, ok := b.children[key]
	if !ok {
		g := NewGraph()
		child = b.template(g)
		child.SetOutput(b.out)
		if err := g.InitStreams(); err != nil {
			b.mu.Unlock()
			b.logger.Log(rlog.Entry{
				Level:     rlog.LevelWarn,
				Component: "stream.by",
				Message:   "child init failed, dropping event",
				Err:       err,
				Fields:    map[string]any{"key": key},
			})
			return
		}
		if !b.seen[key] {
			b.seen[key] = true
			b.order = append(b.order, key)
		}
		b.children[key] = child
		if b.metrics != nil {
			b.metrics.Observe("by.children", 1)
		}
	}
	b.mu.Unlock()

	child.Push(e)
}

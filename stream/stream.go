// Package stream implements spec §4.2's stream node/graph abstraction: the
// fundamental operator type, the composition primitives that wire operators
// into lists, fan-outs and key-partitioned sub-graphs, and the post-wiring
// init pass that lets stateful operators register scheduled work.
//
// Following the design note in spec §9, an operator is a single-method
// value (Processor.Process(e, emit)); composition never builds closure
// chains directly — every node is owned by a Graph and wiring is expressed
// by setting a Node's output, which keeps the init pass (and by's
// per-key instantiation) a simple slice walk rather than a reflection- or
// closure-inspection problem.
package stream

import (
	"github.com/joeycumines/riemann-go/event"
)

// Emit is the callable a node's output handler presents downstream: the
// input port of the next node, or a sink.
type Emit func(event.Event)

// Predicate is a pure test over an event, used by where/split/service*/
// tagged*/above/under/within/without and the expired filter.
type Predicate func(event.Event) bool

// Processor is the logic a Node wraps: given an event and the node's emit
// function, it may call emit zero or more times. Implementations must not
// mutate the event they receive; derive a clone (event.Event.Clone) before
// changing any field.
type Processor interface {
	Process(e event.Event, emit Emit)
}

// ProcessorFunc adapts a plain function to a Processor.
type ProcessorFunc func(e event.Event, emit Emit)

func (f ProcessorFunc) Process(e event.Event, emit Emit) { f(e, emit) }

// Initer is implemented by operators that need to do work once, after the
// full graph is wired (spec §4.2's init hook) -- typically registering a
// scheduler task. Composition must stay a pure data operation, so stateful
// operators that need the scheduler do so here, not in their constructor.
type Initer interface {
	Init() error
}

// Node is one element of a stream list: a Processor plus the output it
// forwards derived events to. The zero value's output is a no-op, matching
// spec §4.2's "default output handler is a no-op".
type Node struct {
	proc Processor
	out  Emit
}

// Push delivers e to the node's Processor. This is the node's input port.
func (n *Node) Push(e event.Event) {
	n.proc.Process(e, n.emit)
}

func (n *Node) emit(e event.Event) {
	if n.out != nil {
		n.out(e)
	}
}

// SetOutput wires the node's output port to out. Calling it more than once
// replaces the previous wiring; it is the caller's responsibility (via the
// Graph composition helpers) to only do this once per node during graph
// construction.
func (n *Node) SetOutput(out Emit) {
	n.out = out
}

// List is an ordered, non-empty sequence of nodes forming a linear
// pipeline (spec §3.3): its head is the list's input, its tail's output is
// the list's external output.
type List []*Node

// Push delivers e to the list's head, i.e. the list's input port.
func (l List) Push(e event.Event) {
	l[0].Push(e)
}

// SetOutput wires the list's tail's output to out, i.e. the list's output
// port.
func (l List) SetOutput(out Emit) {
	l[len(l)-1].SetOutput(out)
}

// Head returns the list's input port as an Emit, suitable for wiring as
// another node's output.
func (l List) Head() Emit {
	return l.Push
}

// Graph owns every Node created for one engine instance. It exists purely
// so InitStreams can walk every node exactly once (spec §4.6); it has no
// other runtime role -- a graph is never consulted by a Node at event time.
type Graph struct {
	nodes []*Node
}

// NewGraph constructs an empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// outputBinder is implemented by operators (rate, percentiles) that must
// emit asynchronously from a scheduler tick rather than only in response
// to Process -- they need a standing reference to their node's output,
// which Process's per-call emit argument can't provide. By implements it
// too, to wire each child graph it creates into the by node's output.
type outputBinder interface {
	bindOutput(Emit)
}

// New wraps proc in a Node owned by g and returns it as a one-element List.
func (g *Graph) New(proc Processor) List {
	n := &Node{proc: proc}
	if b, ok := proc.(outputBinder); ok {
		b.bindOutput(n.emit)
	}
	g.nodes = append(g.nodes, n)
	return List{n}
}

// Chain builds a List from procs, wiring each node's output to the next
// node's input in order.
func (g *Graph) Chain(procs ...Processor) List {
	if len(procs) == 0 {
		return nil
	}
	list := make(List, 0, len(procs))
	for _, p := range procs {
		list = append(list, g.New(p)[0])
	}
	wireSequential(list)
	return list
}

// Append appends procs to list, wiring list's current tail to the new
// head, and returns the combined list. Matches spec §4.2's `list → b`.
func (g *Graph) Append(list List, procs ...Processor) List {
	if len(procs) == 0 {
		return list
	}
	rest := g.Chain(procs...)
	return g.Concat(list, rest)
}

// Concat wires a's tail output to b's head input and returns the combined
// list. Matches spec §4.2's `list1 → list2`.
func (g *Graph) Concat(a, b List) List {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	a.SetOutput(b.Head())
	out := make(List, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func wireSequential(list List) {
	for i := 0; i < len(list)-1; i++ {
		list[i].SetOutput(list[i+1].Push)
	}
}

// fanOut delivers every incoming event to each of children, in order,
// matching spec §4.2's `svec([s1, s2, …])`. It has no output of its own --
// a fan-out node is a terminal branch point, per the design note that
// composition primitives describe wiring, not further chaining past the
// branch.
type fanOut struct {
	children []Emit
}

func (f *fanOut) Process(e event.Event, _ Emit) {
	for _, c := range f.children {
		c(e)
	}
}

// SVec constructs a fan-out node delivering each event to every list in
// children, in order. Matches spec §4.2's `svec`.
func (g *Graph) SVec(children ...List) List {
	heads := make([]Emit, len(children))
	for i, c := range children {
		heads[i] = c.Head()
	}
	return g.New(&fanOut{children: heads})
}

// Par is a two-child convenience wrapper over SVec, matching spec §4.2's
// `a + b` parallel fan-out.
func (g *Graph) Par(a, b List) List {
	return g.SVec(a, b)
}

// InitStreams visits every node ever created via g exactly once, calling
// Init on those whose Processor implements Initer (spec §4.6). It must be
// called exactly once per graph instance, after all composition is
// complete.
func (g *Graph) InitStreams() error {
	for _, n := range g.nodes {
		if initer, ok := n.proc.(Initer); ok {
			if err := initer.Init(); err != nil {
				return err
			}
		}
	}
	return nil
}

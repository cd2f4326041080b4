package stream

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/joeycumines/riemann-go/event"
)

// Clock is the narrow time source stateless operators that care about
// expiry need. schedule.Real and schedule.Mock both satisfy it structurally
// (spec §4.1: "operators consume the scheduler via a narrow interface").
type Clock interface {
	UnixTime() int64
}

// Change is one field write applied by With/Default. Field names the
// field for Default's FieldIsSet check; Apply performs the mutation on an
// already-cloned event.
type Change struct {
	Field string
	Apply func(e *event.Event)
}

func SetHost(v string) Change {
	return Change{Field: "host", Apply: func(e *event.Event) { e.Host = v }}
}

func SetService(v string) Change {
	return Change{Field: "service", Apply: func(e *event.Event) { e.Service = v }}
}

func SetDescription(v string) Change {
	return Change{Field: "description", Apply: func(e *event.Event) { e.Description = v }}
}

func SetState(v string) Change {
	return Change{Field: "state", Apply: func(e *event.Event) { e.State = v }}
}

func SetMetric(v float64) Change {
	return Change{Field: "metric", Apply: func(e *event.Event) { e.SetFloat64Metric(v) }}
}

func SetTTL(v int64) Change {
	return Change{Field: "ttl", Apply: func(e *event.Event) { e.TTL = v }}
}

func SetTime(v int64) Change {
	return Change{Field: "time", Apply: func(e *event.Event) { e.Time = v }}
}

func SetAttribute(key, value string) Change {
	return Change{Field: key, Apply: func(e *event.Event) { e.SetAttr(key, value) }}
}

type withOp struct{ changes []Change }

func (w *withOp) Process(e event.Event, emit Emit) {
	c := e.Clone()
	for _, ch := range w.changes {
		ch.Apply(&c)
	}
	emit(c)
}

// With unconditionally applies changes to every event. Matches spec §4.3's
// `with(changes)`.
func With(changes ...Change) Processor {
	return &withOp{changes: changes}
}

type defaultOp struct{ changes []Change }

func (d *defaultOp) Process(e event.Event, emit Emit) {
	c := e.Clone()
	for _, ch := range d.changes {
		if !c.FieldIsSet(ch.Field) {
			ch.Apply(&c)
		}
	}
	emit(c)
}

// Default applies each change only where the target field is currently
// unset. Matches spec §4.3's `default(changes)` / `with_ifempty`.
func Default(changes ...Change) Processor {
	return &defaultOp{changes: changes}
}

func DefaultHost(v string) Processor        { return Default(SetHost(v)) }
func DefaultService(v string) Processor     { return Default(SetService(v)) }
func DefaultDescription(v string) Processor { return Default(SetDescription(v)) }
func DefaultState(v string) Processor       { return Default(SetState(v)) }
func DefaultMetric(v float64) Processor     { return Default(SetMetric(v)) }
func DefaultTTL(v int64) Processor          { return Default(SetTTL(v)) }

type whereOp struct {
	pred Predicate
	els  Emit
}

func (w *whereOp) Process(e event.Event, emit Emit) {
	if w.pred(e) {
		emit(e)
	} else if w.els != nil {
		w.els(e)
	}
}

// Where forwards e downstream iff pred(e). Matches spec §4.3's `where(pred)`.
func Where(pred Predicate) Processor {
	return &whereOp{pred: pred}
}

// WhereElse forwards matching events downstream and non-matching events to
// els. Matches spec §4.3's `where(pred, else_branch)`.
func WhereElse(pred Predicate, els Emit) Processor {
	return &whereOp{pred: pred, els: els}
}

// SplitBranch pairs a predicate with the branch it routes matching events
// to, for Split.
type SplitBranch struct {
	Pred   Predicate
	Target Emit
}

type splitOp struct {
	branches []SplitBranch
	def      Emit
}

func (s *splitOp) Process(e event.Event, _ Emit) {
	for _, b := range s.branches {
		if b.Pred(e) {
			b.Target(e)
			return
		}
	}
	if s.def != nil {
		s.def(e)
	}
}

// Split routes e to the first matching branch's Target, or to def if none
// match (def may be nil, in which case the event is dropped). Matches spec
// §4.3's `split([(pred, branch)…], default?)`.
func Split(branches []SplitBranch, def Emit) Processor {
	return &splitOp{branches: branches, def: def}
}

func ServicePred(s string) Predicate {
	return func(e event.Event) bool { return e.Service == s }
}

func ServiceAnyPred(services ...string) Predicate {
	set := make(map[string]struct{}, len(services))
	for _, s := range services {
		set[s] = struct{}{}
	}
	return func(e event.Event) bool { _, ok := set[e.Service]; return ok }
}

func TaggedPred(tag string) Predicate {
	return func(e event.Event) bool { return e.HasTag(tag) }
}

func TaggedAnyPred(tags ...string) Predicate {
	return func(e event.Event) bool { return e.HasAnyTag(tags...) }
}

func TaggedAllPred(tags ...string) Predicate {
	return func(e event.Event) bool { return e.HasAllTags(tags...) }
}

// likePattern compiles a Riemann-style LIKE pattern ('%' => any run of
// characters) into a regexp requiring a full-string match, per spec §4.3.
func likePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		if r == '%' {
			b.WriteString(".*")
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("stream: invalid like pattern %q: %w", pattern, err)
	}
	return re, nil
}

// ServiceLikePred compiles pattern (a LIKE pattern) into a Predicate
// matching e.Service. Matches spec §4.3's `service_like(p)`.
func ServiceLikePred(pattern string) (Predicate, error) {
	re, err := likePattern(pattern)
	if err != nil {
		return nil, err
	}
	return func(e event.Event) bool { return re.MatchString(e.Service) }, nil
}

// ServiceLikeAnyPred matches e.Service against any of patterns. Matches
// spec §4.3's `service_like_any`.
func ServiceLikeAnyPred(patterns ...string) (Predicate, error) {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := likePattern(p)
		if err != nil {
			return nil, err
		}
		res[i] = re
	}
	return func(e event.Event) bool {
		for _, re := range res {
			if re.MatchString(e.Service) {
				return true
			}
		}
		return false
	}, nil
}

func Service(s string) Processor               { return Where(ServicePred(s)) }
func ServiceAny(services ...string) Processor  { return Where(ServiceAnyPred(services...)) }
func Tagged(tag string) Processor              { return Where(TaggedPred(tag)) }
func TaggedAny(tags ...string) Processor       { return Where(TaggedAnyPred(tags...)) }
func TaggedAll(tags ...string) Processor       { return Where(TaggedAllPred(tags...)) }

// ServiceLike returns a Processor forwarding events whose service matches
// the LIKE pattern. A bad pattern is a spec §7 configuration error, reported
// here at construction time rather than silently dropping events later.
func ServiceLike(pattern string) (Processor, error) {
	pred, err := ServiceLikePred(pattern)
	if err != nil {
		return nil, err
	}
	return Where(pred), nil
}

func ServiceLikeAny(patterns ...string) (Processor, error) {
	pred, err := ServiceLikeAnyPred(patterns...)
	if err != nil {
		return nil, err
	}
	return Where(pred), nil
}

type smapOp struct{ fn func(*event.Event) }

func (s *smapOp) Process(e event.Event, emit Emit) {
	c := e.Clone()
	s.fn(&c)
	emit(c)
}

// SMap applies fn to a clone of every event in place, and forwards it.
// Matches spec §4.3's `smap(f)`.
func SMap(fn func(*event.Event)) Processor {
	return &smapOp{fn: fn}
}

type scaleOp struct{ k float64 }

func (s *scaleOp) Process(e event.Event, emit Emit) {
	c := e.Clone()
	c.SetFloat64Metric(c.Metric() * s.k)
	emit(c)
}

// Scale multiplies the canonical metric by k, storing the result as a
// double. Matches spec §4.3's `scale(k)`.
func Scale(k float64) Processor {
	return &scaleOp{k: k}
}

func Above(k float64) Processor {
	return Where(func(e event.Event) bool { return e.Metric() > k })
}

func Under(k float64) Processor {
	return Where(func(e event.Event) bool { return e.Metric() < k })
}

func Within(lo, hi float64) Processor {
	return Where(func(e event.Event) bool { m := e.Metric(); return lo <= m && m <= hi })
}

func Without(lo, hi float64) Processor {
	return Where(func(e event.Event) bool { m := e.Metric(); return !(lo <= m && m <= hi) })
}

type setFieldOp struct{ change Change }

func (s *setFieldOp) Process(e event.Event, emit Emit) {
	c := e.Clone()
	s.change.Apply(&c)
	emit(c)
}

// SetStateOp unconditionally sets the event's state. Matches spec §4.3's
// `set_state(s)`.
func SetStateOp(s string) Processor {
	return &setFieldOp{change: SetState(s)}
}

// SetMetricOp unconditionally sets the event's metric. Matches spec §4.3's
// `set_metric(v)`.
func SetMetricOp(v float64) Processor {
	return &setFieldOp{change: SetMetric(v)}
}

// State forwards e iff its state exactly matches s. Matches spec §4.3's
// `state(s)`.
func State(s string) Processor {
	return Where(func(e event.Event) bool { return e.State == s })
}

type tagOp struct{ tags []string }

func (t *tagOp) Process(e event.Event, emit Emit) {
	c := e.Clone()
	for _, tag := range t.tags {
		c.AddTag(tag)
	}
	emit(c)
}

// Tag appends tags to every event. Matches spec §4.3's `tag({…})`.
func Tag(tags ...string) Processor {
	return &tagOp{tags: tags}
}

// Grace is the implementation constant added to an event's TTL deadline
// before it is considered expired (spec §4.3's "expiration rule").
const Grace = 10 * time.Second

// IsExpired reports whether e is expired per spec §4.3, using clock's
// current time and the package Grace constant.
func IsExpired(clock Clock, e event.Event) bool {
	return e.Expired(time.Unix(clock.UnixTime(), 0), Grace)
}

// ExpiredFilter forwards e iff it is expired. Matches spec §4.3/§4.4.11's
// `expired()` filter.
func ExpiredFilter(clock Clock) Processor {
	return Where(func(e event.Event) bool { return IsExpired(clock, e) })
}

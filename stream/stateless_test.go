package stream

import (
	"testing"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect() (*[]event.Event, Emit) {
	var out []event.Event
	return &out, func(e event.Event) { out = append(out, e) }
}

func TestWith(t *testing.T) {
	out, emit := collect()
	With(SetHost("h"), SetState("ok")).Process(event.Event{Host: "x"}, emit)
	require.Len(t, *out, 1)
	assert.Equal(t, "h", (*out)[0].Host)
	assert.Equal(t, "ok", (*out)[0].State)
}

func TestDefaultLeavesSetFieldsAlone(t *testing.T) {
	out, emit := collect()
	e := event.Event{Host: "already"}
	e.SetIntMetric(1)
	Default(SetHost("fallback"), SetMetric(99)).Process(e, emit)
	require.Len(t, *out, 1)
	assert.Equal(t, "already", (*out)[0].Host)
	assert.Equal(t, 1.0, (*out)[0].Metric())
}

func TestDefaultWithIfEmptyOnSetMetricIsNoOp(t *testing.T) {
	out, emit := collect()
	e := event.Event{}
	e.SetIntMetric(5)
	Default(SetMetric(1.0)).Process(e, emit)
	require.Len(t, *out, 1)
	assert.Equal(t, 5.0, (*out)[0].Metric())
}

func TestWhereRoutesMatchAndElse(t *testing.T) {
	matched, matchEmit := collect()
	other, elseEmit := collect()
	op := WhereElse(func(e event.Event) bool { return e.Service == "a" }, elseEmit)

	op.Process(event.Event{Service: "a"}, matchEmit)
	op.Process(event.Event{Service: "b"}, matchEmit)

	assert.Len(t, *matched, 1)
	assert.Len(t, *other, 1)
}

func TestSplitFirstMatchWinsAndDefaultIsFallback(t *testing.T) {
	first, firstEmit := collect()
	second, secondEmit := collect()
	def, defEmit := collect()

	op := Split([]SplitBranch{
		{Pred: func(e event.Event) bool { return e.Service == "a" }, Target: firstEmit},
		{Pred: func(e event.Event) bool { return true }, Target: secondEmit},
	}, defEmit)

	op.Process(event.Event{Service: "a"}, nil)
	op.Process(event.Event{Service: "z"}, nil)

	assert.Len(t, *first, 1)
	assert.Len(t, *second, 1)
	assert.Len(t, *def, 0)
}

func TestSplitWithNoMatchAndNoDefaultDrops(t *testing.T) {
	op := Split([]SplitBranch{
		{Pred: func(e event.Event) bool { return false }, Target: func(event.Event) {}},
	}, nil)
	assert.NotPanics(t, func() { op.Process(event.Event{}, nil) })
}

func TestServiceLikeAnchorsFullString(t *testing.T) {
	pred, err := ServiceLikePred("api.%")
	require.NoError(t, err)
	assert.True(t, pred(event.Event{Service: "api.foo"}))
	assert.False(t, pred(event.Event{Service: "xapi.foo"}))
	assert.False(t, pred(event.Event{Service: "api"}))
}

func TestTaggedPredicates(t *testing.T) {
	e := event.Event{Tags: []string{"a", "b"}}
	assert.True(t, TaggedPred("a")(e))
	assert.True(t, TaggedAnyPred("z", "b")(e))
	assert.False(t, TaggedAllPred("a", "z")(e))
}

func TestSMapMutatesClone(t *testing.T) {
	out, emit := collect()
	orig := event.Event{Host: "h"}
	SMap(func(e *event.Event) { e.Host += "!" }).Process(orig, emit)
	assert.Equal(t, "h", orig.Host)
	assert.Equal(t, "h!", (*out)[0].Host)
}

func TestScaleMultipliesCanonicalMetric(t *testing.T) {
	out, emit := collect()
	e := event.Event{}
	e.SetIntMetric(10)
	Scale(2.5).Process(e, emit)
	assert.Equal(t, 25.0, (*out)[0].Metric())
}

func TestAboveUnderWithinWithout(t *testing.T) {
	mk := func(v float64) event.Event { var e event.Event; e.SetFloat64Metric(v); return e }

	var above []event.Event
	Above(5).Process(mk(6), func(e event.Event) { above = append(above, e) })
	Above(5).Process(mk(4), func(e event.Event) { above = append(above, e) })
	assert.Len(t, above, 1)

	var within []event.Event
	Within(1, 3).Process(mk(2), func(e event.Event) { within = append(within, e) })
	Within(1, 3).Process(mk(4), func(e event.Event) { within = append(within, e) })
	assert.Len(t, within, 1)

	var without []event.Event
	Without(1, 3).Process(mk(4), func(e event.Event) { without = append(without, e) })
	Without(1, 3).Process(mk(2), func(e event.Event) { without = append(without, e) })
	assert.Len(t, without, 1)
}

func TestSetStateAndTag(t *testing.T) {
	out, emit := collect()
	SetStateOp("critical").Process(event.Event{State: "ok"}, emit)
	assert.Equal(t, "critical", (*out)[0].State)

	out2, emit2 := collect()
	Tag("x", "y").Process(event.Event{Tags: []string{"z"}}, emit2)
	assert.ElementsMatch(t, []string{"z", "x", "y"}, (*out2)[0].Tags)
}

func TestExpiredFilter(t *testing.T) {
	clock := schedule.NewMock(1000)
	out, emit := collect()
	e := event.Event{Time: 0, TTL: 10, State: "ok"}
	ExpiredFilter(clock).Process(e, emit)
	require.Len(t, *out, 1)
}

func TestDefaultHostSugar(t *testing.T) {
	out, emit := collect()
	DefaultHost("fallback").Process(event.Event{}, emit)
	assert.Equal(t, "fallback", (*out)[0].Host)
}

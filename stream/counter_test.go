package stream

import (
	"testing"

	"github.com/joeycumines/riemann-go/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterDefaultsToIncrementByOne(t *testing.T) {
	out, emit := collect()
	op := Counter()

	op.Process(event.Event{}, emit)
	op.Process(event.Event{}, emit)
	op.Process(event.Event{}, emit)

	require.Len(t, *out, 3)
	assert.Equal(t, 3.0, (*out)[2].Metric())
}

func TestCounterAddsMetricWhenSet(t *testing.T) {
	out, emit := collect()
	op := Counter()

	e1 := event.Event{}
	e1.SetIntMetric(5)
	op.Process(e1, emit)

	e2 := event.Event{}
	e2.SetIntMetric(10)
	op.Process(e2, emit)

	assert.Equal(t, 15.0, (*out)[1].Metric())
}

package stream

import (
	"testing"

	"github.com/joeycumines/riemann-go/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDDTFirstEventSuppressed(t *testing.T) {
	out, emit := collect()
	op := DDT()
	e := event.Event{Time: 0}
	e.SetIntMetric(10)
	op.Process(e, emit)
	assert.Len(t, *out, 0)
}

func TestDDTComputesDerivative(t *testing.T) {
	out, emit := collect()
	op := DDT()

	e1 := event.Event{Time: 0}
	e1.SetIntMetric(10)
	op.Process(e1, emit)

	e2 := event.Event{Time: 5}
	e2.SetIntMetric(60)
	op.Process(e2, emit)

	require.Len(t, *out, 1)
	assert.Equal(t, 10.0, (*out)[0].Metric())
}

func TestDDTSuppressesNonPositiveDelta(t *testing.T) {
	out, emit := collect()
	op := DDT()

	e1 := event.Event{Time: 5}
	e1.SetIntMetric(10)
	op.Process(e1, emit)

	e2 := event.Event{Time: 5}
	e2.SetIntMetric(20)
	op.Process(e2, emit)

	assert.Len(t, *out, 0)
}

package stream

import (
	"testing"

	"github.com/joeycumines/riemann-go/event"
	"github.com/stretchr/testify/assert"
)

func TestChangedEmitsOnlyOnTransition(t *testing.T) {
	out, emit := collect()
	op := Changed("state")

	op.Process(event.Event{State: "ok"}, emit)
	op.Process(event.Event{State: "ok"}, emit)
	op.Process(event.Event{State: "critical"}, emit)
	op.Process(event.Event{State: "critical"}, emit)
	op.Process(event.Event{State: "ok"}, emit)

	assert.Len(t, *out, 3)
	assert.Equal(t, "ok", (*out)[0].State)
	assert.Equal(t, "critical", (*out)[1].State)
	assert.Equal(t, "ok", (*out)[2].State)
}

func TestChangedInitialSeedsComparator(t *testing.T) {
	out, emit := collect()
	op := Changed("state", "ok")

	op.Process(event.Event{State: "ok"}, emit)
	assert.Len(t, *out, 0)

	op.Process(event.Event{State: "critical"}, emit)
	assert.Len(t, *out, 1)
}

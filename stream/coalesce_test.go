package stream

import (
	"testing"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCoalesce is spec §8.2 seed test 6.
func TestCoalesce(t *testing.T) {
	clock := schedule.NewMock(0)
	var calls int
	var last []event.Event
	f := func(events []event.Event) event.Event {
		calls++
		last = append([]event.Event(nil), events...)
		return event.Event{}
	}

	op := Coalesce(clock, f)
	op.Process(event.Event{Host: "a", Service: "a", Time: 1}, func(event.Event) {})
	op.Process(event.Event{Host: "b", Service: "b", Time: 1}, func(event.Event) {})
	op.Process(event.Event{Host: "c", Service: "c", Time: 1}, func(event.Event) {})

	assert.Equal(t, 3, calls)
	assert.Len(t, last, 3)

	op.Process(event.Event{Host: "b", Service: "b", Time: 2}, func(event.Event) {})
	require.Len(t, last, 3)
	for _, e := range last {
		if e.Host == "b" {
			assert.EqualValues(t, 2, e.Time)
		}
	}

	clock.SetTime(100)
	op.Process(event.Event{Host: "b", Service: "b", Time: 90}, func(event.Event) {})
	assert.Len(t, last, 1)

	op.Process(event.Event{Host: "b", Service: "b", Time: 91}, func(event.Event) {})
	assert.Len(t, last, 1)
}

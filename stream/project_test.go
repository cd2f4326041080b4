package stream

import (
	"testing"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/schedule"
	"github.com/stretchr/testify/assert"
)

func TestProjectOverwritesMatchingSlots(t *testing.T) {
	clock := schedule.NewMock(0)
	var last []event.Event
	f := func(events []event.Event) event.Event {
		last = append([]event.Event(nil), events...)
		return event.Event{}
	}

	op := Project(clock, []Predicate{
		func(e event.Event) bool { return e.Service == "a" },
		func(e event.Event) bool { return e.Service == "b" },
	}, f)

	op.Process(event.Event{Service: "a", Time: 1}, nil)
	assert.Len(t, last, 1)

	op.Process(event.Event{Service: "b", Time: 1}, nil)
	assert.Len(t, last, 2)

	op.Process(event.Event{Service: "a", Time: 1, Host: "newer"}, nil)
	assert.Len(t, last, 2)
	assert.Equal(t, "newer", last[0].Host)
}

func TestProjectEvictsExpiredSlots(t *testing.T) {
	clock := schedule.NewMock(0)
	var last []event.Event
	f := func(events []event.Event) event.Event {
		last = append([]event.Event(nil), events...)
		return event.Event{}
	}

	op := Project(clock, []Predicate{
		func(e event.Event) bool { return true },
	}, f)

	op.Process(event.Event{Time: 90, TTL: 5}, nil)
	assert.Len(t, last, 1)

	clock.SetTime(100)
	op.Process(event.Event{Time: 1, TTL: 5}, nil)
	assert.Len(t, last, 0)
}

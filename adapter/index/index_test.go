package index

import (
	"testing"

	"github.com/joeycumines/riemann-go/event"
	"github.com/stretchr/testify/assert"
)

func TestIndexOverwritesAndLooksUp(t *testing.T) {
	var idx Index

	idx.AddEvent(event.Event{Host: "a", Service: "cpu", State: "ok"})
	got, ok := idx.Lookup("a", "cpu")
	assert.True(t, ok)
	assert.Equal(t, "ok", got.State)
	assert.Equal(t, 1, idx.Len())

	idx.AddEvent(event.Event{Host: "a", Service: "cpu", State: "critical"})
	got, ok = idx.Lookup("a", "cpu")
	assert.True(t, ok)
	assert.Equal(t, "critical", got.State)
	assert.Equal(t, 1, idx.Len())

	_, ok = idx.Lookup("a", "disk")
	assert.False(t, ok)
}

func TestIndexSnapshotAndLenTrackDistinctPairs(t *testing.T) {
	var idx Index
	idx.AddEvent(event.Event{Host: "a", Service: "cpu"})
	idx.AddEvent(event.Event{Host: "b", Service: "cpu"})
	idx.AddEvent(event.Event{Host: "a", Service: "disk"})

	assert.Equal(t, 3, idx.Len())
	assert.Len(t, idx.Snapshot(), 3)
}

package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricCoercion(t *testing.T) {
	var e Event
	assert.False(t, e.HasMetric())
	assert.Equal(t, 0.0, e.Metric())

	e.SetIntMetric(42)
	assert.True(t, e.HasIntMetric())
	assert.Equal(t, 42.0, e.Metric())

	e.SetFloat32Metric(1.5)
	assert.False(t, e.HasIntMetric())
	assert.Equal(t, float64(float32(1.5)), e.Metric())

	e.SetFloat64Metric(3.25)
	assert.Equal(t, 3.25, e.Metric())

	e.ClearMetric()
	assert.False(t, e.HasMetric())
	assert.Equal(t, 0.0, e.Metric())
}

func TestSettingMetricClearsOtherVariants(t *testing.T) {
	var e Event
	e.SetIntMetric(1)
	e.SetFloat64Metric(2)
	_, ok := e.IntMetric()
	assert.False(t, ok)
}

func TestTagMembership(t *testing.T) {
	e := Event{Tags: []string{"a", "b", "a"}}
	assert.True(t, e.HasTag("a"))
	assert.True(t, e.HasAnyTag("z", "b"))
	assert.False(t, e.HasAllTags("a", "z"))
	assert.True(t, e.HasAllTags("a", "b"))
}

func TestAttributeFirstOccurrenceWins(t *testing.T) {
	e := Event{Attributes: []Attribute{{Key: "k", Value: "first"}, {Key: "k", Value: "second"}}}
	v, ok := e.Attr("k")
	assert.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestFieldUnknownNameReturnsNilSentinel(t *testing.T) {
	var e Event
	assert.Equal(t, "__nil__", e.Field("bogus"))
}

func TestFieldKnownNames(t *testing.T) {
	e := Event{Host: "h", Service: "s", Description: "d", State: "ok", Time: 10, TTL: 5}
	e.SetIntMetric(7)
	assert.Equal(t, "h", e.Field("host"))
	assert.Equal(t, "s", e.Field("service"))
	assert.Equal(t, "d", e.Field("description"))
	assert.Equal(t, "ok", e.Field("state"))
	assert.Equal(t, "7", e.Field("metric"))
	assert.Equal(t, "5", e.Field("ttl"))
	assert.Equal(t, "10", e.Field("time"))
}

func TestCloneIsIndependent(t *testing.T) {
	e := Event{Tags: []string{"a"}, Attributes: []Attribute{{Key: "k", Value: "v"}}}
	c := e.Clone()
	c.Tags[0] = "z"
	c.Attributes[0].Value = "changed"
	assert.Equal(t, "a", e.Tags[0])
	assert.Equal(t, "v", e.Attributes[0].Value)
}

func TestSetNumericFieldUnknownIsNoOp(t *testing.T) {
	var e Event
	ok := e.SetNumericField("bogus", 5)
	assert.False(t, ok)
}

func TestExpired(t *testing.T) {
	e := Event{Time: 100, TTL: 10}
	grace := 2 * time.Second
	assert.False(t, e.Expired(time.Unix(109, 0), grace))
	assert.False(t, e.Expired(time.Unix(111, 0), grace))
	assert.True(t, e.Expired(time.Unix(113, 0), grace))

	expiredState := Event{State: "expired"}
	assert.True(t, expiredState.Expired(time.Unix(0, 0), grace))
}

// Package event defines the telemetry record (spec §3.1) that flows through
// the stream graph: an immutable-by-convention struct with optional fields,
// an ordered tag list, ordered attributes (first-key-wins on lookup), and a
// tagged-union metric.
package event

import "time"

// MetricKind identifies which variant of the metric tagged union is set.
type MetricKind int

const (
	MetricAbsent MetricKind = iota
	MetricInt64
	MetricFloat32
	MetricFloat64
)

// nilString is returned by string field lookups for unknown field names,
// per spec §3.1/§6.6.
const nilString = "__nil__"

// Attribute is a single ordered key/value pair (spec §3.1's "attributes").
type Attribute struct {
	Key   string
	Value string
}

// Event is the record that traverses the stream graph. The zero value is a
// valid, entirely-unset event. Event is a plain value type: operators must
// copy (via Clone) before mutating, since the spec requires that operators
// "must not mutate a caller's event".
type Event struct {
	Host        string
	Service     string
	Description string
	State       string
	Time        int64 // unix seconds; zero means unset
	TTL         int64 // seconds; zero means unset
	Tags        []string
	Attributes  []Attribute

	metricKind MetricKind
	metricI64  int64
	metricF32  float32
	metricF64  float64
}

// Clone returns a deep copy of e, safe for independent mutation. Operators
// that derive a new event from an input event must start from Clone, never
// mutate the input in place.
func (e Event) Clone() Event {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.Attributes != nil {
		out.Attributes = append([]Attribute(nil), e.Attributes...)
	}
	return out
}

// HasMetric reports whether any metric variant is set.
func (e Event) HasMetric() bool { return e.metricKind != MetricAbsent }

// HasIntMetric reports whether the int64 variant is set.
func (e Event) HasIntMetric() bool { return e.metricKind == MetricInt64 }

// HasFloatMetric reports whether either float variant is set.
func (e Event) HasFloatMetric() bool {
	return e.metricKind == MetricFloat32 || e.metricKind == MetricFloat64
}

// MetricKind returns which variant, if any, is currently set.
func (e Event) MetricKind() MetricKind { return e.metricKind }

// SetIntMetric sets the metric to an int64, clearing any other variant.
func (e *Event) SetIntMetric(v int64) {
	e.metricKind = MetricInt64
	e.metricI64 = v
	e.metricF32 = 0
	e.metricF64 = 0
}

// SetFloat32Metric sets the metric to a float32, clearing any other variant.
func (e *Event) SetFloat32Metric(v float32) {
	e.metricKind = MetricFloat32
	e.metricF32 = v
	e.metricI64 = 0
	e.metricF64 = 0
}

// SetFloat64Metric sets the metric to a float64, clearing any other variant.
func (e *Event) SetFloat64Metric(v float64) {
	e.metricKind = MetricFloat64
	e.metricF64 = v
	e.metricI64 = 0
	e.metricF32 = 0
}

// ClearMetric returns the event to the absent variant.
func (e *Event) ClearMetric() {
	e.metricKind = MetricAbsent
	e.metricI64 = 0
	e.metricF32 = 0
	e.metricF64 = 0
}

// Metric returns the canonical double-precision coercion of whichever
// variant is set (spec §3.1/§6.6): int64->double, float32->double,
// float64->itself, absent->0.0.
func (e Event) Metric() float64 {
	switch e.metricKind {
	case MetricInt64:
		return float64(e.metricI64)
	case MetricFloat32:
		return float64(e.metricF32)
	case MetricFloat64:
		return e.metricF64
	default:
		return 0
	}
}

// IntMetric returns the raw int64 value and whether the int64 variant is
// set. Used by operators (e.g. counter) that need integer coercion rather
// than the canonical double.
func (e Event) IntMetric() (int64, bool) {
	if e.metricKind != MetricInt64 {
		return 0, false
	}
	return e.metricI64, true
}

// HasTag reports whether tag t is present (duplicates are ignored).
func (e Event) HasTag(t string) bool {
	for _, v := range e.Tags {
		if v == t {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether e has at least one of tags.
func (e Event) HasAnyTag(tags ...string) bool {
	for _, t := range tags {
		if e.HasTag(t) {
			return true
		}
	}
	return false
}

// HasAllTags reports whether e has every one of tags.
func (e Event) HasAllTags(tags ...string) bool {
	for _, t := range tags {
		if !e.HasTag(t) {
			return false
		}
	}
	return true
}

// AddTag appends t to the tag list (duplicates are allowed; membership
// queries treat them as idempotent).
func (e *Event) AddTag(t string) { e.Tags = append(e.Tags, t) }

// Attr returns the value of the first occurrence of key among the
// attributes, and whether it was found.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets (appending if absent, overwriting the first occurrence if
// present) an attribute.
func (e *Event) SetAttr(key, value string) {
	for i := range e.Attributes {
		if e.Attributes[i].Key == key {
			e.Attributes[i].Value = value
			return
		}
	}
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
}

// coreFields are the field names with first-class string/int accessors,
// per spec §3.1/§6.6.
var coreFields = map[string]bool{
	"host": true, "service": true, "description": true, "state": true,
	"metric": true, "ttl": true, "time": true,
}

// Field looks up a field by name as a string, per spec §6.6: core fields
// and attribute keys resolve normally, unknown names return "__nil__".
func (e Event) Field(name string) string {
	switch name {
	case "host":
		return e.Host
	case "service":
		return e.Service
	case "description":
		return e.Description
	case "state":
		return e.State
	case "metric":
		return formatMetric(e.Metric())
	case "ttl":
		return formatInt(e.TTL)
	case "time":
		return formatInt(e.Time)
	}
	if v, ok := e.Attr(name); ok {
		return v
	}
	return nilString
}

// SetField writes a string field by name, parsing ttl/time/metric from
// their string form. Unknown names (outside the core set and not attributes) are treated
// as new attributes, matching the ordered-attribute model; callers that
// need numeric coercion should use SetNumericField instead.
func (e *Event) SetField(name, value string) {
	switch name {
	case "host":
		e.Host = value
	case "service":
		e.Service = value
	case "description":
		e.Description = value
	case "state":
		e.State = value
	case "ttl":
		e.TTL = parseInt(value)
	case "time":
		e.Time = parseInt(value)
	case "metric":
		e.SetFloat64Metric(parseFloat(value))
	default:
		e.SetAttr(name, value)
	}
}

// FieldIsSet reports whether the named field currently holds a non-zero
// value, used by default()/with_ifempty to decide whether to write.
func (e Event) FieldIsSet(name string) bool {
	switch name {
	case "host":
		return e.Host != ""
	case "service":
		return e.Service != ""
	case "description":
		return e.Description != ""
	case "state":
		return e.State != ""
	case "ttl":
		return e.TTL != 0
	case "time":
		return e.Time != 0
	case "metric":
		return e.HasMetric()
	}
	_, ok := e.Attr(name)
	return ok
}

// DefaultTTL is used in place of an unset (zero) TTL when computing
// expiry, matching upstream Riemann's convention that an event without an
// explicit ttl still eventually expires rather than living forever.
const DefaultTTL = 60

// Expired reports whether e is expired per spec §4.3: either its state is
// the literal string "expired", or now exceeds e.Time+ttl+grace, where ttl
// is e.TTL if set, else DefaultTTL.
func (e Event) Expired(now time.Time, grace time.Duration) bool {
	if e.State == "expired" {
		return true
	}
	ttl := e.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	deadline := time.Unix(e.Time, 0).Add(time.Duration(ttl) * time.Second).Add(grace)
	return now.After(deadline)
}

func formatMetric(v float64) string {
	return formatFloat(v)
}

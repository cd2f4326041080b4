// Package wsbridge is a minimal illustrative event source (spec.md §6.1):
// it accepts a websocket connection, JSON-decodes one event per text
// message, and pushes it into a stream. This is explicitly not the wire
// codec spec.md §1 puts out of scope -- it is a toy adapter demonstrating
// the source interface boundary with the simplest framing available.
package wsbridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/rlog"
)

// wireEvent is the JSON shape accepted over the websocket; field names
// match event.Event's core fields directly since no pack example supplies
// a closer match to the unspecified upstream wire format.
type wireEvent struct {
	Host        string            `json:"host"`
	Service     string            `json:"service"`
	Description string            `json:"description,omitempty"`
	State       string            `json:"state,omitempty"`
	Time        int64             `json:"time,omitempty"`
	TTL         int64             `json:"ttl,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Metric      *float64          `json:"metric,omitempty"`
}

func (w wireEvent) toEvent() event.Event {
	e := event.Event{
		Host:        w.Host,
		Service:     w.Service,
		Description: w.Description,
		State:       w.State,
		Time:        w.Time,
		TTL:         w.TTL,
		Tags:        append([]string(nil), w.Tags...),
	}
	for k, v := range w.Attributes {
		e.SetAttr(k, v)
	}
	if w.Metric != nil {
		e.SetFloat64Metric(*w.Metric)
	}
	return e
}

// Push receives a decoded event; typically stream.List.Push or a
// stream.ProcessorFunc wrapping an adapter/index.Index.
type Push func(event.Event)

// Bridge upgrades incoming HTTP requests to websocket connections and
// forwards every decoded message to Push, until the connection closes.
type Bridge struct {
	upgrader websocket.Upgrader
	push     Push
	logger   rlog.Logger
}

// New constructs a Bridge that forwards decoded events to push. logger may
// be nil (treated as rlog.NoOp()).
func New(push Push, logger rlog.Logger) *Bridge {
	if logger == nil {
		logger = rlog.NoOp()
	}
	return &Bridge{
		upgrader: websocket.Upgrader{
			// accepting any origin: this is a toy adapter, not a hardened
			// public endpoint.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		push:   push,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler, upgrading the connection and reading
// events until it closes or an unrecoverable read error occurs.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Log(rlog.Entry{Level: rlog.LevelWarn, Component: "adapter.wsbridge", Message: "upgrade failed", Err: err})
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var we wireEvent
		if err := json.Unmarshal(payload, &we); err != nil {
			b.logger.Log(rlog.Entry{Level: rlog.LevelWarn, Component: "adapter.wsbridge", Message: "decode failed", Err: err, Timestamp: time.Now()})
			continue
		}

		b.push(we.toEvent())
	}
}

// Package graphite batches events into Graphite plaintext-protocol lines
// and writes them over a TCP connection, grounded on
// original_source/src/external/graphite_pool.cpp -- which batches multiple
// formatted lines per write rather than writing one event per round trip --
// reusing microbatch.Batcher as the batching primitive (spec.md §6.4).
package graphite

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/microbatch"
	"github.com/joeycumines/riemann-go/rlog"
)

// Config configures a Sink, in the teacher's nil-safe option-struct style
// (microbatch.BatcherConfig).
type Config struct {
	// Addr is the "host:port" of the Graphite carbon listener.
	Addr string

	// MaxBatch caps the number of events written per TCP write.
	// Defaults to 100 (graphite_pool.cpp's k_batch_size), if 0.
	MaxBatch int

	// FlushInterval bounds how long an incomplete batch waits before being
	// flushed anyway. Defaults to 100ms, if 0.
	FlushInterval time.Duration

	// DialTimeout bounds connection establishment. Defaults to 5s, if 0.
	DialTimeout time.Duration

	// Logger receives write/connect failures; a dropped batch is not
	// retried (spec §7: sink errors are logged and dropped, not fatal).
	Logger rlog.Logger
}

// Sink batches and writes events as Graphite plaintext lines:
// "host.service value time\n", matching graphite_pool.cpp's output_events
// exactly. A Sink must be closed via Close when no longer needed.
type Sink struct {
	addr        string
	dialTimeout time.Duration
	logger      rlog.Logger

	mu   sync.Mutex
	conn net.Conn

	batcher *microbatch.Batcher[event.Event]
}

// NewSink dials nothing eagerly; the underlying TCP connection is
// established lazily on the first flush and redialed on write failure.
func NewSink(cfg Config) *Sink {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 100 * time.Millisecond
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = rlog.NoOp()
	}

	s := &Sink{
		addr:        cfg.Addr,
		dialTimeout: cfg.DialTimeout,
		logger:      cfg.Logger,
	}
	s.batcher = microbatch.NewBatcher(&microbatch.BatcherConfig{
		MaxSize:       cfg.MaxBatch,
		FlushInterval: cfg.FlushInterval,
		MaxConcurrency: 1,
	}, s.writeBatch)
	return s
}

// Push enqueues e for the next batch. Matches graphite_pool.cpp's
// push_event; call sites are typically a stream.ProcessorFunc tail node.
func (s *Sink) Push(e event.Event) {
	_, _ = s.batcher.Submit(context.Background(), e)
}

// Close flushes any pending batch and releases the TCP connection.
func (s *Sink) Close() error {
	err := s.batcher.Shutdown(context.Background())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	return err
}

// formatLine renders e as a single Graphite plaintext line, matching
// graphite_pool.cpp's output_events: "host.service metric time\n".
func formatLine(e event.Event) string {
	var b strings.Builder
	b.WriteString(e.Host)
	b.WriteByte('.')
	b.WriteString(e.Service)
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%g", e.Metric())
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%d", e.Time)
	b.WriteByte('\n')
	return b.String()
}

func (s *Sink) writeBatch(_ context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	var b strings.Builder
	for _, e := range events {
		b.WriteString(formatLine(e))
	}
	payload := []byte(b.String())

	conn, err := s.connection()
	if err != nil {
		s.logger.Log(rlog.Entry{Level: rlog.LevelError, Component: "adapter.graphite", Message: "dial failed", Err: err})
		return err
	}

	if _, err := conn.Write(payload); err != nil {
		s.logger.Log(rlog.Entry{Level: rlog.LevelError, Component: "adapter.graphite", Message: "write failed", Err: err})
		s.mu.Lock()
		if s.conn == conn {
			_ = conn.Close()
			s.conn = nil
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Sink) connection() (net.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := net.DialTimeout("tcp", s.addr, s.dialTimeout)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

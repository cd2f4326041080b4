// Command riemannd wires a stream graph to the wsbridge event source and
// the graphite sink, exposing the scheduler/stream engine metrics over
// HTTP. Configuration loading proper is out of core scope (spec.md §1);
// this binary exists only so the adapters built for this module have a
// runnable home, per the teacher's own cmd/-per-binary convention.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joeycumines/riemann-go/adapter/graphite"
	"github.com/joeycumines/riemann-go/adapter/index"
	"github.com/joeycumines/riemann-go/adapter/wsbridge"
	"github.com/joeycumines/riemann-go/event"
	"github.com/joeycumines/riemann-go/rlog"
	"github.com/joeycumines/riemann-go/schedule"
	"github.com/joeycumines/riemann-go/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "riemannd",
		Short: "riemannd wires a stream graph to the wsbridge source and graphite sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("riemannd: loading config: %w", err)
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a toml config file (defaults built in if omitted)")

	return cmd
}

func run(cfg Config) error {
	logger := rlog.NewWriter(rlog.LevelInfo, os.Stderr)

	registry := prometheus.NewRegistry()
	schedMetrics := schedule.NewMetrics("riemannd")
	streamMetrics := stream.NewMetrics("riemannd")
	registry.MustRegister(schedMetrics, streamMetrics)

	scheduler := schedule.NewReal(0, schedMetrics)
	defer scheduler.Clear()

	idx := &index.Index{}

	sink := graphite.NewSink(graphite.Config{
		Addr:          cfg.Graphite.Addr,
		MaxBatch:      cfg.Graphite.MaxBatch,
		FlushInterval: cfg.graphiteFlushInterval(),
		Logger:        logger,
	})
	defer sink.Close()

	graph := buildGraph(scheduler, streamMetrics, idx, sink, cfg)
	if err := graph.InitStreams(); err != nil {
		return fmt.Errorf("riemannd: initializing stream graph: %w", err)
	}

	bridge := wsbridge.New(graph.push, logger)

	wsMux := http.NewServeMux()
	wsMux.Handle("/events", bridge)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	metricsSrv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log(rlog.Entry{Level: rlog.LevelError, Component: "riemannd", Message: "metrics server exited", Err: err})
		}
	}()

	wsSrv := &http.Server{Addr: cfg.WSBridge.ListenAddr, Handler: wsMux}
	return wsSrv.ListenAndServe()
}

// namedGraph bundles the built stream.Graph with its entry point, since
// stream.List.Push is the only way to feed events in.
type namedGraph struct {
	graph *stream.Graph
	head  stream.List
}

func (g namedGraph) push(e event.Event) { g.head.Push(e) }

func (g namedGraph) InitStreams() error { return g.graph.InitStreams() }

// buildGraph assembles an illustrative pipeline: every event is indexed,
// fanned out to a rate counter and a p50/p95/p99 percentile tracker (both
// on cfg's configured intervals), and forwarded to the graphite sink.
func buildGraph(scheduler schedule.Scheduler, metrics *stream.Metrics, idx *index.Index, sink *graphite.Sink, cfg Config) namedGraph {
	g := stream.NewGraph()

	indexNode := g.New(stream.ProcessorFunc(func(e event.Event, emit stream.Emit) {
		idx.AddEvent(e)
		emit(e)
	}))

	rateList := g.New(stream.Rate(scheduler, cfg.rateInterval(), metrics))
	percentileList := g.New(stream.Percentiles(scheduler, cfg.percentilesInterval(), cfg.Percentiles.Values, metrics))

	sinkNode := g.New(stream.ProcessorFunc(func(e event.Event, emit stream.Emit) {
		sink.Push(e)
		emit(e)
	}))

	fanOut := g.SVec(rateList, percentileList, sinkNode)
	head := g.Concat(indexNode, fanOut)

	return namedGraph{graph: g, head: head}
}

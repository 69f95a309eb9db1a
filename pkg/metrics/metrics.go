// Package metrics tracks definition loading with Prometheus metrics.
//
// # Overview
//
// The metrics package provides:
//   - counters for documents parsed, leaves resolved and tokens that fell back to absent
//   - error counts by error type
//   - a latency histogram per loading stage (read, parse, flatten)
//
// Each Collector owns its registry so tests and short-lived CLI runs do not
// share state through the process-wide default registry.
//
// # Basic Usage
//
//	c := metrics.NewCollector(prometheus.NewRegistry())
//
//	timer := metrics.NewTimer(metrics.StageParse)
//	roots, err := definitions.ParseAll(text)
//	c.ObserveStage(timer)
//
//	c.DocumentParsed(err)
//	c.LeavesResolved(len(leaves))
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// Loading stages used as the stage label.
const (
	StageRead    = "read"
	StageParse   = "parse"
	StageFlatten = "flatten"
)

// Collector records loader metrics into a single registry.
type Collector struct {
	gatherer         prometheus.Gatherer
	documentsParsed  *prometheus.CounterVec   // Documents parsed, by status
	leavesResolved   prometheus.Counter       // Resolved leaves produced
	fallbacks        *prometheus.CounterVec   // Unparsable tokens, by field
	errorsTotal      *prometheus.CounterVec   // Failures, by error type
	stageLatency     *prometheus.HistogramVec // Stage durations in seconds
	startTime        time.Time
}

// NewCollector registers the strata metrics on reg. Passing a
// *prometheus.Registry also makes WriteText work.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(reg)
//	c.LeavesResolved(3)
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c := &Collector{
		documentsParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_documents_parsed_total",
				Help: "Definitions documents parsed",
			},
			[]string{"status"},
		),
		leavesResolved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "strata_leaves_resolved_total",
				Help: "Resolved leaf definitions produced by flattening",
			},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_fallbacks_total",
				Help: "Field tokens that could not be parsed and were treated as absent",
			},
			[]string{"field"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_errors_total",
				Help: "Definition loading errors by type",
			},
			[]string{"type"},
		),
		stageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "strata_stage_duration_seconds",
				Help: "Duration of each loading stage in seconds",
				Buckets: []float64{
					1e-5, // 10μs - tiny documents
					1e-4, // 100μs
					1e-3, // 1ms
					1e-2, // 10ms - typical file read
					1e-1, // 100ms
					1,    // 1s - very large trees
				},
			},
			[]string{"stage"},
		),
		startTime: time.Now(),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

// DocumentParsed counts a parse attempt. A non-nil err is also counted by
// its error type.
func (c *Collector) DocumentParsed(err error) {
	if err == nil {
		c.documentsParsed.WithLabelValues("success").Inc()
		return
	}
	c.documentsParsed.WithLabelValues("failure").Inc()
	c.Error(err)
}

// Error counts err by its error type, or "unknown" for foreign errors.
func (c *Collector) Error(err error) {
	if err == nil {
		return
	}
	label := "unknown"
	var e *errors.Error
	if errors.As(err, &e) {
		label = string(e.Type)
	}
	c.errorsTotal.WithLabelValues(label).Inc()
}

// LeavesResolved adds n resolved leaves.
func (c *Collector) LeavesResolved(n int) {
	c.leavesResolved.Add(float64(n))
}

// Fallback counts one token of field that resolved to absent.
func (c *Collector) Fallback(field string) {
	c.fallbacks.WithLabelValues(field).Inc()
}

// ObserveStage records the time elapsed on t under its stage name.
func (c *Collector) ObserveStage(t *Timer) time.Duration {
	d := t.Stop()
	c.stageLatency.WithLabelValues(t.name).Observe(d.Seconds())
	return d
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format. The CLI prints it on exit when metrics are enabled.
func (c *Collector) WriteText(w io.Writer) error {
	if c.gatherer == nil {
		return errors.New(errors.ErrorTypeInternal, "metrics registry cannot be gathered")
	}
	families, err := c.gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write metrics")
		}
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring stage durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
//
// Example:
//
//	timer := metrics.NewTimer(metrics.StageFlatten)
//	leaves := definitions.Flatten(roots)
//	logger.Debug("flattened", zap.Duration("duration", timer.Stop()))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop returns the elapsed duration since creation. The timer can be
// stopped multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// Name returns the stage the timer measures.
func (t *Timer) Name() string {
	return t.name
}

// Package profiler - Stage timings and batch counters for image comparisons.
//
// Every timing is kept twice: in an in-process tracker that backs the
// plain-text report, and in a Prometheus histogram so a batch run can be
// scraped or dumped as a node-exporter textfile.
package profiler

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stage names used by the comparison pipeline.
const (
	StageLoad    = "load"
	StageDiff    = "diff"
	StageRender  = "render"
	StageRegions = "regions"
	StageSave    = "save"
	StagePair    = "pair"
)

// Options configures a Profiler.
type Options struct {
	// Namespace prefixes every metric name (default: "imgdiff").
	Namespace string
	// MaxSamples caps the durations kept per operation (default: 600).
	MaxSamples int
	// Buckets are the histogram buckets in seconds (default: exponential
	// from 1ms to ~16s).
	Buckets []float64
	// WithRuntimeMetrics also registers the Go runtime collector.
	WithRuntimeMetrics bool
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a snapshot of one TimeTracker.
type OperationStats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// Profiler records stage timings and pair outcomes. It is safe for concurrent
// use by batch workers.
type Profiler struct {
	mu         sync.RWMutex
	startTime  time.Time
	maxSamples int

	operationTimes map[string]*TimeTracker
	pairs          map[string]int64

	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	outcomes  *prometheus.CounterVec
	diffPct   prometheus.Histogram
}

// New creates a profiler with its own Prometheus registry.
//
// Arguments:
//   - opts: Configuration options for the profiler.
//
// Returns:
//   - *Profiler: A ready profiler.
func New(opts Options) *Profiler {
	if opts.Namespace == "" {
		opts.Namespace = "imgdiff"
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = prometheus.ExponentialBuckets(0.001, 2, 15)
	}

	p := &Profiler{
		startTime:      time.Now(),
		maxSamples:     opts.MaxSamples,
		operationTimes: make(map[string]*TimeTracker),
		pairs:          make(map[string]int64),
		registry:       prometheus.NewRegistry(),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of comparison pipeline stages.",
			Buckets:   opts.Buckets,
		}, []string{"operation"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "pairs_total",
			Help:      "Image pairs processed, by outcome.",
		}, []string{"status"}),
		diffPct: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "diff_percentage",
			Help:      "Overall difference percentage of successful pairs.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
		}),
	}

	p.registry.MustRegister(p.durations, p.outcomes, p.diffPct)
	if opts.WithRuntimeMetrics {
		p.registry.MustRegister(collectors.NewGoCollector())
	}

	return p
}

// StartOperation begins timing an operation.
//
// Arguments:
//   - name: The name of the operation to track.
//
// Returns:
//   - func(): Call when the operation completes.
//
// Example:
//
// ```go
//
//	done := prof.StartOperation(profiler.StageDiff)
//	arr, err := diff.Compute(a, b)
//	done()
//
// ```
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.RecordDuration(name, time.Since(start))
	}
}

// RecordDuration records the completion time of an operation.
func (p *Profiler) RecordDuration(name string, duration time.Duration) {
	p.durations.WithLabelValues(name).Observe(duration.Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		p.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > p.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// RecordPair counts one finished pair. diffPercentage is only observed for
// successful pairs.
func (p *Profiler) RecordPair(status string, diffPercentage float64) {
	p.outcomes.WithLabelValues(status).Inc()
	if status == "success" {
		p.diffPct.Observe(diffPercentage)
	}

	p.mu.Lock()
	p.pairs[status]++
	p.mu.Unlock()
}

// Pairs returns the per-status pair counts.
func (p *Profiler) Pairs() map[string]int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]int64, len(p.pairs))
	for k, v := range p.pairs {
		out[k] = v
	}
	return out
}

// Snapshot returns per-operation statistics sorted by name. Avg is taken over
// the retained samples; Count covers every recorded call.
func (p *Profiler) Snapshot() []OperationStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]OperationStats, 0, len(p.operationTimes))
	for name, tracker := range p.operationTimes {
		if len(tracker.durations) == 0 {
			continue
		}
		out = append(out, OperationStats{
			Name:  name,
			Count: tracker.count,
			Avg:   tracker.totalTime / time.Duration(len(tracker.durations)),
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// WriteReport prints uptime, memory usage, pair outcomes and operation
// timings.
func (p *Profiler) WriteReport(w io.Writer) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.RLock()
	uptime := time.Since(p.startTime)
	statuses := make([]string, 0, len(p.pairs))
	for s := range p.pairs {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	pairLines := make([]string, 0, len(statuses))
	for _, s := range statuses {
		pairLines = append(pairLines, fmt.Sprintf("  %s: %d\n", s, p.pairs[s]))
	}
	p.mu.RUnlock()

	lines := []string{
		fmt.Sprintf("PROFILER REPORT - %s\n", time.Now().Format("15:04:05.000")),
		fmt.Sprintf("Uptime: %v\n", uptime.Truncate(time.Millisecond)),
		"\nMEMORY USAGE:\n",
		fmt.Sprintf("  Alloc: %s\n", formatBytes(mem.Alloc)),
		fmt.Sprintf("  Sys: %s\n", formatBytes(mem.Sys)),
		fmt.Sprintf("  GC Cycles: %d\n", mem.NumGC),
	}
	if len(pairLines) > 0 {
		lines = append(lines, "\nPAIRS:\n")
		lines = append(lines, pairLines...)
	}
	if ops := p.Snapshot(); len(ops) > 0 {
		lines = append(lines, "\nOPERATION TIMINGS:\n")
		for _, op := range ops {
			lines = append(lines, fmt.Sprintf("  %s: avg=%v, min=%v, max=%v, count=%d\n",
				op.Name, op.Avg.Truncate(time.Microsecond),
				op.Min.Truncate(time.Microsecond),
				op.Max.Truncate(time.Microsecond),
				op.Count))
		}
	}

	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return errors.Wrap(err, "failed to write profiler report")
		}
	}
	return nil
}

// Registry exposes the Prometheus registry so callers embedding the profiler
// can serve it, e.g. with promhttp.HandlerFor, or gather it directly.
func (p *Profiler) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile dumps all metrics in the Prometheus text format, atomically
// replacing path.
func (p *Profiler) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.Registry()); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

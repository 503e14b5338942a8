// Package profiler records per-stage render timings and byte counts.
package profiler

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultMaxSamples is the per-stage sample window of a profiler built with
// zero Options.
const DefaultMaxSamples = 600

// Options configures a Profiler.
type Options struct {
	// MaxSamples bounds the samples kept per stage and metric (default: 600).
	MaxSamples int
}

// Profiler aggregates stage durations and metric samples. It is safe for
// concurrent use by simultaneous renders; a nil *Profiler records nothing.
type Profiler struct {
	mu         sync.RWMutex
	startTime  time.Time
	maxSamples int
	stages     map[string]*TimeTracker
	metrics    map[string]*MetricTracker
}

// TimeTracker tracks timing statistics for one stage.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// MetricTracker tracks statistics for one named metric.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// StageStats is a point-in-time summary of a stage.
type StageStats struct {
	Name  string
	Count int64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
}

// MetricStats is a point-in-time summary of a metric.
type MetricStats struct {
	Name  string
	Count int64
	Avg   float64
	Min   float64
	Max   float64
}

// New creates a profiler.
//
// Arguments:
// - opts: Configuration options for the profiler.
//
// Returns:
// - A configured Profiler.
func New(opts Options) *Profiler {
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultMaxSamples
	}
	return &Profiler{
		startTime:  time.Now(),
		maxSamples: opts.MaxSamples,
		stages:     make(map[string]*TimeTracker),
		metrics:    make(map[string]*MetricTracker),
	}
}

// StartOperation begins timing a stage.
//
// Arguments:
// - name: The stage to track.
//
// Returns:
// - A function to call when the stage completes.
//
// @example
// done := p.StartOperation("composite")
// defer done()
func (p *Profiler) StartOperation(name string) func() {
	if p == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.RecordDuration(name, time.Since(start))
	}
}

// RecordDuration records one completed run of a stage.
func (p *Profiler) RecordDuration(name string, d time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.stages[name]
	if !ok {
		t = &TimeTracker{minTime: d, maxTime: d}
		p.stages[name] = t
	}
	t.durations = append(t.durations, d)
	t.totalTime += d
	if len(t.durations) > p.maxSamples {
		t.totalTime -= t.durations[0]
		t.durations = t.durations[1:]
	}
	t.count++
	t.minTime = min(t.minTime, d)
	t.maxTime = max(t.maxTime, d)
}

// RecordMetric records a metric sample, such as an encoded byte count.
func (p *Profiler) RecordMetric(name string, value float64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.metrics[name]
	if !ok {
		m = &MetricTracker{min: value, max: value}
		p.metrics[name] = m
	}
	m.values = append(m.values, value)
	m.sum += value
	if len(m.values) > p.maxSamples {
		m.sum -= m.values[0]
		m.values = m.values[1:]
	}
	m.count++
	m.min = min(m.min, value)
	m.max = max(m.max, value)
}

// Stages returns a summary of every stage, sorted by name.
func (p *Profiler) Stages() []StageStats {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]StageStats, 0, len(p.stages))
	for name, t := range p.stages {
		out = append(out, StageStats{
			Name:  name,
			Count: t.count,
			Avg:   t.totalTime / time.Duration(len(t.durations)),
			Min:   t.minTime,
			Max:   t.maxTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Metrics returns a summary of every metric, sorted by name.
func (p *Profiler) Metrics() []MetricStats {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]MetricStats, 0, len(p.metrics))
	for name, m := range p.metrics {
		out = append(out, MetricStats{
			Name:  name,
			Count: m.count,
			Avg:   m.sum / float64(len(m.values)),
			Min:   m.min,
			Max:   m.max,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report writes a human-readable summary of stages, metrics and heap usage.
// Metrics named with a "bytes" suffix are formatted as sizes.
func (p *Profiler) Report(w io.Writer) error {
	if p == nil {
		return nil
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	if _, err := fmt.Fprintf(w, "RENDER PROFILE - uptime %v\n", time.Since(p.startTime).Truncate(time.Millisecond)); err != nil {
		return err
	}
	fmt.Fprintf(w, "  heap: %s in use, %s total allocated\n",
		humanize.IBytes(mem.HeapAlloc), humanize.IBytes(mem.TotalAlloc))

	if stages := p.Stages(); len(stages) > 0 {
		fmt.Fprintf(w, "\nSTAGES:\n")
		for _, s := range stages {
			fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
				s.Name,
				s.Avg.Truncate(time.Microsecond),
				s.Min.Truncate(time.Microsecond),
				s.Max.Truncate(time.Microsecond),
				s.Count)
		}
	}

	if metrics := p.Metrics(); len(metrics) > 0 {
		fmt.Fprintf(w, "\nMETRICS:\n")
		for _, m := range metrics {
			if isBytes(m.Name) {
				fmt.Fprintf(w, "  %s: avg=%s, min=%s, max=%s, samples=%d\n",
					m.Name, humanize.Bytes(uint64(m.Avg)), humanize.Bytes(uint64(m.Min)),
					humanize.Bytes(uint64(m.Max)), m.Count)
				continue
			}
			fmt.Fprintf(w, "  %s: avg=%.2f, min=%.2f, max=%.2f, samples=%d\n",
				m.Name, m.Avg, m.Min, m.Max, m.Count)
		}
	}
	return nil
}

func isBytes(name string) bool {
	const suffix = "bytes"
	return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
}

package debug

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections. Recording takes
// a mutex, so it belongs around a render call in a host, not inside one.
type Profiler struct {
	mu           sync.Mutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	window       int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	Name  string
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration

	recent []time.Duration
	next   int
}

// NewProfiler creates a profiler that keeps the last window samples of
// every section for percentiles.
func NewProfiler(window int) *Profiler {
	if window < 1 {
		window = 1
	}
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		window:       window,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Start begins timing a named section; call the returned func to stop.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures the execution time of a function.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores one timing for a section.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		m = &Measurement{
			Name:   name,
			Min:    elapsed,
			Max:    elapsed,
			recent: make([]time.Duration, 0, p.window),
		}
		p.measurements[name] = m
	}

	m.Count++
	m.Total += elapsed
	m.Last = elapsed
	m.Min = min(m.Min, elapsed)
	m.Max = max(m.Max, elapsed)

	if len(m.recent) < p.window {
		m.recent = append(m.recent, elapsed)
	} else {
		m.recent[m.next] = elapsed
		m.next = (m.next + 1) % p.window
	}
}

// Measurement returns a copy of the statistics for a section.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		return Measurement{}, false
	}
	cp := *m
	cp.recent = slices.Clone(m.recent)
	return cp, true
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report lists every section in name order.
func (p *Profiler) Report() string {
	p.mu.Lock()
	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	p.mu.Unlock()

	if len(names) == 0 {
		return "No measurements recorded"
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	for _, name := range names {
		m, _ := p.Measurement(name)
		fmt.Fprintf(&sb, "%s: count=%d avg=%v min=%v max=%v p99=%v\n",
			name, m.Count, m.Average(), m.Min, m.Max, m.Percentile(99))
	}
	return sb.String()
}

// Average returns the mean time for this measurement.
func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Percentile returns the p-th percentile (0-100) of the recent samples.
func (m Measurement) Percentile(p float64) time.Duration {
	if len(m.recent) == 0 {
		return 0
	}
	sorted := slices.Clone(m.recent)
	slices.Sort(sorted)
	p = min(max(p, 0), 100)
	return sorted[int(float64(len(sorted)-1)*p/100)]
}

// RenderProfiler times render blocks against their real-time budget.
type RenderProfiler struct {
	*Profiler
	sampleRate float64
	frames     atomic.Int64
}

// RenderSection is the section name RenderProfiler records into.
const RenderSection = "ProcessAudio"

// NewRenderProfiler creates a profiler for blocks rendered at sampleRate.
func NewRenderProfiler(sampleRate float64) *RenderProfiler {
	return &RenderProfiler{
		Profiler:   NewProfiler(1000),
		sampleRate: sampleRate,
	}
}

// Block times one render of frames samples.
func (r *RenderProfiler) Block(frames int, render func()) {
	r.Time(RenderSection, render)
	r.frames.Add(int64(frames))
}

// Load returns the mean render time as a percentage of the audio duration
// the blocks represented. Above 100 the renderer cannot keep up live.
func (r *RenderProfiler) Load() float64 {
	m, ok := r.Measurement(RenderSection)
	frames := r.frames.Load()
	if !ok || frames == 0 || r.sampleRate <= 0 {
		return 0
	}
	audio := time.Duration(float64(frames) / r.sampleRate * float64(time.Second))
	return float64(m.Total) / float64(audio) * 100
}

// AudioReport adds the real-time load to Report.
func (r *RenderProfiler) AudioReport() string {
	m, _ := r.Measurement(RenderSection)
	return fmt.Sprintf("render: blocks=%d avg=%v max=%v p99=%v load=%.2f%% at %.0f Hz",
		m.Count, m.Average(), m.Max, m.Percentile(99), r.Load(), r.sampleRate)
}

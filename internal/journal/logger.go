package journal

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"roboquant/pkg/timeframe"
	"roboquant/pkg/timeseries"
)

// SilentLogger discards every observation. It only tracks which runs
// were started/ended and which metric names it has seen, so
// GetMetricNames/Runs still answer honestly even though GetMetric
// always returns an empty series.
type SilentLogger struct {
	mu    sync.Mutex
	runs  []string
	names map[string]struct{}
}

// NewSilentLogger returns a MetricsLogger that drops all values.
func NewSilentLogger() *SilentLogger {
	return &SilentLogger{names: make(map[string]struct{})}
}

func (l *SilentLogger) Start(run string, _ timeframe.Timeframe) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, run)
}

func (l *SilentLogger) End(string) {}

func (l *SilentLogger) Log(metrics map[string]float64, _ time.Time, _ string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for name := range metrics {
		l.names[name] = struct{}{}
	}
}

func (l *SilentLogger) GetMetric(string, ...string) timeseries.TimeSeries { return timeseries.New(nil, nil) }

func (l *SilentLogger) GetMetricNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.names)
}

func (l *SilentLogger) Runs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.runs...)
}

// Close is a no-op: SilentLogger holds no resources beyond its own maps.
func (l *SilentLogger) Close() error { return nil }

// LastEntryLogger keeps only the most recent value per (run, metric)
// pair — useful for a live dashboard that only ever needs "now".
type LastEntryLogger struct {
	mu      sync.Mutex
	current map[string]map[string]float64 // run -> metric -> value
	lastRun string
	runs    []string
}

func NewLastEntryLogger() *LastEntryLogger {
	return &LastEntryLogger{current: make(map[string]map[string]float64)}
}

func (l *LastEntryLogger) Start(run string, _ timeframe.Timeframe) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.current[run]; !ok {
		l.current[run] = make(map[string]float64)
		l.runs = append(l.runs, run)
	}
}

func (l *LastEntryLogger) End(string) {}

func (l *LastEntryLogger) Log(metrics map[string]float64, _ time.Time, run string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := l.current[run]
	if !ok {
		bucket = make(map[string]float64)
		l.current[run] = bucket
		l.runs = append(l.runs, run)
	}
	for name, value := range metrics {
		bucket[name] = value
	}
	l.lastRun = run
}

func (l *LastEntryLogger) GetMetric(name string, run ...string) timeseries.TimeSeries {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.resolveRun(run)
	bucket, ok := l.current[r]
	if !ok {
		return timeseries.New(nil, nil)
	}
	value, ok := bucket[name]
	if !ok {
		return timeseries.New(nil, nil)
	}
	return timeseries.New(timeframe.Timeline{time.Now()}, []float64{value})
}

func (l *LastEntryLogger) resolveRun(run []string) string {
	if len(run) > 0 {
		return run[0]
	}
	return l.lastRun
}

func (l *LastEntryLogger) GetMetricNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make(map[string]struct{})
	for _, bucket := range l.current {
		for name := range bucket {
			names[name] = struct{}{}
		}
	}
	return sortedKeys(names)
}

func (l *LastEntryLogger) Runs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.runs...)
}

// Close is a no-op: LastEntryLogger holds no resources beyond its own maps.
func (l *LastEntryLogger) Close() error { return nil }

// MemoryLogger keeps the full time series per (run, metric) in memory —
// the default logger for interactive backtests and test assertions.
type MemoryLogger struct {
	mu      sync.Mutex
	series  map[string]map[string]*timeseries.TimeSeries // run -> metric -> accumulated series
	runs    []string
	lastRun string
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{series: make(map[string]map[string]*timeseries.TimeSeries)}
}

func (l *MemoryLogger) Start(run string, _ timeframe.Timeframe) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.series[run]; !ok {
		l.series[run] = make(map[string]*timeseries.TimeSeries)
		l.runs = append(l.runs, run)
	}
}

func (l *MemoryLogger) End(string) {}

func (l *MemoryLogger) Log(metrics map[string]float64, at time.Time, run string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := l.series[run]
	if !ok {
		bucket = make(map[string]*timeseries.TimeSeries)
		l.series[run] = bucket
		l.runs = append(l.runs, run)
	}
	for name, value := range metrics {
		ts, ok := bucket[name]
		if !ok {
			fresh := timeseries.New(timeframe.Timeline{at}, []float64{value})
			bucket[name] = &fresh
			continue
		}
		if len(ts.Times) > 0 && !at.After(ts.Times[len(ts.Times)-1]) {
			continue // non-monotonic timestamp for this metric; drop rather than violate TimeSeries's invariant
		}
		appended := timeseries.New(append(append(timeframe.Timeline(nil), ts.Times...), at), append(append([]float64(nil), ts.Values...), value))
		bucket[name] = &appended
	}
	l.lastRun = run
}

func (l *MemoryLogger) GetMetric(name string, run ...string) timeseries.TimeSeries {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.resolveRun(run)
	bucket, ok := l.series[r]
	if !ok {
		return timeseries.New(nil, nil)
	}
	ts, ok := bucket[name]
	if !ok {
		return timeseries.New(nil, nil)
	}
	return *ts
}

func (l *MemoryLogger) resolveRun(run []string) string {
	if len(run) > 0 {
		return run[0]
	}
	return l.lastRun
}

func (l *MemoryLogger) GetMetricNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make(map[string]struct{})
	for _, bucket := range l.series {
		for name := range bucket {
			names[name] = struct{}{}
		}
	}
	return sortedKeys(names)
}

func (l *MemoryLogger) Runs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.runs...)
}

// Close is a no-op: MemoryLogger holds no resources beyond its own maps.
func (l *MemoryLogger) Close() error { return nil }

// ConsoleLogger writes one formatted line per Log call to an io.Writer,
// in deterministic metric-name order. It delegates read-back to an
// embedded MemoryLogger so GetMetric still works.
type ConsoleLogger struct {
	*MemoryLogger
	w  io.Writer
	mu sync.Mutex
}

func NewConsoleLogger(w io.Writer) *ConsoleLogger {
	return &ConsoleLogger{MemoryLogger: NewMemoryLogger(), w: w}
}

func (l *ConsoleLogger) Log(metrics map[string]float64, at time.Time, run string) {
	l.MemoryLogger.Log(metrics, at, run)

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%s] %s", run, at.Format(time.RFC3339))
	for _, name := range names {
		fmt.Fprintf(l.w, " %s=%g", name, metrics[name])
	}
	fmt.Fprintln(l.w)
}

// InfoLogger forwards each Log call to a structured slog.Logger at Info
// level instead of a raw writer, and otherwise behaves like MemoryLogger.
type InfoLogger struct {
	*MemoryLogger
	logger *slog.Logger
}

func NewInfoLogger(logger *slog.Logger) *InfoLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &InfoLogger{MemoryLogger: NewMemoryLogger(), logger: logger.With("component", "journal")}
}

func (l *InfoLogger) Log(metrics map[string]float64, at time.Time, run string) {
	l.MemoryLogger.Log(metrics, at, run)

	args := make([]any, 0, len(metrics)*2+2)
	args = append(args, "run", run, "at", at)
	for name, value := range metrics {
		args = append(args, name, value)
	}
	l.logger.Info("metrics", args...)
}

// SkipWarmupLogger wraps another MetricsLogger and drops the first
// warmup Log calls per run — used to exclude an indicator's warm-up
// window (e.g. an EMA's first N bars) from reported metrics.
type SkipWarmupLogger struct {
	MetricsLogger
	warmup int

	mu    sync.Mutex
	count map[string]int
}

func NewSkipWarmupLogger(inner MetricsLogger, warmup int) *SkipWarmupLogger {
	return &SkipWarmupLogger{MetricsLogger: inner, warmup: warmup, count: make(map[string]int)}
}

func (l *SkipWarmupLogger) Start(run string, tf timeframe.Timeframe) {
	l.mu.Lock()
	l.count[run] = 0
	l.mu.Unlock()
	l.MetricsLogger.Start(run, tf)
}

func (l *SkipWarmupLogger) Log(metrics map[string]float64, at time.Time, run string) {
	l.mu.Lock()
	n := l.count[run]
	l.count[run] = n + 1
	l.mu.Unlock()
	if n < l.warmup {
		return
	}
	l.MetricsLogger.Log(metrics, at, run)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package search

import (
	"context"
	"time"

	"github.com/searchbridge/searchbridge/logging/logger"
)

// BenchmarkResult represents one backend's benchmark outcome. Either
// the timing fields are populated or Err carries the failure message.
type BenchmarkResult struct {
	TotalTime        time.Duration `json:"total_time"`
	AverageTime      time.Duration `json:"average_time"`
	QueriesPerSecond float64       `json:"queries_per_second"`
	Err              string        `json:"error,omitempty"`
}

// Benchmark runs iterations searches against every built-in adapter
// in turn and reports per-adapter timings.
//
// Backends run strictly sequentially so timings stay uncontaminated by
// cross-backend interference. A failing backend is recorded as
// {Err: message} and the remaining backends still run. The
// pre-benchmark active adapter is restored on completion, rebuilt from
// the configuration it was originally constructed with, even when
// individual backends fail.
func (m *Manager) Benchmark(ctx context.Context, collection, query string, iterations int) map[string]BenchmarkResult {
	if iterations < 1 {
		iterations = 1
	}

	previous := m.CurrentAdapterName()
	previousCfg := m.activeConfig()
	results := make(map[string]BenchmarkResult)

	for _, name := range BuiltinNames() {
		results[name] = m.benchmarkAdapter(ctx, name, collection, query, iterations)
	}

	if previous != "" {
		if err := m.SwitchAdapter(previous, previousCfg); err != nil {
			logger.WithAdapter(previous).WithError(err).Warn("restoring adapter after benchmark")
		}
	}

	return results
}

// benchmarkAdapter switches to name and times the search loop.
func (m *Manager) benchmarkAdapter(ctx context.Context, name, collection, query string, iterations int) BenchmarkResult {
	if err := m.SwitchAdapter(name, nil); err != nil {
		return BenchmarkResult{Err: err.Error()}
	}

	adapter := m.Adapter()
	opts := &Options{Limit: m.cfg.ClampLimit(0)}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := adapter.Search(ctx, collection, query, opts); err != nil {
			return BenchmarkResult{Err: err.Error()}
		}
	}
	total := time.Since(start)

	avg := total / time.Duration(iterations)
	qps := 0.0
	if total > 0 {
		qps = float64(iterations) / total.Seconds()
	}

	return BenchmarkResult{
		TotalTime:        total,
		AverageTime:      avg,
		QueriesPerSecond: qps,
	}
}

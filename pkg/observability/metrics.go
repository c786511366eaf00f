package observability

import (
	"sort"
	"sync"
	"time"
)

// InMemoryMetricsClient is a MetricsClient that accumulates counters in
// process memory. It backs the diagnostic surface of small deployments and
// doubles as the assertion target in tests.
type InMemoryMetricsClient struct {
	mu       sync.RWMutex
	counters map[string]float64
}

// NewMetricsClient creates an in-memory metrics client
func NewMetricsClient() *InMemoryMetricsClient {
	return &InMemoryMetricsClient{
		counters: make(map[string]float64),
	}
}

// RecordCacheOperation records the outcome of a cache operation as
// cache.<operation>.success / cache.<operation>.failure counters plus a
// latency counter in seconds.
func (m *InMemoryMetricsClient) RecordCacheOperation(operation string, success bool, durationSeconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters["cache."+operation+"."+outcome]++
	m.counters["cache."+operation+".seconds"] += durationSeconds
}

// RecordCounter increments a named counter by value. Labels are folded into
// the counter name, smallest thing that keeps distinct series distinct.
func (m *InMemoryMetricsClient) RecordCounter(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name+labelSuffix(labels)] += value
}

// RecordLatency records the latency of an operation in seconds
func (m *InMemoryMetricsClient) RecordLatency(operation string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[operation+".seconds"] += duration.Seconds()
}

// Counter returns the current value of a counter
func (m *InMemoryMetricsClient) Counter(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// Snapshot returns a copy of all counters
func (m *InMemoryMetricsClient) Snapshot() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]float64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

func labelSuffix(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	suffix := ""
	for _, k := range keys {
		suffix += "." + k + "=" + labels[k]
	}
	return suffix
}

// NoopMetricsClient discards all metrics
type NoopMetricsClient struct{}

// NewNoopMetricsClient creates a metrics client that discards everything
func NewNoopMetricsClient() *NoopMetricsClient {
	return &NoopMetricsClient{}
}

// RecordCacheOperation discards the measurement
func (m *NoopMetricsClient) RecordCacheOperation(operation string, success bool, durationSeconds float64) {
}

// RecordCounter discards the measurement
func (m *NoopMetricsClient) RecordCounter(name string, value float64, labels map[string]string) {}

// RecordLatency discards the measurement
func (m *NoopMetricsClient) RecordLatency(operation string, duration time.Duration) {}

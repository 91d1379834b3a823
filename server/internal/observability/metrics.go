package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates request counters for the stats endpoint. Counters are
// cheap atomics; the duration window takes a lock.
type Metrics struct {
	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	mu           sync.Mutex
	durations    []time.Duration
	maxDurations int
}

func NewMetrics() *Metrics {
	return &Metrics{maxDurations: 1024}
}

func (m *Metrics) observe(status int, duration time.Duration) {
	m.requestTotal.Add(1)
	if status >= 500 {
		m.requestFailed.Add(1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.durations) >= m.maxDurations {
		// Sliding window: drop the oldest half.
		m.durations = append(m.durations[:0], m.durations[len(m.durations)/2:]...)
	}
	m.durations = append(m.durations, duration)
}

// Snapshot is a point-in-time view of the collected metrics.
type Snapshot struct {
	RequestTotal  int64   `json:"request_total"`
	RequestFailed int64   `json:"request_failed"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	MaxLatencyMs  int64   `json:"max_latency_ms"`
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.durations) == 0 {
		return s
	}
	var total, max time.Duration
	for _, d := range m.durations {
		total += d
		if d > max {
			max = d
		}
	}
	s.AvgLatencyMs = float64(total.Milliseconds()) / float64(len(m.durations))
	s.MaxLatencyMs = max.Milliseconds()
	return s
}

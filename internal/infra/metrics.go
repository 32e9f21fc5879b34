package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	refreshesTotal     atomic.Uint64
	refreshFailures    atomic.Uint64
	upstreamCalls      atomic.Uint64
	coalescedRefreshes atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	streamClients   atomic.Int32
	upstreamHealthy atomic.Int32 // 1 = last fetch ok, 0 = failing or unknown
}

// NewMetrics returns a zeroed metrics set
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordUpstreamCall records one outbound request and its latency.
func (m *Metrics) RecordUpstreamCall(latency time.Duration) {
	m.upstreamCalls.Add(1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
}

// RecordRefresh records the outcome of a refresh attempt.
func (m *Metrics) RecordRefresh(err error) {
	m.refreshesTotal.Add(1)
	if err != nil {
		m.refreshFailures.Add(1)
		m.upstreamHealthy.Store(0)
		return
	}
	m.upstreamHealthy.Store(1)
}

// RecordCoalesced records a refresh caller that shared another caller's upstream call.
func (m *Metrics) RecordCoalesced() {
	m.coalescedRefreshes.Add(1)
}

// IncrementStreamClients increments connected stream clients by 1.
func (m *Metrics) IncrementStreamClients() {
	m.streamClients.Add(1)
}

// DecrementStreamClients decrements connected stream clients by 1.
func (m *Metrics) DecrementStreamClients() {
	m.streamClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	RefreshesTotal     uint64    `json:"refreshes_total"`
	RefreshFailures    uint64    `json:"refresh_failures"`
	UpstreamCalls      uint64    `json:"upstream_calls"`
	CoalescedRefreshes uint64    `json:"coalesced_refreshes"`
	AvgLatencyMs       float64   `json:"avg_upstream_latency_ms"`
	StreamClients      int32     `json:"stream_clients"`
	UpstreamHealthy    bool      `json:"upstream_healthy"`
	Timestamp          time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency float64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = float64(m.latencySumNs.Load()) / float64(count) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RefreshesTotal:     m.refreshesTotal.Load(),
		RefreshFailures:    m.refreshFailures.Load(),
		UpstreamCalls:      m.upstreamCalls.Load(),
		CoalescedRefreshes: m.coalescedRefreshes.Load(),
		AvgLatencyMs:       avgLatency,
		StreamClients:      m.streamClients.Load(),
		UpstreamHealthy:    m.upstreamHealthy.Load() == 1,
		Timestamp:          time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.refreshesTotal.Store(0)
	m.refreshFailures.Store(0)
	m.upstreamCalls.Store(0)
	m.coalescedRefreshes.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.streamClients.Store(0)
	m.upstreamHealthy.Store(0)
}

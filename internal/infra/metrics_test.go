package infra

import (
	"errors"
	"testing"
	"time"
)

func TestMetrics_RecordUpstreamCall(t *testing.T) {
	m := NewMetrics()

	m.RecordUpstreamCall(1 * time.Millisecond)
	m.RecordUpstreamCall(2 * time.Millisecond)
	m.RecordUpstreamCall(3 * time.Millisecond)

	snap := m.Snapshot()

	if snap.UpstreamCalls != 3 {
		t.Errorf("Expected 3 calls, got %d", snap.UpstreamCalls)
	}

	// Average latency: (1 + 2 + 3) / 3 = 2ms
	if snap.AvgLatencyMs != 2 {
		t.Errorf("Expected avg latency 2ms, got %v", snap.AvgLatencyMs)
	}
}

func TestMetrics_RecordRefresh(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.UpstreamHealthy {
		t.Error("Expected upstream unknown initially")
	}

	m.RecordRefresh(nil)
	snap = m.Snapshot()
	if !snap.UpstreamHealthy {
		t.Error("Expected upstream healthy after success")
	}

	m.RecordRefresh(errors.New("boom"))
	snap = m.Snapshot()
	if snap.UpstreamHealthy {
		t.Error("Expected upstream unhealthy after failure")
	}
	if snap.RefreshesTotal != 2 || snap.RefreshFailures != 1 {
		t.Errorf("Expected 2 refreshes / 1 failure, got %d / %d", snap.RefreshesTotal, snap.RefreshFailures)
	}
}

func TestMetrics_StreamClients(t *testing.T) {
	m := NewMetrics()

	m.IncrementStreamClients()
	m.IncrementStreamClients()
	m.IncrementStreamClients()

	snap := m.Snapshot()
	if snap.StreamClients != 3 {
		t.Errorf("Expected 3 clients, got %d", snap.StreamClients)
	}

	m.DecrementStreamClients()
	snap = m.Snapshot()
	if snap.StreamClients != 2 {
		t.Errorf("Expected 2 clients, got %d", snap.StreamClients)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()

	m.RecordUpstreamCall(time.Millisecond)
	m.RecordRefresh(errors.New("boom"))
	m.RecordCoalesced()
	m.IncrementStreamClients()

	m.Reset()
	snap := m.Snapshot()

	if snap.UpstreamCalls != 0 {
		t.Error("Expected 0 calls after reset")
	}
	if snap.RefreshFailures != 0 {
		t.Error("Expected 0 failures after reset")
	}
	if snap.CoalescedRefreshes != 0 {
		t.Error("Expected 0 coalesced refreshes after reset")
	}
	if snap.StreamClients != 0 {
		t.Error("Expected 0 clients after reset")
	}
}

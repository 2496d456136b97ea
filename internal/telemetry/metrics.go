package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects per-operation counters for the memory service.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	Creates   int64
	Gets      int64
	Lists     int64
	Searches  int64
	Updates   int64
	Deletes   int64
	Histories int64
	Failures  int64

	// Histogram (simplified)
	requestLatencies []time.Duration

	// Exporter (optional)
	exporter MetricsExporter
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		requestLatencies: make([]time.Duration, 0, 1000),
	}
}

// IncCreates increments the create counter.
func (m *Metrics) IncCreates() { atomic.AddInt64(&m.Creates, 1) }

// IncGets increments the get-by-id counter.
func (m *Metrics) IncGets() { atomic.AddInt64(&m.Gets, 1) }

// IncLists increments the list-by-owner counter.
func (m *Metrics) IncLists() { atomic.AddInt64(&m.Lists, 1) }

// IncSearches increments the search counter.
func (m *Metrics) IncSearches() { atomic.AddInt64(&m.Searches, 1) }

// IncUpdates increments the update counter.
func (m *Metrics) IncUpdates() { atomic.AddInt64(&m.Updates, 1) }

// IncDeletes increments the delete counter.
func (m *Metrics) IncDeletes() { atomic.AddInt64(&m.Deletes, 1) }

// IncHistories increments the history counter.
func (m *Metrics) IncHistories() { atomic.AddInt64(&m.Histories, 1) }

// IncFailures increments the failed-operation counter.
func (m *Metrics) IncFailures() { atomic.AddInt64(&m.Failures, 1) }

// RecordRequestLatency records one request's wall-clock duration.
func (m *Metrics) RecordRequestLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLatencies = append(m.requestLatencies, d)
}

// GetSummary returns a summary of collected metrics.
func (m *Metrics) GetSummary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := map[string]interface{}{
		"creates":   atomic.LoadInt64(&m.Creates),
		"gets":      atomic.LoadInt64(&m.Gets),
		"lists":     atomic.LoadInt64(&m.Lists),
		"searches":  atomic.LoadInt64(&m.Searches),
		"updates":   atomic.LoadInt64(&m.Updates),
		"deletes":   atomic.LoadInt64(&m.Deletes),
		"histories": atomic.LoadInt64(&m.Histories),
		"failures":  atomic.LoadInt64(&m.Failures),
	}

	if len(m.requestLatencies) > 0 {
		var total time.Duration
		for _, d := range m.requestLatencies {
			total += d
		}
		summary["avg_request_latency_ms"] = total.Milliseconds() / int64(len(m.requestLatencies))
	}

	return summary
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	atomic.StoreInt64(&m.Creates, 0)
	atomic.StoreInt64(&m.Gets, 0)
	atomic.StoreInt64(&m.Lists, 0)
	atomic.StoreInt64(&m.Searches, 0)
	atomic.StoreInt64(&m.Updates, 0)
	atomic.StoreInt64(&m.Deletes, 0)
	atomic.StoreInt64(&m.Histories, 0)
	atomic.StoreInt64(&m.Failures, 0)

	m.requestLatencies = m.requestLatencies[:0]
}

// SetExporter attaches a metrics exporter.
func (m *Metrics) SetExporter(e MetricsExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporter = e
}

// Flush exports the current metrics snapshot with the given event label.
func (m *Metrics) Flush(event string, labels map[string]string) {
	m.mu.RLock()
	exporter := m.exporter
	m.mu.RUnlock()

	if exporter == nil {
		return
	}

	snapshot := MetricsSnapshot{
		Timestamp: time.Now(),
		Event:     event,
		Metrics:   m.GetSummary(),
		Labels:    labels,
	}
	// Best-effort export.
	_ = exporter.Export(snapshot)
}

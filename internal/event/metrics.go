package event

import "sync/atomic"

// Metrics counts payload-creation outcomes. One registry is owned by the
// process and shared by reference; counters are atomic because payloads for
// different actors may be built concurrently.
type Metrics struct {
	total       atomic.Int64
	multiTarget atomic.Int64
	legacy      atomic.Int64
	fallback    atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	TotalPayloads       int64 `json:"totalPayloads"`
	MultiTargetPayloads int64 `json:"multiTargetPayloads"`
	LegacyPayloads      int64 `json:"legacyPayloads"`
	FallbackPayloads    int64 `json:"fallbackPayloads"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		TotalPayloads:       m.total.Load(),
		MultiTargetPayloads: m.multiTarget.Load(),
		LegacyPayloads:      m.legacy.Load(),
		FallbackPayloads:    m.fallback.Load(),
	}
}

func (m *Metrics) countMultiTarget() {
	if m != nil {
		m.total.Add(1)
		m.multiTarget.Add(1)
	}
}

func (m *Metrics) countLegacy() {
	if m != nil {
		m.total.Add(1)
		m.legacy.Add(1)
	}
}

func (m *Metrics) countFallback() {
	if m != nil {
		m.total.Add(1)
		m.fallback.Add(1)
	}
}

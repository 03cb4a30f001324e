package engine

import (
	"sync/atomic"
	"time"
)

// ingestMetrics counts what flowed through the session. Written by the
// ingestion loop, read by snapshots, so everything is atomic.
type ingestMetrics struct {
	records   atomic.Uint64
	dropped   atomic.Uint64
	synthetic atomic.Uint64

	firstIngestNs atomic.Int64
	lastIngestNs  atomic.Int64
}

func newIngestMetrics() *ingestMetrics {
	return &ingestMetrics{}
}

func (m *ingestMetrics) observeSample(now time.Time, synthetic bool) {
	nowNs := now.UnixNano()
	m.firstIngestNs.CompareAndSwap(0, nowNs)
	m.lastIngestNs.Store(nowNs)
	m.records.Add(1)
	if synthetic {
		m.synthetic.Add(1)
	}
}

func (m *ingestMetrics) observeDrop() {
	m.dropped.Add(1)
}

// Stats is a point-in-time copy of the ingest counters.
type Stats struct {
	Records   uint64
	Dropped   uint64
	Synthetic uint64
	AvgRPS    uint64
}

func (m *ingestMetrics) snapshot() Stats {
	records := m.records.Load()

	avgRps := uint64(0)
	firstNs := m.firstIngestNs.Load()
	lastNs := m.lastIngestNs.Load()
	if firstNs != 0 && lastNs > firstNs {
		active := time.Duration(lastNs - firstNs)
		avgRps = uint64(float64(records)/active.Seconds() + 0.5)
	}

	return Stats{
		Records:   records,
		Dropped:   m.dropped.Load(),
		Synthetic: m.synthetic.Load(),
		AvgRPS:    avgRps,
	}
}

package observability

import (
	"sync/atomic"
	"time"
)

// DeliveryMetrics counts order confirmation deliveries in the worker process.
type DeliveryMetrics struct {
	received  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	retried   atomic.Uint64
	dropped   atomic.Uint64

	// nanoseconds
	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewDeliveryMetrics() *DeliveryMetrics {
	return &DeliveryMetrics{}
}

func (m *DeliveryMetrics) IncReceived()  { m.received.Add(1) }
func (m *DeliveryMetrics) IncDelivered() { m.delivered.Add(1) }
func (m *DeliveryMetrics) IncFailed()    { m.failed.Add(1) }
func (m *DeliveryMetrics) IncRetried()   { m.retried.Add(1) }
func (m *DeliveryMetrics) IncDropped()   { m.dropped.Add(1) }

func (m *DeliveryMetrics) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	for {
		curr := m.durationMax.Load()
		if ns <= curr {
			return
		}
		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type DeliverySnapshot struct {
	Received        uint64        `json:"received"`
	Delivered       uint64        `json:"delivered"`
	Failed          uint64        `json:"failed"`
	Retried         uint64        `json:"retried"`
	Dropped         uint64        `json:"dropped"`
	AverageDuration time.Duration `json:"averageDurationNs"`
	MaxDuration     time.Duration `json:"maxDurationNs"`
}

func (m *DeliveryMetrics) Snapshot() DeliverySnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()

	var avg time.Duration
	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return DeliverySnapshot{
		Received:        m.received.Load(),
		Delivered:       m.delivered.Load(),
		Failed:          m.failed.Load(),
		Retried:         m.retried.Load(),
		Dropped:         m.dropped.Load(),
		AverageDuration: avg,
		MaxDuration:     time.Duration(m.durationMax.Load()),
	}
}

package authkit

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram. The IDs are stable
// across a process lifetime and index directly into the metric storage.
type MetricID uint16

const (
	// MetricRegisterSuccess counts accounts created by Register.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected because the
	// email was already taken.
	MetricRegisterDuplicate
	// MetricRegisterFailure counts registrations that failed for any other
	// reason (hashing, store, token issuance).
	MetricRegisterFailure
	// MetricLoginSuccess counts successful logins, social or password.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected logins, including unknown emails
	// and bad passwords.
	MetricLoginFailure
	// MetricVerifyEmailSuccess counts accepted verification tokens,
	// including repeats against an already verified account.
	MetricVerifyEmailSuccess
	// MetricVerifyEmailFailure counts rejected verification tokens.
	MetricVerifyEmailFailure
	// MetricResetRequestSuccess counts reset challenges minted and mailed.
	MetricResetRequestSuccess
	// MetricResetRequestFailure counts reset requests that failed,
	// including unknown emails and mail delivery failures.
	MetricResetRequestFailure
	// MetricResetConfirmSuccess counts passwords replaced through a reset
	// token.
	MetricResetConfirmSuccess
	// MetricResetConfirmFailure counts reset confirmations rejected for an
	// invalid, expired, or spent token.
	MetricResetConfirmFailure
	// MetricMailEnqueued counts mail jobs handed to the background
	// dispatcher.
	MetricMailEnqueued
	// MetricMailDropped counts mail jobs dropped because the dispatcher
	// buffer was full.
	MetricMailDropped
	// MetricValidateLatency is the access-token validation latency
	// histogram.
	MetricValidateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each slot on its own cache line so hot counters do
// not false-share under concurrent increments.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's counters and histograms. The write path is
// atomic and allocation-free; a nil or disabled Metrics ignores all writes.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all metric values, keyed by
// [MetricID]. Histogram buckets are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds metric storage according to cfg. Latency histograms
// are only collected when counters are enabled too.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counter writes are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency observations are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter. Unknown IDs and disabled metrics are no-ops.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only [MetricValidateLatency] carries a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricValidateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value, or 0 for disabled metrics.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and histogram buckets. The maps are owned
// by the caller.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		s.Histograms[MetricValidateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

package pump

import (
	"sync/atomic"
)

// PumpMetrics contains atomic metrics for a pump link.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type PumpMetrics struct {
	// RequestCount indicates the number of requests sent.
	RequestCount atomic.Uint64
	// AlarmCount indicates the number of device alarms received.
	AlarmCount atomic.Uint64
	// TimeoutCount indicates the number of read or run timeouts.
	TimeoutCount atomic.Uint64
}

func (m *PumpMetrics) incRequestCount() {
	m.RequestCount.Add(1)
}

func (m *PumpMetrics) incAlarmCount() {
	m.AlarmCount.Add(1)
}

func (m *PumpMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}

package grbl

import (
	"sync/atomic"
)

// ControllerMetrics contains atomic metrics for a controller link.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ControllerMetrics struct {
	// CommandCount indicates the number of command lines sent.
	CommandCount atomic.Uint64
	// PollCount indicates the number of realtime status queries issued.
	PollCount atomic.Uint64
	// RetryCount indicates the number of feed-rate auto-corrections.
	RetryCount atomic.Uint64
	// TimeoutCount indicates the number of command or read timeouts.
	TimeoutCount atomic.Uint64
	// AlarmCount indicates the number of ALARM reports received.
	AlarmCount atomic.Uint64
}

func (m *ControllerMetrics) incCommandCount() {
	m.CommandCount.Add(1)
}

func (m *ControllerMetrics) incPollCount() {
	m.PollCount.Add(1)
}

func (m *ControllerMetrics) incRetryCount() {
	m.RetryCount.Add(1)
}

func (m *ControllerMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}

func (m *ControllerMetrics) incAlarmCount() {
	m.AlarmCount.Add(1)
}

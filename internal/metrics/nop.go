package metrics

import "github.com/xinjiayu/rxbridge/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. It is the default when no collector is
// configured.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordSubscription discards the subscription metric.
func (n *NopMetrics) RecordSubscription(_ string) {}

// RecordRejected discards the rejected subscription metric.
func (n *NopMetrics) RecordRejected(_ string) {}

// RecordDisposal discards the disposal metric.
func (n *NopMetrics) RecordDisposal(_ string) {}

// RecordEvent discards the event metric.
func (n *NopMetrics) RecordEvent(_ string, _ string) {}

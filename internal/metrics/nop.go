// Package metrics provides types.MetricsCollector implementations: a no-op
// default and a Prometheus-backed collector.
package metrics

import "github.com/Black-Forest-Community/slotlist-reboot/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// EngineMetrics implementation

// RecordRegistration discards the registration outcome metric.
func (n *NopMetrics) RecordRegistration(_ /* outcome */ string) {
	// No-op
}

// RecordAssignment discards the assignment metric.
func (n *NopMetrics) RecordAssignment(_ /* kind */ string) {
	// No-op
}

// RecordUnassignment discards the unassignment metric.
func (n *NopMetrics) RecordUnassignment(_ /* reason */ string) {
	// No-op
}

// RecordSlotStateTransition discards the slot state transition metric.
func (n *NopMetrics) RecordSlotStateTransition(_ /* from */, _ /* to */ types.SlotState) {
	// No-op
}

// QueueMetrics implementation

// RecordQueueDepth discards the queue depth metric.
func (n *NopMetrics) RecordQueueDepth(_ /* depth */ int) {
	// No-op
}

// LockMetrics implementation

// RecordLockWait discards the lock wait metric.
func (n *NopMetrics) RecordLockWait(_ /* seconds */ float64) {
	// No-op
}

// RecordLockTimeout discards the lock timeout metric.
func (n *NopMetrics) RecordLockTimeout() {
	// No-op
}

// EventMetrics implementation

// RecordEventEmitted discards the emitted event metric.
func (n *NopMetrics) RecordEventEmitted(_ /* kind */ types.EventKind) {
	// No-op
}

// RecordEventDropped discards the dropped event metric.
func (n *NopMetrics) RecordEventDropped(_ /* reason */ string) {
	// No-op
}

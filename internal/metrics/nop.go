// Package metrics provides MetricsCollector implementations for the
// observable library.
package metrics

import "github.com/jbattermann/observable/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// DictionaryMetrics implementation

// RecordMutation discards the mutation metric.
func (n *NopMetrics) RecordMutation(_ /* op */ string) {
	// No-op
}

// RecordBatch discards the batch outcome metric.
func (n *NopMetrics) RecordBatch(_ /* op */ string, _ /* requested */, _ /* affected */ int, _ /* coalesced */ bool) {
	// No-op
}

// RecordSize discards the size gauge.
func (n *NopMetrics) RecordSize(_ /* count */ int) {
	// No-op
}

// BroadcastMetrics implementation

// RecordEmit discards the emission metric.
func (n *NopMetrics) RecordEmit(_ /* kind */ string) {
	// No-op
}

// RecordDroppedNotification discards the dropped-notification metric.
func (n *NopMetrics) RecordDroppedNotification(_ /* channel */ string) {
	// No-op
}

// RecordObserverPanic discards the observer-panic metric.
func (n *NopMetrics) RecordObserverPanic(_ /* channel */ string) {
	// No-op
}

// RecordSubscriberCount discards the subscriber gauge.
func (n *NopMetrics) RecordSubscriberCount(_ /* channel */ string, _ /* count */ int) {
	// No-op
}

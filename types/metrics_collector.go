package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called from concurrent mutators and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	DictionaryMetrics
	BroadcastMetrics
}

// DictionaryMetrics defines metrics for dictionary-level operations.
type DictionaryMetrics interface {
	// RecordMutation records one completed mutating operation.
	//
	// Parameters:
	//   - op: Operation name ("add", "replace", "remove", "clear", ...)
	RecordMutation(op string)

	// RecordBatch records the outcome of a bulk operation.
	//
	// Parameters:
	//   - op: Operation name ("addRange", "removeRange", ...)
	//   - requested: Number of items the caller asked for
	//   - affected: Number of items actually mutated
	//   - coalesced: true if the batch was collapsed into a single Reset
	RecordBatch(op string, requested, affected int, coalesced bool)

	// RecordSize sets the current entry count (gauge metric).
	RecordSize(count int)
}

// BroadcastMetrics defines metrics for notification delivery.
type BroadcastMetrics interface {
	// RecordEmit records one change emission by kind.
	//
	// Parameters:
	//   - kind: Change kind string ("ItemAdded", "Reset", ...)
	RecordEmit(kind string)

	// RecordDroppedNotification records a notification dropped because a
	// subscriber's channel buffer was full.
	//
	// Parameters:
	//   - channel: Delivery surface name ("changes", "count", ...)
	RecordDroppedNotification(channel string)

	// RecordObserverPanic records a subscriber panic during delivery.
	RecordObserverPanic(channel string)

	// RecordSubscriberCount sets the current subscriber count for a channel
	// (gauge metric).
	RecordSubscriberCount(channel string, count int)
}

package observable

import "github.com/jbattermann/observable/types"

// Option configures a Dictionary with optional dependencies.
type Option[K comparable, V any] func(*dictOptions[K, V])

// dictOptions holds optional Dictionary configuration.
type dictOptions[K comparable, V any] struct {
	logger     types.Logger
	metrics    types.MetricsCollector
	scheduler  types.Scheduler
	valueEqual func(a, b V) bool
	items      []types.KeyValuePair[K, V]
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	dict, err := observable.New[int, string](nil, observable.WithLogger[int, string](logger))
func WithLogger[K comparable, V any](logger types.Logger) Option[K, V] {
	return func(o *dictOptions[K, V]) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
func WithMetrics[K comparable, V any](metrics types.MetricsCollector) Option[K, V] {
	return func(o *dictOptions[K, V]) {
		o.metrics = metrics
	}
}

// WithScheduler sets the notification scheduler used for the legacy callback
// events (property-changed, collection-changed, observer-error handlers).
//
// The default is scheduler.Inline: callbacks run synchronously on the
// mutating caller's goroutine. A deferring scheduler such as
// scheduler.NewSerial() makes callback delivery asynchronous while
// preserving emission order.
//
// Parameters:
//   - s: Scheduler implementation
//
// Returns:
//   - Option: Functional option for New
func WithScheduler[K comparable, V any](s types.Scheduler) Option[K, V] {
	return func(o *dictOptions[K, V]) {
		o.scheduler = s
	}
}

// WithValueComparer sets the value-equality comparer used to decide whether
// an update actually changed a value (and, for pair-wise removal, whether
// the stored value matches).
//
// The default comparer is reflect.DeepEqual.
//
// The comparer may run while the store holds an internal lock on the entry's
// bucket; it must be fast and must not call back into the dictionary.
//
// Parameters:
//   - equal: Value equality function
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	dict, err := observable.New[string, *Session](nil,
//	    observable.WithValueComparer[string, *Session](func(a, b *Session) bool { return a == b }))
func WithValueComparer[K comparable, V any](equal func(a, b V) bool) Option[K, V] {
	return func(o *dictOptions[K, V]) {
		o.valueEqual = equal
	}
}

// WithItems seeds the dictionary with initial key/value pairs.
//
// The items are stored and wired into the property-change forwarder before
// New returns; no change notifications are emitted for them. Duplicate or
// nil keys cause New to fail.
//
// Parameters:
//   - items: Initial entries
//
// Returns:
//   - Option: Functional option for New
func WithItems[K comparable, V any](items []types.KeyValuePair[K, V]) Option[K, V] {
	return func(o *dictOptions[K, V]) {
		o.items = items
	}
}

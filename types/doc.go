// Package types provides core type definitions and interfaces for the
// observable library.
//
// This package contains shared types that are used across multiple packages in
// the library. By keeping these types in a separate package, we avoid import
// cycles between the main observable package and its internal implementations.
//
// Key types:
//   - Change: One semantic dictionary mutation (added, removed, replaced, ...)
//   - CollectionChange: Collection-shaped projection of a Change
//   - ObservableItem: Capability implemented by keys/values that publish
//     property changes
//   - ObserverError: A packaged subscriber panic with a handled flag
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
//   - Scheduler: Notification delivery context
package types

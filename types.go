package observable

import "github.com/jbattermann/observable/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the
// library's core types and interfaces. It uses type aliases to re-export
// definitions from the `types` subpackage, which contains the actual
// implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `observable`
// package, while still providing a convenient `observable.Change`,
// `observable.Logger`, etc. for users.
type (
	Change[K comparable, V any]           = types.Change[K, V]
	ChangeKind                            = types.ChangeKind
	CollectionChange[K comparable, V any] = types.CollectionChange[K, V]
	CollectionChangeKind                  = types.CollectionChangeKind
	KeyValuePair[K comparable, V any]     = types.KeyValuePair[K, V]
)

// Re-export interfaces and callback types from the types package for
// convenience.
type (
	Logger              = types.Logger
	MetricsCollector    = types.MetricsCollector
	ObservableItem      = types.ObservableItem
	ObserverError       = types.ObserverError
	PropertyChangedFunc = types.PropertyChangedFunc
	Scheduler           = types.Scheduler
)

// Re-export the structured bulk-failure error types.
type (
	DuplicateKeysError[K comparable] = types.DuplicateKeysError[K]
	MissingKeysError[K comparable]   = types.MissingKeysError[K]
)

// Re-export ChangeKind constants from the types package.
const (
	ChangeItemAdded         = types.ChangeItemAdded
	ChangeItemRemoved       = types.ChangeItemRemoved
	ChangeItemKeyChanged    = types.ChangeItemKeyChanged
	ChangeItemValueChanged  = types.ChangeItemValueChanged
	ChangeItemValueReplaced = types.ChangeItemValueReplaced
	ChangeReset             = types.ChangeReset
)

// Re-export CollectionChangeKind constants from the types package.
const (
	CollectionItemAdded   = types.CollectionItemAdded
	CollectionItemRemoved = types.CollectionItemRemoved
	CollectionItemChanged = types.CollectionItemChanged
	CollectionReset       = types.CollectionReset
)

// Re-export the well-known legacy property names.
const (
	PropertyCount   = types.PropertyCount
	PropertyIndexer = types.PropertyIndexer
)

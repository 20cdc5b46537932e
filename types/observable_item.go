package types

// Well-known property names used by the legacy property-changed surface.
const (
	// PropertyCount is signalled after every change that affects the number
	// of entries in the dictionary.
	PropertyCount = "Count"

	// PropertyIndexer is signalled after every change at all, mirroring the
	// indexer pseudo-property convention of data-binding frameworks.
	PropertyIndexer = "Item[]"
)

// PropertyChangedFunc is invoked by an ObservableItem when one of its
// properties changes.
//
// An empty propertyName means "everything may have changed" and causes the
// dictionary to escalate the notification to a full Reset.
type PropertyChangedFunc func(sender any, propertyName string)

// ObservableItem is the capability implemented by keys or values that publish
// in-place property changes.
//
// The dictionary queries this capability exactly once, when a key or value
// enters the dictionary, and stores the returned cancel handle alongside the
// entry. The handle is invoked synchronously when the entry leaves the
// dictionary (removal, replacement or clear), so no property change of a
// departed item ever reaches the dictionary's subscribers, even if external
// code keeps mutating the item.
//
// Implementations must tolerate cancel being called more than once and must
// stop delivering callbacks as soon as cancel returns.
type ObservableItem interface {
	// SubscribePropertyChanged registers fn to be called on every property
	// change of the item and returns a cancel function that unregisters it.
	SubscribePropertyChanged(fn PropertyChangedFunc) (cancel func())
}

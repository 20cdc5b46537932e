package types

import "fmt"

// CollectionChangeKind identifies the shape of a collection-level change.
//
// Collection changes are the flattened, binding-friendly projection of
// dictionary changes: consumers that treat the dictionary as a plain
// collection of key/value pairs only need to know whether an item appeared,
// disappeared, changed in place, or whether everything must be re-read.
type CollectionChangeKind int32

const (
	// CollectionItemAdded indicates an item was added to the collection.
	CollectionItemAdded CollectionChangeKind = iota

	// CollectionItemRemoved indicates an item was removed from the collection.
	CollectionItemRemoved

	// CollectionItemChanged indicates an item changed in place, including
	// value replacements and per-item property changes.
	CollectionItemChanged

	// CollectionReset indicates the whole collection must be re-read.
	CollectionReset
)

// String returns the string representation of the collection change kind.
func (k CollectionChangeKind) String() string {
	switch k {
	case CollectionItemAdded:
		return "ItemAdded"
	case CollectionItemRemoved:
		return "ItemRemoved"
	case CollectionItemChanged:
		return "ItemChanged"
	case CollectionReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// CollectionChange is the collection-shaped projection of one dictionary
// Change.
type CollectionChange[K comparable, V any] struct {
	// Kind is the collection-level shape of the change.
	Kind CollectionChangeKind

	// Item is the affected key/value pair. Zero for CollectionReset.
	Item KeyValuePair[K, V]
}

// String returns a short human-readable description of the change.
func (c CollectionChange[K, V]) String() string {
	if c.Kind == CollectionReset {
		return c.Kind.String()
	}

	return fmt.Sprintf("%s(%s)", c.Kind, c.Item)
}

// ToCollectionChanges projects a dictionary Change into its collection-shaped
// descriptors.
//
// The mapping is:
//   - ChangeItemAdded → one CollectionItemAdded
//   - ChangeItemRemoved → one CollectionItemRemoved
//   - ChangeItemKeyChanged / ChangeItemValueChanged / ChangeItemValueReplaced
//     → one CollectionItemChanged
//   - ChangeReset → one CollectionReset
//
// Returns:
//   - []CollectionChange: The projected descriptors, nil for unknown kinds
func (c Change[K, V]) ToCollectionChanges() []CollectionChange[K, V] {
	pair := KeyValuePair[K, V]{Key: c.Key, Value: c.Value}

	switch c.Kind {
	case ChangeItemAdded:
		return []CollectionChange[K, V]{{Kind: CollectionItemAdded, Item: pair}}
	case ChangeItemRemoved:
		return []CollectionChange[K, V]{{Kind: CollectionItemRemoved, Item: pair}}
	case ChangeItemKeyChanged, ChangeItemValueChanged, ChangeItemValueReplaced:
		return []CollectionChange[K, V]{{Kind: CollectionItemChanged, Item: pair}}
	case ChangeReset:
		return []CollectionChange[K, V]{{Kind: CollectionReset}}
	default:
		return nil
	}
}

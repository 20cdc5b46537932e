package types

import (
	"fmt"
	"reflect"
)

// ChangeKind identifies the semantic kind of a dictionary change.
type ChangeKind int32

const (
	// ChangeItemAdded indicates a key/value pair was added.
	ChangeItemAdded ChangeKind = iota

	// ChangeItemRemoved indicates a key/value pair was removed.
	ChangeItemRemoved

	// ChangeItemKeyChanged indicates a property of a key changed in place.
	ChangeItemKeyChanged

	// ChangeItemValueChanged indicates a property of a value changed in place.
	ChangeItemValueChanged

	// ChangeItemValueReplaced indicates the value for a key was replaced.
	ChangeItemValueReplaced

	// ChangeReset indicates prior incremental knowledge must be discarded
	// and the dictionary re-read in full.
	ChangeReset
)

// String returns the string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeItemAdded:
		return "ItemAdded"
	case ChangeItemRemoved:
		return "ItemRemoved"
	case ChangeItemKeyChanged:
		return "ItemKeyChanged"
	case ChangeItemValueChanged:
		return "ItemValueChanged"
	case ChangeItemValueReplaced:
		return "ItemValueReplaced"
	case ChangeReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// Change describes one semantic dictionary mutation.
//
// A Change is constructed fresh for every observable mutation, is immutable
// thereafter, and is not retained by the dictionary. Which fields are
// meaningful depends on Kind:
//
//   - ChangeItemAdded / ChangeItemRemoved: Key and Value
//   - ChangeItemKeyChanged: Key and PropertyName (Value is the zero value)
//   - ChangeItemValueChanged: Key, Value and PropertyName
//   - ChangeItemValueReplaced: Key, Value (new) and ReplacedValue (old)
//   - ChangeReset: no fields; all carry their zero values
//
// Use the New* constructors rather than composite literals; they enforce the
// kind-specific field combinations and panic on programmer error.
type Change[K comparable, V any] struct {
	// Kind is the semantic kind of this change.
	Kind ChangeKind

	// Key is the affected key. Zero for ChangeReset.
	Key K

	// Value is the current/new value for the key, if the kind carries one.
	Value V

	// ReplacedValue is the overwritten value. Only meaningful for
	// ChangeItemValueReplaced.
	ReplacedValue V

	// PropertyName is the name of the changed property for
	// ChangeItemKeyChanged and ChangeItemValueChanged. An empty property
	// name conventionally means "everything may have changed".
	PropertyName string
}

// NewItemAdded creates a Change describing an added key/value pair.
//
// Panics if key is a nil pointer or nil interface.
func NewItemAdded[K comparable, V any](key K, value V) Change[K, V] {
	mustUsableKey[K, V](ChangeItemAdded, key)

	return Change[K, V]{Kind: ChangeItemAdded, Key: key, Value: value}
}

// NewItemRemoved creates a Change describing a removed key/value pair.
//
// Panics if key is a nil pointer or nil interface.
func NewItemRemoved[K comparable, V any](key K, value V) Change[K, V] {
	mustUsableKey[K, V](ChangeItemRemoved, key)

	return Change[K, V]{Kind: ChangeItemRemoved, Key: key, Value: value}
}

// NewItemKeyChanged creates a Change describing an in-place property change
// of a key currently present in the dictionary.
//
// An empty propertyName means the whole key may have changed.
//
// Panics if key is a nil pointer or nil interface.
func NewItemKeyChanged[K comparable, V any](key K, propertyName string) Change[K, V] {
	mustUsableKey[K, V](ChangeItemKeyChanged, key)

	return Change[K, V]{Kind: ChangeItemKeyChanged, Key: key, PropertyName: propertyName}
}

// NewItemValueChanged creates a Change describing an in-place property change
// of a value currently present in the dictionary.
//
// Panics if key is a nil pointer or nil interface.
func NewItemValueChanged[K comparable, V any](key K, value V, propertyName string) Change[K, V] {
	mustUsableKey[K, V](ChangeItemValueChanged, key)

	return Change[K, V]{Kind: ChangeItemValueChanged, Key: key, Value: value, PropertyName: propertyName}
}

// NewItemValueReplaced creates a Change describing a value replacement.
//
// Parameters:
//   - key: The key whose value was replaced
//   - value: The new value now stored for the key
//   - replacedValue: The value that was overwritten
//
// Panics if key is a nil pointer or nil interface.
func NewItemValueReplaced[K comparable, V any](key K, value, replacedValue V) Change[K, V] {
	mustUsableKey[K, V](ChangeItemValueReplaced, key)

	return Change[K, V]{Kind: ChangeItemValueReplaced, Key: key, Value: value, ReplacedValue: replacedValue}
}

// NewReset creates a Change signalling a full reset.
func NewReset[K comparable, V any]() Change[K, V] {
	return Change[K, V]{Kind: ChangeReset}
}

// Validate checks the kind-specific field combination of a Change.
//
// The New* constructors always produce valid changes; Validate exists for
// changes built as composite literals, e.g. by test code or adapters.
//
// Returns:
//   - error: ErrInvalidChange (wrapped with detail) if the combination is
//     invalid for the change kind, nil otherwise
func (c Change[K, V]) Validate() error {
	switch c.Kind {
	case ChangeReset:
		if !isZero(c.Key) || !isZero(c.Value) || !isZero(c.ReplacedValue) || c.PropertyName != "" {
			return fmt.Errorf("%w: %s must not carry key, value or property fields", ErrInvalidChange, c.Kind)
		}
	case ChangeItemAdded, ChangeItemRemoved:
		if isNil(c.Key) {
			return fmt.Errorf("%w: %s requires a non-nil key", ErrInvalidChange, c.Kind)
		}
		if !isZero(c.ReplacedValue) || c.PropertyName != "" {
			return fmt.Errorf("%w: %s must not carry a replaced value or property name", ErrInvalidChange, c.Kind)
		}
	case ChangeItemKeyChanged, ChangeItemValueChanged:
		if isNil(c.Key) {
			return fmt.Errorf("%w: %s requires a non-nil key", ErrInvalidChange, c.Kind)
		}
		if !isZero(c.ReplacedValue) {
			return fmt.Errorf("%w: %s must not carry a replaced value", ErrInvalidChange, c.Kind)
		}
	case ChangeItemValueReplaced:
		if isNil(c.Key) {
			return fmt.Errorf("%w: %s requires a non-nil key", ErrInvalidChange, c.Kind)
		}
		if c.PropertyName != "" {
			return fmt.Errorf("%w: %s must not carry a property name", ErrInvalidChange, c.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown change kind %d", ErrInvalidChange, int32(c.Kind))
	}

	return nil
}

// String returns a short human-readable description of the change.
func (c Change[K, V]) String() string {
	switch c.Kind {
	case ChangeReset:
		return c.Kind.String()
	case ChangeItemKeyChanged, ChangeItemValueChanged:
		return fmt.Sprintf("%s(key=%v, property=%q)", c.Kind, c.Key, c.PropertyName)
	case ChangeItemValueReplaced:
		return fmt.Sprintf("%s(key=%v, value=%v, replaced=%v)", c.Kind, c.Key, c.Value, c.ReplacedValue)
	default:
		return fmt.Sprintf("%s(key=%v, value=%v)", c.Kind, c.Key, c.Value)
	}
}

// mustUsableKey panics when a constructor receives a nil key. A nil key is a
// contract violation, never a recoverable condition.
func mustUsableKey[K comparable, V any](kind ChangeKind, key K) {
	if isNil(key) {
		panic(fmt.Sprintf("observable: %s change constructed with nil key", kind))
	}
}

// isNil reports whether v is a nil pointer, interface or channel.
//
// Value types (ints, strings, structs) are never nil; their zero values are
// legitimate keys.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// isZero reports whether v is the zero value of its type.
func isZero(v any) bool {
	if v == nil {
		return true
	}

	return reflect.ValueOf(v).IsZero()
}

package types

import "fmt"

// KeyValuePair is one dictionary entry, used for bulk operations, snapshots
// and collection-shaped change notifications.
type KeyValuePair[K comparable, V any] struct {
	Key   K
	Value V
}

// String returns the pair formatted as "key=value".
func (p KeyValuePair[K, V]) String() string {
	return fmt.Sprintf("%v=%v", p.Key, p.Value)
}

package testing

import (
	"sync"

	"github.com/jbattermann/observable/types"
)

// Item is an observable test double. It implements types.ObservableItem and
// lets tests raise property changes on demand via Raise.
//
// Item is safe for concurrent use.
type Item struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]types.PropertyChangedFunc

	// Name distinguishes items in assertions; it has no behavioral effect.
	Name string
}

var _ types.ObservableItem = (*Item)(nil)

// NewItem creates an observable test double.
func NewItem(name string) *Item {
	return &Item{
		Name: name,
		subs: make(map[int]types.PropertyChangedFunc),
	}
}

// SubscribePropertyChanged registers fn; the returned cancel is idempotent.
func (i *Item) SubscribePropertyChanged(fn types.PropertyChangedFunc) (cancel func()) {
	i.mu.Lock()
	id := i.nextID
	i.nextID++
	i.subs[id] = fn
	i.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			i.mu.Lock()
			delete(i.subs, id)
			i.mu.Unlock()
		})
	}
}

// Raise synchronously invokes every registered callback with the item as
// sender.
func (i *Item) Raise(propertyName string) {
	for _, fn := range i.snapshot() {
		fn(i, propertyName)
	}
}

// RaiseFrom invokes every registered callback with an explicit sender,
// allowing tests to exercise the nil-sender escalation path.
func (i *Item) RaiseFrom(sender any, propertyName string) {
	for _, fn := range i.snapshot() {
		fn(sender, propertyName)
	}
}

// SubscriberCount returns the number of currently registered callbacks.
func (i *Item) SubscriberCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return len(i.subs)
}

func (i *Item) snapshot() []types.PropertyChangedFunc {
	i.mu.Lock()
	defer i.mu.Unlock()

	fns := make([]types.PropertyChangedFunc, 0, len(i.subs))
	for _, fn := range i.subs {
		fns = append(fns, fn)
	}

	return fns
}

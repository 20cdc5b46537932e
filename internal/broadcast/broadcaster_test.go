package broadcast

import (
	"testing"
	"time"

	"github.com/jbattermann/observable/internal/gate"
	"github.com/jbattermann/observable/types"
	"github.com/stretchr/testify/require"
)

type inlineScheduler struct{}

func (inlineScheduler) Schedule(fn func()) { fn() }

func newTestBroadcaster(t *testing.T) *Broadcaster[string, int] {
	t.Helper()

	b := New[string, int](gate.NewSet(), 16, nopLogger{}, nopMetrics{}, inlineScheduler{})
	t.Cleanup(b.Close)

	return b
}

func TestBroadcasterEmit(t *testing.T) {
	t.Run("added change reaches raw, collection and count surfaces", func(t *testing.T) {
		b := newTestBroadcaster(t)
		changes, cancelChanges := b.SubscribeChanges()
		defer cancelChanges()
		collection, cancelCollection := b.SubscribeCollectionChanges()
		defer cancelCollection()
		items, cancelItems := b.SubscribeCollectionItemChanges()
		defer cancelItems()
		counts, cancelCounts := b.SubscribeCount()
		defer cancelCounts()

		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))

		c := <-changes
		require.Equal(t, types.ChangeItemAdded, c.Kind)
		require.Equal(t, "a", c.Key)

		cc := <-collection
		require.Equal(t, types.CollectionItemAdded, cc.Kind)
		require.Equal(t, cc, <-items)
		require.Equal(t, 1, <-counts)
	})

	t.Run("reset skips the item projection surface", func(t *testing.T) {
		b := newTestBroadcaster(t)
		resets, cancelResets := b.SubscribeResets()
		defer cancelResets()
		collection, cancelCollection := b.SubscribeCollectionChanges()
		defer cancelCollection()
		items, cancelItems := b.SubscribeCollectionItemChanges()
		defer cancelItems()

		require.NoError(t, b.Emit(types.NewReset[string, int](), 0))

		<-resets
		require.Equal(t, types.CollectionReset, (<-collection).Kind)
		require.Empty(t, items)
	})

	t.Run("key and value filters route by kind", func(t *testing.T) {
		b := newTestBroadcaster(t)
		keyChanges, cancelKeys := b.SubscribeKeyChanges()
		defer cancelKeys()
		valueChanges, cancelValues := b.SubscribeValueChanges()
		defer cancelValues()

		require.NoError(t, b.Emit(types.NewItemKeyChanged[string, int]("a", "Name"), 1))
		require.NoError(t, b.Emit(types.NewItemValueChanged("a", 2, "Amount"), 1))
		require.NoError(t, b.Emit(types.NewItemValueReplaced("a", 3, 2), 1))

		require.Equal(t, types.ChangeItemKeyChanged, (<-keyChanges).Kind)
		require.Equal(t, types.ChangeItemValueChanged, (<-valueChanges).Kind)
		require.Equal(t, types.ChangeItemValueReplaced, (<-valueChanges).Kind)
		require.Empty(t, keyChanges)
	})
}

func TestBroadcasterGates(t *testing.T) {
	t.Run("suppressed master gate swallows everything", func(t *testing.T) {
		b := newTestBroadcaster(t)
		changes, cancel := b.SubscribeChanges()
		defer cancel()

		require.NoError(t, b.Gates().Changes.Suppress())
		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.Empty(t, changes)

		b.Gates().Changes.Resume()
		require.NoError(t, b.Emit(types.NewItemAdded("b", 2), 2))
		require.Equal(t, "b", (<-changes).Key)
	})

	t.Run("suppressed resets let item changes through", func(t *testing.T) {
		b := newTestBroadcaster(t)
		changes, cancel := b.SubscribeChanges()
		defer cancel()

		require.NoError(t, b.Gates().Resets.Suppress())
		require.NoError(t, b.Emit(types.NewReset[string, int](), 0))
		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))

		c := <-changes
		require.Equal(t, types.ChangeItemAdded, c.Kind)
		require.Empty(t, changes)
	})

	t.Run("suppressed item changes let resets through", func(t *testing.T) {
		b := newTestBroadcaster(t)
		changes, cancel := b.SubscribeChanges()
		defer cancel()

		require.NoError(t, b.Gates().ItemChanges.Suppress())
		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.NoError(t, b.Emit(types.NewReset[string, int](), 1))

		c := <-changes
		require.Equal(t, types.ChangeReset, c.Kind)
		require.Empty(t, changes)
	})
}

func TestBroadcasterCountDeduplication(t *testing.T) {
	t.Run("only count-affecting kinds publish counts", func(t *testing.T) {
		b := newTestBroadcaster(t)
		counts, cancel := b.SubscribeCount()
		defer cancel()

		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.NoError(t, b.Emit(types.NewItemValueReplaced("a", 2, 1), 1))
		require.NoError(t, b.Emit(types.NewItemValueChanged("a", 2, "Amount"), 1))
		require.NoError(t, b.Emit(types.NewItemRemoved("a", 2), 0))

		require.Equal(t, 1, <-counts)
		require.Equal(t, 0, <-counts)
		require.Empty(t, counts)
	})

	t.Run("an unchanged count is not re-published", func(t *testing.T) {
		b := newTestBroadcaster(t)
		counts, cancel := b.SubscribeCount()
		defer cancel()

		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.Equal(t, 1, <-counts)

		// Reset is count-affecting but the count did not move.
		require.NoError(t, b.Emit(types.NewReset[string, int](), 1))
		require.Empty(t, counts)
	})

	t.Run("counts skipped while suppressed surface on signal", func(t *testing.T) {
		b := newTestBroadcaster(t)
		counts, cancel := b.SubscribeCount()
		defer cancel()

		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.Equal(t, 1, <-counts)

		require.NoError(t, b.Gates().CountChanges.Suppress())
		require.NoError(t, b.Emit(types.NewItemAdded("b", 2), 2))
		require.Empty(t, counts)

		b.Gates().CountChanges.Resume()
		require.NoError(t, b.SignalCount(2))
		require.Equal(t, 2, <-counts)

		// The signalled value advanced the de-duplication state.
		require.NoError(t, b.SignalCount(2))
		require.Empty(t, counts)
	})
}

func TestBroadcasterHandlers(t *testing.T) {
	t.Run("property handler sees indexer always and count when it moved", func(t *testing.T) {
		b := newTestBroadcaster(t)

		var names []string
		remove := b.OnPropertyChanged(func(name string) { names = append(names, name) })
		defer remove()

		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.ElementsMatch(t, []string{types.PropertyCount, types.PropertyIndexer}, names)

		names = nil
		require.NoError(t, b.Emit(types.NewItemValueReplaced("a", 2, 1), 1))
		require.Equal(t, []string{types.PropertyIndexer}, names)
	})

	t.Run("collection handler receives the projection", func(t *testing.T) {
		b := newTestBroadcaster(t)

		var got []types.CollectionChange[string, int]
		remove := b.OnCollectionChanged(func(cc types.CollectionChange[string, int]) { got = append(got, cc) })
		defer remove()

		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.Len(t, got, 1)
		require.Equal(t, types.CollectionItemAdded, got[0].Kind)
	})

	t.Run("handler may emit again during delivery", func(t *testing.T) {
		b := newTestBroadcaster(t)
		changes, cancel := b.SubscribeChanges()
		defer cancel()

		// An inline handler that triggers another emission must re-enter
		// Emit instead of blocking on it.
		nested := false
		remove := b.OnPropertyChanged(func(string) {
			if nested {
				return
			}
			nested = true
			require.NoError(t, b.Emit(types.NewItemAdded("b", 2), 2))
		})
		defer remove()

		done := make(chan error, 1)
		go func() { done <- b.Emit(types.NewItemAdded("a", 1), 1) }()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("Emit did not return after the handler emitted again")
		}

		require.Equal(t, "a", (<-changes).Key)
		require.Equal(t, "b", (<-changes).Key)
	})

	t.Run("removed handler stops receiving", func(t *testing.T) {
		b := newTestBroadcaster(t)

		calls := 0
		remove := b.OnPropertyChanged(func(string) { calls++ })
		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
		require.Positive(t, calls)

		remove()
		before := calls
		require.NoError(t, b.Emit(types.NewItemAdded("b", 2), 2))
		require.Equal(t, before, calls)
	})
}

func TestBroadcasterObserverPanics(t *testing.T) {
	t.Run("unhandled panic propagates to the emitter", func(t *testing.T) {
		b := newTestBroadcaster(t)
		remove := b.OnCollectionChanged(func(types.CollectionChange[string, int]) { panic("boom") })
		defer remove()

		err := b.Emit(types.NewItemAdded("a", 1), 1)
		require.ErrorIs(t, err, types.ErrObserverPanic)
	})

	t.Run("panic is published on the observer-errors surface", func(t *testing.T) {
		b := newTestBroadcaster(t)
		errs, cancel := b.SubscribeObserverErrors()
		defer cancel()
		remove := b.OnPropertyChanged(func(string) { panic("boom") })
		defer remove()

		_ = b.Emit(types.NewItemAdded("a", 1), 1)

		oe := <-errs
		require.Equal(t, "propertyChanged", oe.Channel)
		require.Equal(t, "boom", oe.Recovered)
	})

	t.Run("marking handled absorbs the failure", func(t *testing.T) {
		b := newTestBroadcaster(t)
		removePanic := b.OnCollectionChanged(func(types.CollectionChange[string, int]) { panic("boom") })
		defer removePanic()
		removeHandler := b.OnObserverError(func(oe *types.ObserverError) { oe.MarkHandled() })
		defer removeHandler()

		require.NoError(t, b.Emit(types.NewItemAdded("a", 1), 1))
	})

	t.Run("a panicking observer does not block other handlers", func(t *testing.T) {
		b := newTestBroadcaster(t)
		removePanic := b.OnCollectionChanged(func(types.CollectionChange[string, int]) { panic("boom") })
		defer removePanic()

		indexerSeen := false
		removeProp := b.OnPropertyChanged(func(name string) {
			if name == types.PropertyIndexer {
				indexerSeen = true
			}
		})
		defer removeProp()

		_ = b.Emit(types.NewItemAdded("a", 1), 1)
		require.True(t, indexerSeen)
	})
}

func TestBroadcasterClose(t *testing.T) {
	t.Run("emit after close fails", func(t *testing.T) {
		b := New[string, int](gate.NewSet(), 16, nopLogger{}, nopMetrics{}, inlineScheduler{})
		b.Close()
		require.ErrorIs(t, b.Emit(types.NewItemAdded("a", 1), 1), types.ErrClosed)
	})

	t.Run("close completes subscriber channels", func(t *testing.T) {
		b := New[string, int](gate.NewSet(), 16, nopLogger{}, nopMetrics{}, inlineScheduler{})
		changes, cancel := b.SubscribeChanges()
		defer cancel()

		b.Close()
		_, ok := <-changes
		require.False(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		b := New[string, int](gate.NewSet(), 16, nopLogger{}, nopMetrics{}, inlineScheduler{})
		b.Close()
		require.NotPanics(t, b.Close)
	})
}

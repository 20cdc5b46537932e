package broadcast

import (
	"sync/atomic"

	"github.com/jbattermann/observable/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// registry is a fan-out of one notification channel to its subscribers.
//
// Subscribers are held in a concurrent map keyed by a monotonically growing
// ID, so subscribe/unsubscribe never contend with publication.
type registry[T any] struct {
	name    string
	buffer  int
	subs    *xsync.Map[uint64, *subscriber[T]]
	nextID  atomic.Uint64
	count   atomic.Int64
	closed  atomic.Bool
	logger  types.Logger
	metrics types.BroadcastMetrics
}

func newRegistry[T any](name string, buffer int, logger types.Logger, metrics types.BroadcastMetrics) *registry[T] {
	return &registry[T]{
		name:    name,
		buffer:  buffer,
		subs:    xsync.NewMap[uint64, *subscriber[T]](),
		logger:  logger,
		metrics: metrics,
	}
}

// subscribe registers a new subscriber and returns its channel together with
// an unsubscribe function.
//
// Subscribing to a closed registry returns an already-closed channel, which a
// receiver observes as a completed stream.
func (r *registry[T]) subscribe() (<-chan T, func()) {
	if r.closed.Load() {
		ch := make(chan T)
		close(ch)

		return ch, func() {}
	}

	id := r.nextID.Add(1)
	sub := newSubscriber[T](r.buffer)
	r.subs.Store(id, sub)
	r.metrics.RecordSubscriberCount(r.name, int(r.count.Add(1)))

	// The registry may have been closed concurrently; make sure the late
	// subscriber does not linger with an open channel.
	if r.closed.Load() {
		r.remove(id)

		return sub.ch, func() {}
	}

	unsubscribe := func() {
		r.remove(id)
	}

	return sub.ch, unsubscribe
}

func (r *registry[T]) remove(id uint64) {
	if sub, ok := r.subs.LoadAndDelete(id); ok {
		sub.close()
		r.metrics.RecordSubscriberCount(r.name, int(r.count.Add(-1)))
	}
}

// publish fans v out to every subscriber without blocking. Slow subscribers
// whose buffers are full miss this value; the drop is counted and logged.
func (r *registry[T]) publish(v T) {
	r.subs.Range(func(_ uint64, sub *subscriber[T]) bool {
		if !sub.trySend(v) {
			r.metrics.RecordDroppedNotification(r.name)
			r.logger.Warn("notification dropped for slow subscriber", "channel", r.name)
		}

		return true
	})
}

// closeAll closes every subscriber channel and marks the registry closed.
func (r *registry[T]) closeAll() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.subs.Range(func(id uint64, _ *subscriber[T]) bool {
		r.remove(id)
		return true
	})
}

package broadcast

import "sync"

// subscriber is a helper for managing one channel subscription.
type subscriber[T any] struct {
	ch     chan T
	mu     sync.Mutex
	closed bool
}

func newSubscriber[T any](buffer int) *subscriber[T] {
	return &subscriber[T]{ch: make(chan T, buffer)}
}

// trySend delivers v to the subscriber's channel without blocking.
//
// Returns:
//   - bool: true if v was delivered, false if the subscriber is closed or its
//     buffer is full (the notification is dropped; the subscriber will see
//     later updates)
func (s *subscriber[T]) trySend(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}

// close safely closes the subscriber's channel.
func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

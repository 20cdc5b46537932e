package scheduler

import (
	"sync"

	"github.com/jbattermann/observable/types"
)

// Serial runs scheduled functions on a single background goroutine in strict
// submission (FIFO) order.
//
// Schedule never blocks the submitting goroutine; the queue is unbounded.
// Delivery is therefore asynchronous relative to the mutating call, which
// means unhandled observer failures are logged by the dictionary rather than
// returned to the mutator.
//
// Close stops the worker after draining the queue. Functions scheduled after
// Close run inline on the submitting goroutine, so nothing is ever dropped.
type Serial struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// Compile-time assertion that Serial implements Scheduler.
var _ types.Scheduler = (*Serial)(nil)

// NewSerial creates a serial scheduler and starts its worker goroutine.
//
// Returns:
//   - *Serial: A running scheduler; call Close when done with it
func NewSerial() *Serial {
	s := &Serial{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)

	go s.run()

	return s
}

// Schedule enqueues fn for execution on the worker goroutine. After Close,
// fn runs inline instead.
func (s *Serial) Schedule(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()

		return
	}

	s.queue = append(s.queue, fn)
	s.cond.Signal()
	s.mu.Unlock()
}

// Close drains the queue, stops the worker goroutine and waits for it to
// exit. Close is idempotent.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done

		return
	}
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()

	<-s.done
}

func (s *Serial) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}

		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}

		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}

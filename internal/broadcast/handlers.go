package broadcast

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// handlerRegistry holds callback-style subscribers (the legacy event
// surface). Unlike channel subscribers, handlers are invoked directly and
// therefore individually panic-isolated by the broadcaster.
type handlerRegistry[T any] struct {
	handlers *xsync.Map[uint64, func(T)]
	nextID   atomic.Uint64
}

func newHandlerRegistry[T any]() *handlerRegistry[T] {
	return &handlerRegistry[T]{handlers: xsync.NewMap[uint64, func(T)]()}
}

// add registers fn and returns a removal function. Removal is idempotent.
func (h *handlerRegistry[T]) add(fn func(T)) (remove func()) {
	id := h.nextID.Add(1)
	h.handlers.Store(id, fn)

	return func() {
		h.handlers.Delete(id)
	}
}

// each calls fn for every registered handler.
func (h *handlerRegistry[T]) each(fn func(handler func(T))) {
	h.handlers.Range(func(_ uint64, handler func(T)) bool {
		fn(handler)
		return true
	})
}

// clear drops all handlers.
func (h *handlerRegistry[T]) clear() {
	h.handlers.Range(func(id uint64, _ func(T)) bool {
		h.handlers.Delete(id)
		return true
	})
}

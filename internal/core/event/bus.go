package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in round N are readable
// in round N+1. SwapBuffers is called at round start by the dispatch system.
//
// Emit may be called from parallel attack goroutines; handlers run on the
// goroutine that calls DispatchAll.
type Bus struct {
	mu       sync.Mutex
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	order    []reflect.Type // first-emit order, keeps dispatch deterministic
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (readable next round).
func Emit[T any](b *Bus, event T) {
	t := typeOf[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, seen := b.back[t]; !seen {
		if _, seen = b.front[t]; !seen {
			b.order = append(b.order, t)
		}
	}
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// Pending returns how many events wait in the back buffer.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// DispatchAll delivers all front-buffer events to their subscribed handlers,
// grouped by type in first-emit order. Handlers may Emit; those events land in
// the back buffer for the next round.
func (b *Bus) DispatchAll() {
	type batch struct {
		events   []any
		handlers []any
	}
	b.mu.Lock()
	batches := make([]batch, 0, len(b.order))
	for _, t := range b.order {
		evs := b.front[t]
		hs := b.handlers[t]
		if len(evs) == 0 || len(hs) == 0 {
			continue
		}
		batches = append(batches, batch{
			events:   append([]any(nil), evs...),
			handlers: append([]any(nil), hs...),
		})
	}
	b.mu.Unlock()

	for _, bt := range batches {
		for _, ev := range bt.events {
			for _, h := range bt.handlers {
				callHandler(h, ev)
			}
		}
	}
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}

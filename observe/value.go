// Package observe provides an observable value slot.
package observe

import (
	"context"
	"sync"
)

// Value holds a single value that can be observed by any number of subscribers.
//
// Published values replace the current value atomically and must be treated
// as immutable by publishers and subscribers alike.
type Value[V any] struct {
	mu   sync.Mutex
	cur  V
	subs map[*subscriber[V]]struct{}
}

// NewValue returns a Value holding the given initial value.
func NewValue[V any](initial V) *Value[V] {
	return &Value[V]{
		cur:  initial,
		subs: make(map[*subscriber[V]]struct{}),
	}
}

// Load returns the current value.
func (v *Value[V]) Load() V {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.cur
}

// Store publishes a new value to all subscribers.
func (v *Value[V]) Store(value V) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = value
	for s := range v.subs {
		s.push(value)
	}
}

// Subscribers returns the number of attached subscribers.
func (v *Value[V]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.subs)
}

// Subscribe returns a channel that first receives the current value and then
// every value published afterwards, in publish order.
//
// Slow readers never block publishers. The channel is closed once ctx is done.
func (v *Value[V]) Subscribe(ctx context.Context) <-chan V {
	s := &subscriber[V]{
		signal: make(chan struct{}, 1),
	}
	out := make(chan V)

	v.mu.Lock()
	s.push(v.cur)
	v.subs[s] = struct{}{}
	v.mu.Unlock()

	go func() {
		defer close(out)
		defer v.unsubscribe(s)
		s.run(ctx, out)
	}()
	return out
}

func (v *Value[V]) unsubscribe(s *subscriber[V]) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.subs, s)
}

type subscriber[V any] struct {
	mu     sync.Mutex
	queue  []V
	signal chan struct{}
}

func (s *subscriber[V]) push(value V) {
	s.mu.Lock()
	s.queue = append(s.queue, value)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber[V]) pop() (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	if len(s.queue) == 0 {
		return zero, false
	}
	next := s.queue[0]
	s.queue[0] = zero
	s.queue = s.queue[1:]
	return next, true
}

func (s *subscriber[V]) run(ctx context.Context, out chan<- V) {
	for {
		next, ok := s.pop()
		if !ok {
			select {
			case <-s.signal:
				continue
			case <-ctx.Done():
				return
			}
		}
		select {
		case out <- next:
		case <-ctx.Done():
			return
		}
	}
}

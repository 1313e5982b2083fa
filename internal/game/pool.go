package game

import "fmt"

// Pool is a fixed-size ring of reusable items. Get hands items out in
// rotation, so an item is reused once the pool wraps around.
type Pool[T any] struct {
	items []T
	next  int
	reset func(T)
}

func NewPool[T any](key string, size int, newItem func(i int) T, reset func(T)) (*Pool[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool %q: size must be positive, got %d", key, size)
	}
	p := &Pool[T]{items: make([]T, size), reset: reset}
	for i := range p.items {
		p.items[i] = newItem(i)
	}
	return p, nil
}

// Get returns the next item after resetting it.
func (p *Pool[T]) Get() T {
	item := p.items[p.next]
	p.next = (p.next + 1) % len(p.items)
	if p.reset != nil {
		p.reset(item)
	}
	return item
}

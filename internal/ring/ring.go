// Package ring provides a bounded buffer that evicts its oldest entries.
package ring

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// Buffer keeps the most recent entries up to its capacity. It is not safe for
// concurrent use; owners serialise access.
type Buffer[T any] struct {
	items []T
	head  int // index of the oldest entry
	size  int
}

// New creates a buffer holding at most capacity entries.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends an entry, evicting the oldest one when full.
func (b *Buffer[T]) Push(item T) {
	if b.size < len(b.items) {
		b.items[(b.head+b.size)%len(b.items)] = item
		b.size++
		return
	}
	b.items[b.head] = item
	b.head = (b.head + 1) % len(b.items)
}

// Items returns a copy of the entries, oldest first.
func (b *Buffer[T]) Items() []T {
	out := make([]T, b.size)
	for i := range b.size {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}

// Last returns the newest entry.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.items[(b.head+b.size-1)%len(b.items)], true
}

// Len reports the number of stored entries.
func (b *Buffer[T]) Len() int { return b.size }

// Cap reports the capacity.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// Resize changes the capacity, keeping the newest entries that still fit.
func (b *Buffer[T]) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	items := b.Items()
	if len(items) > capacity {
		items = items[len(items)-capacity:]
	}
	next := make([]T, capacity)
	copy(next, items)
	b.items = next
	b.head = 0
	b.size = len(items)
}

// Clear drops every entry without changing the capacity.
func (b *Buffer[T]) Clear() {
	clear(b.items)
	b.head = 0
	b.size = 0
}

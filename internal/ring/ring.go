// Package ring implements a small fixed-capacity FIFO, the Go
// equivalent of the RingBuffer<T,N> template used to hold queued BLE
// requests and in-flight response timestamps.
package ring

// Buffer is a bounded FIFO whose capacity is fixed by NewBuffer. The
// zero value has capacity zero and rejects every Enqueue.
type Buffer[T any] struct {
	items      []T
	head, size int
}

// NewBuffer returns an empty buffer with room for capacity items;
// capacity must be positive.
func NewBuffer[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{items: make([]T, capacity)}
}

// Len reports how many items are queued.
func (b *Buffer[T]) Len() int { return b.size }

// Cap reports the buffer's fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// Empty reports whether the buffer holds no items.
func (b *Buffer[T]) Empty() bool { return b.size == 0 }

// Full reports whether the buffer has no room left.
func (b *Buffer[T]) Full() bool { return b.size == len(b.items) }

// Enqueue appends v to the buffer. It reports false without
// modifying the buffer if it is already full.
func (b *Buffer[T]) Enqueue(v T) bool {
	if b.Full() {
		return false
	}
	tail := (b.head + b.size) % len(b.items)
	b.items[tail] = v
	b.size++
	return true
}

// Peek returns the oldest item without removing it.
func (b *Buffer[T]) Peek() (v T, ok bool) {
	if b.Empty() {
		return v, false
	}
	return b.items[b.head], true
}

// Dequeue removes and returns the oldest item.
func (b *Buffer[T]) Dequeue() (v T, ok bool) {
	if b.Empty() {
		return v, false
	}
	v = b.items[b.head]
	var zero T
	b.items[b.head] = zero
	b.head = (b.head + 1) % len(b.items)
	b.size--
	return v, true
}

// ring_buffer.go — Generic fixed-capacity ring buffer.
// Oldest entries are evicted first once capacity is reached.
// Thread-safe: all access guarded by RWMutex.
package buffers

import "sync"

// RingBuffer is a generic fixed-capacity circular buffer.
type RingBuffer[T any] struct {
	mu sync.RWMutex

	entries  []T
	capacity int

	// Index of the next write once the buffer is full (the oldest entry).
	head int
}

// NewRingBuffer creates a ring buffer holding at most capacity entries.
// A capacity below 1 is treated as 1.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{
		entries:  make([]T, 0, capacity),
		capacity: capacity,
	}
}

// WriteOne appends a single entry, evicting the oldest if at capacity.
func (rb *RingBuffer[T]) WriteOne(entry T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(rb.entries) < rb.capacity {
		rb.entries = append(rb.entries, entry)
	} else {
		rb.entries[rb.head] = entry
	}
	rb.head = (rb.head + 1) % rb.capacity
}

// ReadAll returns a copy of all entries, oldest first. Nil when empty.
func (rb *RingBuffer[T]) ReadAll() []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if len(rb.entries) == 0 {
		return nil
	}

	result := make([]T, len(rb.entries))
	if len(rb.entries) < rb.capacity {
		copy(result, rb.entries)
	} else {
		// Buffer full, head points to oldest entry
		n := copy(result, rb.entries[rb.head:])
		copy(result[n:], rb.entries[:rb.head])
	}
	return result
}

// ReadLast returns the last n entries, oldest first.
func (rb *RingBuffer[T]) ReadLast(n int) []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if len(rb.entries) == 0 || n <= 0 {
		return nil
	}
	if n > len(rb.entries) {
		n = len(rb.entries)
	}

	result := make([]T, n)
	if len(rb.entries) < rb.capacity {
		copy(result, rb.entries[len(rb.entries)-n:])
		return result
	}
	// Wrapped: the newest entry sits just before head
	end := (rb.head - 1 + rb.capacity) % rb.capacity
	for i := n - 1; i >= 0; i-- {
		result[i] = rb.entries[end]
		end = (end - 1 + rb.capacity) % rb.capacity
	}
	return result
}

// Len returns the current number of entries.
func (rb *RingBuffer[T]) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return len(rb.entries)
}

// Cap returns the buffer capacity.
func (rb *RingBuffer[T]) Cap() int {
	return rb.capacity // Immutable, no lock needed
}

// Clear removes all entries from the buffer.
func (rb *RingBuffer[T]) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.entries = make([]T, 0, rb.capacity)
	rb.head = 0
}

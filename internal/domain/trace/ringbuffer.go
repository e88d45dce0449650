package trace

import "sync"

// RingBuffer is a concurrent-safe fixed-size ring buffer of operation entries.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []Entry
	size    int
	head    int
	count   int
}

// NewRingBuffer creates a ring buffer that holds up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 100
	}
	return &RingBuffer{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Add appends an entry, overwriting the oldest once the buffer is full.
func (rb *RingBuffer) Add(e Entry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.head] = e
	rb.head = (rb.head + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
	}
}

// Last returns the last n entries in chronological order.
func (rb *RingBuffer) Last(n int) []Entry {
	return rb.last(n, func(Entry) bool { return true })
}

// LastFailures returns up to n of the most recent failed entries,
// oldest first.
func (rb *RingBuffer) LastFailures(n int) []Entry {
	return rb.last(n, Entry.Failed)
}

func (rb *RingBuffer) last(n int, keep func(Entry) bool) []Entry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if n <= 0 || rb.count == 0 {
		return nil
	}

	// Walk backwards from the newest entry, then reverse.
	var result []Entry
	for i := 1; i <= rb.count && len(result) < n; i++ {
		e := rb.entries[(rb.head-i+rb.size)%rb.size]
		if keep(e) {
			result = append(result, e)
		}
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Count returns the number of entries currently stored.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

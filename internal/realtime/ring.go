package realtime

import "sync"

// DefaultReplaySize is the default alert replay capacity.
const DefaultReplaySize = 50

// eventRing is a fixed-capacity circular buffer of events. When full,
// a push overwrites the oldest entry; memory never grows past capacity.
type eventRing struct {
	mu    sync.Mutex
	buf   []Event
	size  int
	head  int // next write position
	count int // valid entries (0..size)
}

func newEventRing(size int) *eventRing {
	if size <= 0 {
		size = DefaultReplaySize
	}
	return &eventRing{
		buf:  make([]Event, size),
		size: size,
	}
}

// Push adds an event, overwriting the oldest if full.
func (r *eventRing) Push(e Event) {
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
	r.mu.Unlock()
}

// Last returns up to n newest events in chronological order, oldest
// first. The returned slice is a copy.
func (r *eventRing) Last(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}

	result := make([]Event, n)
	start := (r.head - n + r.size) % r.size
	for i := 0; i < n; i++ {
		result[i] = r.buf[(start+i)%r.size]
	}
	return result
}

// Len returns the number of buffered events.
func (r *eventRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

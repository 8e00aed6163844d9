package engine

import "sync"

// Example is one labeled training observation. Resample marks examples that
// were re-ingested by a drift-triggered resampling rather than ordinary
// submission. Examples are immutable once enqueued.
type Example struct {
	Features []float64
	Label    float64
	Resample bool
}

// trainingQueue is a bounded per-model ring buffer of examples in arrival
// order. When full, the oldest example is evicted to make room, so inserts
// stay O(1). Every operation holds the mutex for a short, bounded section;
// training never runs under it because consumers work on Snapshot copies.
//
// Each example carries an implicit, monotonically increasing sequence
// number. seq is the sequence of the current oldest element; it advances on
// eviction and drain, which lets Drain remove exactly the examples a
// snapshot covered even if eviction ran while the snapshot was being fit.
type trainingQueue struct {
	mu       sync.Mutex
	data     []Example
	capacity int
	head     int // ring index of the oldest example
	size     int
	seq      uint64 // sequence number of the oldest example
}

func newTrainingQueue(capacity int) *trainingQueue {
	return &trainingQueue{
		data:     make([]Example, capacity),
		capacity: capacity,
	}
}

// Add appends an example, evicting the oldest when the queue is full.
func (q *trainingQueue) Add(ex Example) {
	q.mu.Lock()
	defer q.mu.Unlock()

	tail := (q.head + q.size) % q.capacity
	q.data[tail] = ex
	if q.size < q.capacity {
		q.size++
	} else {
		q.head = (q.head + 1) % q.capacity
		q.seq++
	}
}

// Len returns the number of queued examples.
func (q *trainingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Snapshot copies all queued examples in arrival order and reports the
// sequence number just past the last copied example. The queue keeps
// accepting new examples while the caller trains on the copy.
func (q *trainingQueue) Snapshot() ([]Example, uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Example, q.size)
	for i := 0; i < q.size; i++ {
		out[i] = q.data[(q.head+i)%q.capacity]
	}
	return out, q.seq + uint64(q.size)
}

// Tail copies the most recent n examples in arrival order, or all of them
// when fewer are queued.
func (q *trainingQueue) Tail(n int) []Example {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > q.size {
		n = q.size
	}
	out := make([]Example, n)
	start := q.size - n
	for i := 0; i < n; i++ {
		out[i] = q.data[(q.head+start+i)%q.capacity]
	}
	return out
}

// DrainThrough removes every example with a sequence number below upto,
// where upto is the value a Snapshot returned. Examples submitted after the
// snapshot was taken survive for the next cycle; examples the ring already
// evicted are not double counted.
func (q *trainingQueue) DrainThrough(upto uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if upto <= q.seq {
		return
	}
	n := int(upto - q.seq)
	if n > q.size {
		n = q.size
	}
	q.head = (q.head + n) % q.capacity
	q.size -= n
	q.seq += uint64(n)
}

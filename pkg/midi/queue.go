package midi

import "sync/atomic"

// Queue is a fixed-capacity ring for handing messages from one producer
// goroutine to one consumer goroutine. Push and Pop never block or
// allocate. With more than one producer or consumer the caller must
// serialize each side.
type Queue struct {
	buf  []Message
	mask uint64

	head    atomic.Uint64 // next slot to read, owned by the consumer
	tail    atomic.Uint64 // next slot to write, owned by the producer
	dropped atomic.Uint64
}

// NewQueue creates a queue holding at least capacity messages. Capacity is
// rounded up to a power of two.
func NewQueue(capacity int) *Queue {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Queue{
		buf:  make([]Message, size),
		mask: uint64(size - 1),
	}
}

// Push appends m. It returns false and counts a drop when the queue is full.
func (q *Queue) Push(m Message) bool {
	t := q.tail.Load()
	if t-q.head.Load() == uint64(len(q.buf)) {
		q.dropped.Add(1)
		return false
	}
	q.buf[t&q.mask] = m
	q.tail.Store(t + 1)
	return true
}

// Peek returns the oldest message without removing it
func (q *Queue) Peek() (Message, bool) {
	h := q.head.Load()
	if h == q.tail.Load() {
		return Message{}, false
	}
	return q.buf[h&q.mask], true
}

// Pop removes and returns the oldest message
func (q *Queue) Pop() (Message, bool) {
	h := q.head.Load()
	if h == q.tail.Load() {
		return Message{}, false
	}
	m := q.buf[h&q.mask]
	q.head.Store(h + 1)
	return m, true
}

// Drain pops every queued message into fn and returns how many it handled
func (q *Queue) Drain(fn func(Message)) int {
	n := 0
	for {
		m, ok := q.Pop()
		if !ok {
			return n
		}
		fn(m)
		n++
	}
}

// Len returns the number of queued messages
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the queue capacity
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Dropped returns how many pushes failed because the queue was full
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

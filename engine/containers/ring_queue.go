package containers

import "errors"

var (
	ErrQueueFull  = errors.New("queue is full")
	ErrQueueEmpty = errors.New("queue is empty")
)

// RingQueue is a fixed capacity FIFO queue backed by a single slice.
type RingQueue[T any] struct {
	data  []T
	head  int
	count int
}

func NewRingQueue[T any](capacity int) *RingQueue[T] {
	return &RingQueue[T]{data: make([]T, capacity)}
}

func (rq *RingQueue[T]) slot(i int) int {
	return (rq.head + i) % len(rq.data)
}

// Enqueue appends value, failing when the queue is full.
func (rq *RingQueue[T]) Enqueue(value T) error {
	if rq.IsFull() {
		return ErrQueueFull
	}
	rq.data[rq.slot(rq.count)] = value
	rq.count++
	return nil
}

// Push appends value, evicting the oldest element when the queue is full.
// The evicted element is returned with ok set.
func (rq *RingQueue[T]) Push(value T) (evicted T, ok bool) {
	if rq.IsFull() {
		evicted, _ = rq.Dequeue()
		ok = true
	}
	_ = rq.Enqueue(value)
	return evicted, ok
}

func (rq *RingQueue[T]) Dequeue() (T, error) {
	var zero T
	if rq.IsEmpty() {
		return zero, ErrQueueEmpty
	}
	value := rq.data[rq.head]
	rq.data[rq.head] = zero
	rq.head = rq.slot(1)
	rq.count--
	return value, nil
}

// Each visits the elements oldest first.
func (rq *RingQueue[T]) Each(fn func(T)) {
	for i := 0; i < rq.count; i++ {
		fn(rq.data[rq.slot(i)])
	}
}

func (rq *RingQueue[T]) Len() int      { return rq.count }
func (rq *RingQueue[T]) IsEmpty() bool { return rq.count == 0 }
func (rq *RingQueue[T]) IsFull() bool  { return rq.count == len(rq.data) }

package core

import "fmt"

// Arena stores values in index-addressed slots. Released slots are reused by
// later acquisitions, so an index stays valid until it is released.
type Arena[T any] struct {
	slots []T
	used  []bool
	count int
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]T, 0, capacity),
		used:  make([]bool, 0, capacity),
	}
}

// Acquire stores v and returns its index.
func (a *Arena[T]) Acquire(v T) uint32 {
	length := uint32(len(a.slots))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if !a.used[i] {
			a.slots[i] = v
			a.used[i] = true
			a.count++
			return i
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	a.slots = append(a.slots, v)
	a.used = append(a.used, true)
	a.count++
	return length
}

func (a *Arena[T]) Release(id uint32) error {
	if len(a.slots) == 0 {
		return fmt.Errorf("arena release called before any acquire, id '%d': %w", id, ErrInvalidArgument)
	}
	if id >= uint32(len(a.slots)) || !a.used[id] {
		return fmt.Errorf("arena release: id '%d' out of range or free (max=%d): %w", id, len(a.slots), ErrInvalidArgument)
	}

	// Just zero out the entry, making it available for use.
	var zero T
	a.slots[id] = zero
	a.used[id] = false
	a.count--
	return nil
}

// Get returns a pointer into the slot, or nil when id is free.
func (a *Arena[T]) Get(id uint32) *T {
	if id >= uint32(len(a.slots)) || !a.used[id] {
		return nil
	}
	return &a.slots[id]
}

// Len is the number of occupied slots.
func (a *Arena[T]) Len() int {
	return a.count
}

// Each visits occupied slots in index order.
func (a *Arena[T]) Each(fn func(id uint32, v *T)) {
	for i := range a.slots {
		if a.used[i] {
			fn(uint32(i), &a.slots[i])
		}
	}
}

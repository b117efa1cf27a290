package handle

import (
	"errors"
	"math/bits"
)

var (
	// ErrExhausted is returned by Allocate when every slot is taken.
	ErrExhausted = errors.New("handle: allocator exhausted")
	// ErrNotLive is returned by Release for a handle that is out of range or already free.
	ErrNotLive = errors.New("handle: handle not live")
)

// Allocator hands out the lowest free integer in [0, Cap()) and recycles
// released ones. It does not track generations: a released handle that is
// allocated again is indistinguishable from the old one.
type Allocator[H ~int] struct {
	words []uint64
	cap   int
	live  int
}

// New creates an allocator with room for capacity handles.
func New[H ~int](capacity int) *Allocator[H] {
	if capacity < 0 {
		capacity = 0
	}
	return &Allocator[H]{
		words: make([]uint64, (capacity+63)/64),
		cap:   capacity,
	}
}

// Allocate sets and returns the lowest unset bit.
func (a *Allocator[H]) Allocate() (H, error) {
	for wi, w := range a.words {
		if w == ^uint64(0) {
			continue
		}
		bit := bits.TrailingZeros64(^w)
		idx := wi*64 + bit
		if idx >= a.cap {
			break
		}
		a.words[wi] |= 1 << uint(bit)
		a.live++
		return H(idx), nil
	}
	return H(-1), ErrExhausted
}

// Release clears the bit for h so a later Allocate may return it again.
func (a *Allocator[H]) Release(h H) error {
	if !a.IsLive(h) {
		return ErrNotLive
	}
	i := int(h)
	a.words[i/64] &^= 1 << uint(i%64)
	a.live--
	return nil
}

// IsLive reports whether h is currently allocated.
func (a *Allocator[H]) IsLive(h H) bool {
	i := int(h)
	if i < 0 || i >= a.cap {
		return false
	}
	return a.words[i/64]&(1<<uint(i%64)) != 0
}

// Len returns the number of live handles.
func (a *Allocator[H]) Len() int { return a.live }

// Cap returns the fixed capacity.
func (a *Allocator[H]) Cap() int { return a.cap }

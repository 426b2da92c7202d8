// Package handoff moves exclusive ownership of a value into a slot for the
// duration of a call and always moves it back.
//
// A Slot is owned by whoever drives a script step. Native functions running
// inside that step borrow the value from the slot; nothing else can observe
// it until Enter returns.
package handoff

import (
	"errors"
	"sync"
)

var (
	ErrHandoffActive = errors.New("handoff already active")
	ErrNoHandoff     = errors.New("no handoff active")
)

// Slot holds at most one handed-off value at a time.
type Slot[T any] struct {
	placeholder func() T

	gate   sync.Mutex // held for the whole of Enter
	mu     sync.Mutex // guards value
	value  *T
	active bool
}

// New creates a slot. placeholder produces the value left with the owner
// while the real one is held by the slot.
func New[T any](placeholder func() T) *Slot[T] {
	return &Slot[T]{placeholder: placeholder}
}

// Enter moves *owner into the slot, replaces it with a placeholder and runs
// fn. The value is moved back into *owner afterwards, also when fn panics;
// the panic is re-raised once the value is back. A nested or concurrent Enter
// fails with ErrHandoffActive and leaves *owner untouched.
func (s *Slot[T]) Enter(owner *T, fn func() error) error {
	if !s.gate.TryLock() {
		return ErrHandoffActive
	}
	defer s.gate.Unlock()

	held := *owner
	*owner = s.placeholder()
	s.set(&held, true)

	defer func() {
		s.set(nil, false)
		*owner = held
	}()

	return fn()
}

// Borrow returns the value currently held by the slot. The pointer is only
// valid until the enclosing Enter returns.
func (s *Slot[T]) Borrow() (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, ErrNoHandoff
	}
	return s.value, nil
}

// Active reports whether a value is currently handed off.
func (s *Slot[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Slot[T]) set(v *T, active bool) {
	s.mu.Lock()
	s.value = v
	s.active = active
	s.mu.Unlock()
}

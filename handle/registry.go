package handle

import (
	"sync"

	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/native"
)

// Registry maps tokens to values of one type.
// Safe for concurrent use.
type Registry[T any] struct {
	entries   []entry[T]
	freeList  []uint32
	observers []Observer
	phase     errors.Phase
	mu        sync.RWMutex
	obsMu     sync.RWMutex
}

type entry[T any] struct {
	value T
	gen   uint32
	valid bool
}

// New creates an empty registry. phase labels the protocol errors raised
// for tokens that do not resolve.
func New[T any](phase errors.Phase) *Registry[T] {
	return &Registry[T]{
		entries:  make([]entry[T], 0, 64),
		freeList: make([]uint32, 0, 16),
		phase:    phase,
	}
}

func makeToken(idx, gen uint32) native.Token {
	return native.Token(uint64(gen)<<32 | uint64(idx+1))
}

func splitToken(tok native.Token) (idx, gen uint32, ok bool) {
	low := uint32(tok)
	if low == 0 {
		return 0, 0, false
	}
	return low - 1, uint32(tok >> 32), true
}

// Register stores v and returns its token.
func (r *Registry[T]) Register(v T) native.Token {
	r.mu.Lock()
	var idx uint32
	if n := len(r.freeList); n > 0 {
		idx = r.freeList[n-1]
		r.freeList = r.freeList[:n-1]
	} else {
		r.entries = append(r.entries, entry[T]{gen: 1})
		idx = uint32(len(r.entries) - 1)
	}
	e := &r.entries[idx]
	e.value = v
	e.valid = true
	tok := makeToken(idx, e.gen)
	r.mu.Unlock()

	r.notify(Event{Type: EventRegistered, Token: tok})
	return tok
}

// Lookup returns the value for tok if it is currently registered.
func (r *Registry[T]) Lookup(tok native.Token) (T, bool) {
	var zero T
	idx, gen, ok := splitToken(tok)
	if !ok {
		return zero, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if int(idx) >= len(r.entries) {
		return zero, false
	}
	e := r.entries[idx]
	if !e.valid || e.gen != gen {
		return zero, false
	}
	return e.value, true
}

// Resolve returns the value for tok. A token that is not registered means
// the engine and the adapters disagree about object lifetimes; Resolve
// panics rather than report it as a data condition.
func (r *Registry[T]) Resolve(tok native.Token) T {
	v, ok := r.Lookup(tok)
	if !ok {
		panic(errors.UnknownToken(r.phase, tok))
	}
	return v
}

// Release removes tok and returns its value. It reports false if tok was
// not registered.
func (r *Registry[T]) Release(tok native.Token) (T, bool) {
	var zero T
	idx, gen, ok := splitToken(tok)
	if !ok {
		return zero, false
	}

	r.mu.Lock()
	if int(idx) >= len(r.entries) {
		r.mu.Unlock()
		return zero, false
	}
	e := &r.entries[idx]
	if !e.valid || e.gen != gen {
		r.mu.Unlock()
		return zero, false
	}
	v := e.value
	e.value = zero
	e.valid = false
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	r.freeList = append(r.freeList, idx)
	r.mu.Unlock()

	r.notify(Event{Type: EventReleased, Token: tok})
	return v, true
}

// Len returns the number of registered values.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries) - len(r.freeList)
}

// Each calls fn for every registered value until fn returns false.
// fn must not call back into the registry.
func (r *Registry[T]) Each(fn func(native.Token, T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, e := range r.entries {
		if e.valid {
			if !fn(makeToken(uint32(i), e.gen), e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry[T]) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry[T]) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry[T]) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHandleEvent(e)
	}
}

package reactor

import "github.com/flowcell-dev/reactor/internal/graph"

// StateCell is a mutable, typed leaf of the reactive graph.
type StateCell[T any] struct {
	inner *graph.StateCell
}

// State constructs a StateCell holding initial.
func State[T any](initial T, opts ...CellOption[T]) *StateCell[T] {
	eq, onPanic, logger := mergeOptions(opts)
	inner := graph.NewStateCell(initial, wrapEquals(eq))
	if onPanic != nil {
		inner.SetOnPanic(onPanic)
	}
	if logger != nil {
		inner.SetLogger(logger)
	}
	return &StateCell[T]{inner: inner}
}

// Value reads the current value, registering a dependency edge if called
// from inside a derived cell's compute function.
func (s *StateCell[T]) Value() T {
	return as[T](s.inner.Value())
}

// Set writes a new value. A write judged equal to the current value by the
// cell's equality function is dropped: neither the value nor notification
// changes.
func (s *StateCell[T]) Set(v T) {
	s.inner.Set(v)
}

// Update is equivalent to Set(fn(Value())).
func (s *StateCell[T]) Update(fn func(T) T) {
	s.inner.Update(func(v any) any {
		return fn(as[T](v))
	})
}

// AddListener registers cb to run on every committed write. Returns a
// handle for RemoveListener.
func (s *StateCell[T]) AddListener(cb func()) ListenerHandle {
	return s.inner.AddListener(cb)
}

// RemoveListener detaches a listener previously registered with
// AddListener. A nil or already-removed handle is a no-op.
func (s *StateCell[T]) RemoveListener(h ListenerHandle) {
	s.inner.RemoveListener(h)
}

// Listen attaches a push Subscription delivering every value to onData
// until paused or cancelled.
func (s *StateCell[T]) Listen(onData func(T), onDone func()) *Subscription[T] {
	sub := graph.Listen(s.inner, func(v any) { onData(as[T](v)) }, onDone)
	return &Subscription[T]{inner: sub}
}

// Dispose marks the cell disposed: further writes are dropped, reads keep
// returning the last value, and all listeners and fan-out are released.
func (s *StateCell[T]) Dispose() {
	s.inner.Dispose()
}

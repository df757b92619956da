package reactor

import "github.com/flowcell-dev/reactor/internal/graph"

// DerivedCell is a lazily-recomputed, dependency-tracking typed view over
// other cells. It recomputes on read when dirty, never eagerly.
type DerivedCell[T any] struct {
	inner *graph.DerivedCell
}

// Derived constructs a DerivedCell from compute. compute runs for the first
// time on the first Value() call, not at construction.
func Derived[T any](compute func() T, opts ...CellOption[T]) *DerivedCell[T] {
	eq, onPanic, logger := mergeOptions(opts)
	inner := graph.NewDerivedCell(func() any {
		return compute()
	}, wrapEquals(eq))
	if onPanic != nil {
		inner.SetOnPanic(onPanic)
	}
	if logger != nil {
		inner.SetLogger(logger)
	}
	return &DerivedCell[T]{inner: inner}
}

// Value recomputes if dirty and returns the current value. It returns
// graph.ErrCycleDetected if compute transitively reads this same cell, or a
// *graph.ComputeError if compute panicked.
func (d *DerivedCell[T]) Value() (T, error) {
	v, err := d.inner.Value()
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v), nil
}

// AddListener registers cb to run whenever a recompute changes the cell's
// value (per its equality function).
func (d *DerivedCell[T]) AddListener(cb func()) ListenerHandle {
	return d.inner.AddListener(cb)
}

// RemoveListener detaches a listener previously registered with
// AddListener.
func (d *DerivedCell[T]) RemoveListener(h ListenerHandle) {
	d.inner.RemoveListener(h)
}

// Listen forces an initial compute to establish the cell's dependency set,
// then attaches a push Subscription delivering each value that a later
// recompute changes. Recomputation happens on read: a dependency change
// alone marks the cell dirty and pushes nothing.
func (d *DerivedCell[T]) Listen(onData func(T), onDone func()) *Subscription[T] {
	_, _ = d.inner.Value()
	sub := graph.Listen(d.inner, func(v any) { onData(as[T](v)) }, onDone)
	return &Subscription[T]{inner: sub}
}

// Dispose releases every dependency edge and prevents further
// recomputation.
func (d *DerivedCell[T]) Dispose() {
	d.inner.Dispose()
}

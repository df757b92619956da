// Package reactor implements a fine-grained reactive value graph: mutable
// state cells, lazily-recomputed derived cells, and batched notification,
// on top of the pooled dependency-tracking substrate in internal/graph.
package reactor

import "github.com/flowcell-dev/reactor/internal/graph"

// CellOption configures a StateCell or DerivedCell at construction time.
type CellOption[T any] struct {
	applyEquals func(a, b T) bool
	onPanic     func(recovered any)
	logger      graph.Logger
}

// WithEquals overrides the cell's default "identity then structural =="
// equality with eq. A custom equality that always reports true causes every
// write to be silently dropped — this is the documented contract, not a bug
// to guard against.
func WithEquals[T any](eq func(a, b T) bool) CellOption[T] {
	return CellOption[T]{applyEquals: eq}
}

// WithPanicHook installs fn as the cell's listener-panic handler, replacing
// the default (log via the cell's Logger and swallow).
func WithPanicHook[T any](fn func(recovered any)) CellOption[T] {
	return CellOption[T]{onPanic: fn}
}

// WithLogger installs l as the cell's diagnostics logger. Any type
// satisfying graph.Logger works, including *logrus.Logger.
func WithLogger[T any](l graph.Logger) CellOption[T] {
	return CellOption[T]{logger: l}
}

func mergeOptions[T any](opts []CellOption[T]) (eq func(a, b T) bool, onPanic func(any), logger graph.Logger) {
	for _, o := range opts {
		if o.applyEquals != nil {
			eq = o.applyEquals
		}
		if o.onPanic != nil {
			onPanic = o.onPanic
		}
		if o.logger != nil {
			logger = o.logger
		}
	}
	return
}

func wrapEquals[T any](eq func(a, b T) bool) func(a, b any) bool {
	if eq == nil {
		return nil
	}
	return func(a, b any) bool {
		return eq(a.(T), b.(T))
	}
}

// as converts an any coming out of the internal graph back to T. Every
// value stored through this package's State/Derived constructors was
// inserted as T, so the assertion never fails for well-formed use.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Batch defers notification of every state-cell write performed inside fn
// until fn (and any nested Batch) returns, then flushes enrolled cells in
// enrolment order. Nested batches do not flush; only the outermost does,
// even if fn panics.
func Batch[R any](fn func() R) R {
	return graph.Batch(fn)
}

// Untrack runs fn without registering any reactive dependency reads, even
// if called from inside a derived cell's compute function.
func Untrack[T any](fn func() T) T {
	return graph.Untrack(fn)
}

package reactor

import "github.com/flowcell-dev/reactor/internal/graph"

// ErrCycleDetected is returned by DerivedCell.Value when its compute
// function transitively reads the same cell it is currently computing.
var ErrCycleDetected = graph.ErrCycleDetected

// ErrDisposed names the disposed-cell error kind. No operation of this
// package returns it: writes to a disposed cell are dropped and reads return
// the last value. The pipeline package has its own pipeline.ErrDisposed.
var ErrDisposed = graph.ErrDisposed

// ComputeError wraps a panic recovered from a derived cell's compute
// function. Unwrap returns the recovered value if it was itself an error.
type ComputeError = graph.ComputeError

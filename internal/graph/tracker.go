package graph

import (
	"sync"

	"github.com/petermattis/goid"
)

// enrollable is the subset of StateCell the batch buffer needs: spec.md §3
// calls the buffer "a pre-sized, growable list of pending state cells".
type enrollable interface {
	flushPending()
}

// tracker is the process-wide, single-threaded reactive context spec.md §3
// describes: current_consumer, batch_depth and batch_buffer. It is a single
// package-level instance, not one per goroutine — the graph is documented
// single-threaded-cooperative (spec.md §5), and the teacher's goroutine-id
// stamp (github.com/petermattis/goid, internal/tracker.go's executingGID) is
// reused here as a confinement check rather than as a sharding key: a read
// made on a different goroutine while a derived cell is mid-recompute does
// not register a dependency edge on that cell, because currentConsumer
// compares trackingGID with the caller's goroutine. Writes are not checked.
type tracker struct {
	mu sync.Mutex

	currentConsumer Consumer
	trackingGID     int64
	tracking        bool

	batchDepth  int
	batchBuffer []enrollable
}

var global = &tracker{tracking: true}

func currentGID() int64 { return goid.Get() }

// currentConsumer returns the DerivedCell whose compute is presently
// running on this goroutine, or nil. Reads from a different goroutine than
// the one recomputing never see a stale consumer — each is confined to the
// goroutine that set it.
func currentConsumer() Consumer {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.currentConsumer == nil || !global.tracking {
		return nil
	}
	if currentGID() != global.trackingGID {
		return nil
	}
	return global.currentConsumer
}

// runWithConsumer installs node as the current consumer for the duration of
// fn, restoring whatever was installed before (including nil) on return —
// this is the explicit save/restore spec.md §9 asks for in place of
// thread-local dynamic scoping.
func runWithConsumer(node Consumer, fn func()) {
	global.mu.Lock()
	prevConsumer := global.currentConsumer
	prevGID := global.trackingGID
	global.currentConsumer = node
	global.trackingGID = currentGID()
	global.mu.Unlock()

	defer func() {
		global.mu.Lock()
		global.currentConsumer = prevConsumer
		global.trackingGID = prevGID
		global.mu.Unlock()
	}()

	fn()
}

// runUntracked suppresses dependency registration for the duration of fn.
func runUntracked(fn func()) {
	global.mu.Lock()
	prev := global.tracking
	global.tracking = false
	global.mu.Unlock()

	defer func() {
		global.mu.Lock()
		global.tracking = prev
		global.mu.Unlock()
	}()

	fn()
}

// track implements spec.md §4.2's fast/slow path dependency registration
// from a producer's perspective.
func track(p Producer, c Consumer) {
	pb := p.asProducer()

	if te := pb.trackingEdge; te != nil && te.consumer == c {
		if te.active {
			return
		}
		te.active = true
		moveFaninToTail(c.asConsumer(), te)
		return
	}

	n := acquireNode(p, c)
	appendFanin(c.asConsumer(), n)
	appendFanout(pb, n)
	n.rollback = pb.trackingEdge
	pb.trackingEdge = n
}

// enterBatch/exitBatch implement spec.md §4.4's BatchScope. Exposed as a
// generic free function (graph.Batch) rather than a method so the public
// reactor.Batch[R] can forward a typed return value straight through.
func enterBatch() {
	global.mu.Lock()
	global.batchDepth++
	global.mu.Unlock()
}

func exitBatch() {
	global.mu.Lock()
	global.batchDepth--
	depth := global.batchDepth
	var buf []enrollable
	if depth == 0 {
		buf = global.batchBuffer
		global.batchBuffer = nil
	}
	global.mu.Unlock()

	for _, s := range buf {
		s.flushPending()
	}
}

// enrollIfBatching appends s to the batch buffer and reports true if a
// batch is currently open; the check and the append happen under the same
// lock so a concurrent batch exit can't interleave between them. Callers
// still own the cell-local "inBatch" dedupe flag (spec.md §3).
func enrollIfBatching(s enrollable) bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.batchDepth == 0 {
		return false
	}
	global.batchBuffer = append(global.batchBuffer, s)
	return true
}

// Batch runs fn inside a batch scope, flushing enrolled state cells in
// enrolment order once the outermost batch exits — even if fn panics, since
// the flush happens in a deferred call that runs during unwind before the
// panic reaches Batch's caller (spec.md §4.4: "A batch that raises still
// flushes before the exception escapes").
func Batch[R any](fn func() R) R {
	enterBatch()
	defer exitBatch()
	return fn()
}

// Untrack runs fn without registering any reactive dependency reads.
func Untrack[T any](fn func() T) T {
	var result T
	runUntracked(func() { result = fn() })
	return result
}

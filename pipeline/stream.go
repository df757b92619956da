package pipeline

import (
	"sync"

	"github.com/flowcell-dev/reactor/internal/asyncutil"
)

const (
	streamCancelled uint8 = 1 << iota
	streamPaused
	streamScheduled
)

// taskStream is the custom pull-driven source spec.md §4.6 asks for in
// place of a coroutine generator: a queue drained by a single goroutine
// into an output channel, with explicit cancelled/paused/scheduled state
// instead of relying on channel close semantics to carry liveness.
type taskStream struct {
	mu     sync.Mutex
	queue  []*Event
	active bool

	flags asyncutil.Flags[uint8]
	wake  chan struct{}

	out chan *Event

	forceCh   chan struct{}
	forceOnce sync.Once
}

func newTaskStream(queueCapacityHint int) *taskStream {
	return &taskStream{
		active:  true,
		queue:   make([]*Event, 0, queueCapacityHint),
		wake:    make(chan struct{}, 1),
		out:     make(chan *Event),
		forceCh: make(chan struct{}),
	}
}

// events exposes the drained sequence a Transformer ranges over.
func (ts *taskStream) events() <-chan *Event { return ts.out }

// enqueue appends ev and wakes the drain loop.
func (ts *taskStream) enqueue(ev *Event) {
	ts.mu.Lock()
	ts.queue = append(ts.queue, ev)
	ts.mu.Unlock()
	ts.signalWake()
}

func (ts *taskStream) signalWake() {
	select {
	case ts.wake <- struct{}{}:
	default:
	}
}

// deactivate stops accepting new work; the drain loop closes the events
// channel the transformer ranges over once the queue drains (or immediately
// if already drained).
func (ts *taskStream) deactivate() {
	ts.mu.Lock()
	ts.active = false
	ts.mu.Unlock()
	ts.signalWake()
}

// cancel stops the drain loop immediately once it next checks its state;
// already-queued events are left untouched (the caller is expected to have
// drained and resolved them itself).
func (ts *taskStream) cancel() {
	ts.flags.Set(streamCancelled)
	ts.signalWake()
}

// forceCancel stops the drain loop immediately and cancels every event
// still queued or stuck trying to hand off to a busy transformer — the
// handoff is a blocking channel send, so a queued event can be "popped but
// not yet delivered" at the instant of a force dispose; forceCh lets the
// send itself be interrupted instead of leaving that event stranded.
func (ts *taskStream) forceCancel() {
	ts.forceOnce.Do(func() { close(ts.forceCh) })
}

// drainedQueue returns and clears whatever is still queued, for a
// non-force dispose to re-enqueue after snapshotting it.
func (ts *taskStream) drainedQueue() []*Event {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	q := ts.queue
	ts.queue = nil
	return q
}

// run is the drain loop of spec.md §4.6's "TaskStream core": check
// cancelled, check paused, check inactive-with-empty-queue, install/reuse a
// wake handle and await it, otherwise pop one event and emit it.
func (ts *taskStream) run() {
	defer close(ts.out)

	for {
		select {
		case <-ts.forceCh:
			ts.cancelRemaining()
			return
		default:
		}

		if ts.flags.Has(streamCancelled) {
			return
		}
		if ts.flags.Has(streamPaused) {
			select {
			case <-ts.wake:
			case <-ts.forceCh:
				ts.cancelRemaining()
				return
			}
			continue
		}

		ts.mu.Lock()
		if len(ts.queue) == 0 {
			inactive := !ts.active
			ts.mu.Unlock()
			if inactive {
				return
			}
			ts.flags.Set(streamScheduled)
			select {
			case <-ts.wake:
			case <-ts.forceCh:
				ts.flags.Clear(streamScheduled)
				ts.cancelRemaining()
				return
			}
			ts.flags.Clear(streamScheduled)
			continue
		}
		ev := ts.queue[0]
		ts.queue = ts.queue[1:]
		ts.mu.Unlock()

		select {
		case ts.out <- ev:
		case <-ts.forceCh:
			ev.cancel()
			ts.cancelRemaining()
			return
		}
	}
}

func (ts *taskStream) cancelRemaining() {
	ts.mu.Lock()
	q := ts.queue
	ts.queue = nil
	ts.mu.Unlock()
	for _, ev := range q {
		ev.cancel()
	}
}

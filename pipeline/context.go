package pipeline

import (
	"sync/atomic"
	"time"
)

// Context is the per-task handle spec.md §4.6 calls PipelineEventContext:
// it reports liveness and elapsed duration, and is cancelled cooperatively
// — the task decides when, if ever, to check it.
type Context interface {
	IsActive() bool
	Elapsed() time.Duration
	Done() <-chan struct{}
}

type eventContext struct {
	startedAt time.Time
	active    atomic.Bool
	done      chan struct{}
	doneOnce  atomic.Bool
}

func newEventContext() *eventContext {
	ctx := &eventContext{done: make(chan struct{})}
	ctx.active.Store(true)
	return ctx
}

// start stamps the stopwatch at task invocation (spec.md §4.6 execution
// order step (a)), not at event construction/enqueue — elapsed must not
// include time spent waiting in the queue.
func (c *eventContext) start() { c.startedAt = time.Now() }

func (c *eventContext) IsActive() bool { return c.active.Load() }

func (c *eventContext) Elapsed() time.Duration { return time.Since(c.startedAt) }

func (c *eventContext) Done() <-chan struct{} { return c.done }

// deactivate flips the context inactive. Safe to call more than once; the
// done channel closes exactly once.
func (c *eventContext) deactivate() {
	c.active.Store(false)
	if c.doneOnce.CompareAndSwap(false, true) {
		close(c.done)
	}
}

// Package pipeline runs tasks through a queue drained by a user-supplied
// Transformer, independent of the reactor package's reactive graph. Beyond
// the standard library and its logger, it depends only on the small helpers
// in internal/asyncutil.
package pipeline

import (
	"sync"

	"github.com/flowcell-dev/reactor/internal/asyncutil"
	"github.com/sirupsen/logrus"
)

// Logger is the pipeline's own diagnostics seam, mirroring reactor's graph
// package but kept independent: the two cores share no logging type.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Warnf(string, ...any)  {}
func (discardLogger) Debugf(string, ...any) {}

// DiscardLogger is the default Logger: silent.
var DiscardLogger Logger = discardLogger{}

// NewLogrusLogger returns a Logger backed by a fresh *logrus.Logger, for
// callers who want event lifecycle diagnostics (queued, dispatched, failed,
// and the pipeline's own dispose) without writing their own adapter.
func NewLogrusLogger() Logger {
	return logrus.New()
}

// Option configures a Pipeline at construction time.
type Option func(*pipelineOptions)

type pipelineOptions struct {
	logger            Logger
	queueCapacityHint int
}

// WithLogger installs l as the pipeline's diagnostics logger.
func WithLogger(l Logger) Option {
	return func(o *pipelineOptions) { o.logger = l }
}

// WithQueueCapacityHint preallocates the task queue's backing array to n,
// avoiding repeated growth for callers who know roughly how many tasks will
// be in flight at once. Purely a capacity hint: the queue still grows
// unbounded past n.
func WithQueueCapacityHint(n int) Option {
	return func(o *pipelineOptions) { o.queueCapacityHint = n }
}

// Pipeline drains a queue of tasks through a user-supplied Transformer,
// per spec.md §4.6.
type Pipeline struct {
	mu     sync.Mutex
	stream *taskStream

	transformer Transformer
	logger      Logger

	active   map[*Event]struct{}
	disposed bool

	resultsDrained chan struct{}
}

// New constructs a Pipeline backed by transformer. The drain loop and the
// transformer's result sink start running immediately.
func New(transformer Transformer, opts ...Option) *Pipeline {
	o := &pipelineOptions{logger: DiscardLogger}
	for _, opt := range opts {
		opt(o)
	}

	p := &Pipeline{
		stream:         newTaskStream(o.queueCapacityHint),
		transformer:    transformer,
		logger:         o.logger,
		active:         make(map[*Event]struct{}),
		resultsDrained: make(chan struct{}),
	}

	go p.stream.run()

	results := p.transformer(p.stream.events(), p.process)
	go func() {
		defer close(p.resultsDrained)
		for range results {
			// Results are observed only for their side effect of draining
			// the transformer's output; real values travel through each
			// event's own completer.
		}
	}()

	return p
}

// process starts ev's task and tracks it in the active set for the
// duration of its sub-stream, per spec.md §4.6's per-event lifecycle.
func (p *Pipeline) process(ev *Event) <-chan Result {
	p.mu.Lock()
	p.active[ev] = struct{}{}
	p.mu.Unlock()
	p.logger.Debugf("pipeline: dispatching event, %d active", len(p.active))

	sub := ev.run()
	out := make(chan Result, 1)

	go func() {
		defer close(out)
		for r := range sub {
			if r.Err != nil {
				p.logger.Warnf("pipeline: event failed: %v", r.Err)
			}
			out <- r
		}
		p.mu.Lock()
		delete(p.active, ev)
		p.mu.Unlock()
	}()

	return out
}

// Run enqueues task for execution and returns a future resolving with its
// result. If the pipeline is disposed, the future is already resolved with
// ErrDisposed.
func (p *Pipeline) Run(task Task) *asyncutil.Future[Result] {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return asyncutil.Resolved(Result{Err: ErrDisposed}, nil)
	}
	p.mu.Unlock()

	ev := newEvent(task)
	p.stream.enqueue(ev)
	p.logger.Debugf("pipeline: event queued")
	return ev.future
}

// Dispose tears the pipeline down. With force=true, every queued and active
// event is cancelled synchronously (each completer resolves with
// ErrCancelled) and the returned future is already resolved. Without
// force, Dispose collects the futures of queued and active events, wakes
// the source stream to let them finish, and waits for all of them —
// absorbing their errors, since dispose is a best-effort drain.
func (p *Pipeline) Dispose(force bool) *asyncutil.Future[struct{}] {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return asyncutil.Resolved(struct{}{}, nil)
	}
	p.disposed = true
	p.mu.Unlock()
	p.logger.Debugf("pipeline: disposing, force=%v", force)

	if force {
		p.mu.Lock()
		for ev := range p.active {
			ev.cancel()
		}
		p.mu.Unlock()
		// forceCancel interrupts the drain loop even mid-handoff: an event
		// already popped off the queue but blocked trying to reach a busy
		// transformer is cancelled there instead of being stranded. Force
		// dispose returns synchronously — it does not wait for tasks still
		// running in user code to actually unwind.
		p.stream.forceCancel()
		p.stream.cancelRemaining()
		return asyncutil.Resolved(struct{}{}, nil)
	}

	queued := p.stream.drainedQueue()

	p.mu.Lock()
	pending := make([]*Event, 0, len(queued)+len(p.active))
	pending = append(pending, queued...)
	for ev := range p.active {
		pending = append(pending, ev)
	}
	p.mu.Unlock()

	for _, ev := range queued {
		p.stream.enqueue(ev)
	}
	p.stream.deactivate()

	for _, ev := range pending {
		<-ev.future.Done()
	}

	<-p.resultsDrained

	future, completer := asyncutil.NewFuture[struct{}]()
	completer.Complete(struct{}{})
	return future
}

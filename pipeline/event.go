package pipeline

import (
	"github.com/flowcell-dev/reactor/internal/asyncutil"
)

// Result is what a task's completer resolves with.
type Result struct {
	Value any
	Err   error
}

// Task is the user-supplied unit of work a Pipeline runs. It may inspect
// ctx.IsActive to cooperatively abort; cancellation never interrupts
// running code.
type Task func(ctx Context) (any, error)

const (
	eventCancelled uint8 = 1 << iota
	eventClosed
	eventDoneEmitted
)

// Event is the internal record spec.md §4.6 calls PipelineEvent: a task,
// its external completer, and the context handed to the task.
type Event struct {
	task      Task
	completer *asyncutil.Completer[Result]
	future    *asyncutil.Future[Result]
	ctx       *eventContext

	flags asyncutil.Flags[uint8]
}

func newEvent(task Task) *Event {
	future, completer := asyncutil.NewFuture[Result]()
	return &Event{
		task:      task,
		completer: completer,
		future:    future,
		ctx:       newEventContext(),
	}
}

// cancel completes the event's completer with ErrCancelled (idempotent via
// asyncutil.Completer) and deactivates its context, without ever invoking
// task. Used on force-dispose and by the Droppable transformer policy.
func (e *Event) cancel() {
	e.ctx.deactivate()
	e.completer.Complete(Result{Err: ErrCancelled})
	e.flags.Set(eventCancelled)
}

// deactivate flips the event's context inactive without resolving its
// completer, so a running task can cooperatively notice and the eventual
// real result (success or error) still reaches the caller. Used by the
// Restartable transformer policy when a new event supersedes this one.
func (e *Event) deactivate() {
	e.ctx.deactivate()
}

// run executes the event's task per spec.md §4.6's execution order: start
// the stopwatch, await the task, complete the external completer (success
// or the error first on failure), then report done via the returned
// channel — closed after at most one send (none for a cancelled event).
func (e *Event) run() <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)
		defer e.ctx.deactivate()

		e.ctx.start()

		value, err := func() (v any, taskErr error) {
			defer func() {
				if r := recover(); r != nil {
					taskErr = &TaskError{Recovered: r}
				}
			}()
			return e.task(e.ctx)
		}()

		if err != nil {
			e.completer.Fail(err)
			if e.flags.Has(eventCancelled) {
				return
			}
			out <- Result{Err: err}
			return
		}

		e.completer.Complete(Result{Value: value})
		if e.flags.Has(eventCancelled) {
			return
		}
		out <- Result{Value: value}
	}()

	return out
}

package reactor

import "github.com/flowcell-dev/reactor/internal/graph"

// ListenerHandle identifies a callback registered with AddListener, for use
// with RemoveListener.
type ListenerHandle = graph.ListenerHandle

// Subscription is a cancellable, pausable push view over a cell, returned
// by StateCell.Listen and DerivedCell.Listen.
type Subscription[T any] struct {
	inner *graph.Subscription
}

// Pause suspends delivery. If resume is non-nil, the subscription resumes
// automatically once resume is closed or receives a value.
func (sub *Subscription[T]) Pause(resume <-chan struct{}) {
	sub.inner.Pause(resume)
}

// Resume clears a pause set by Pause.
func (sub *Subscription[T]) Resume() {
	sub.inner.Resume()
}

// Cancel detaches the subscription and invokes its onDone callback exactly
// once. Idempotent.
func (sub *Subscription[T]) Cancel() {
	sub.inner.Cancel()
}

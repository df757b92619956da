package graph

// subFlags bit positions for Subscription.status.
const (
	subCancelled uint8 = 1 << iota
	subPaused
)

// valueSource is the read-side capability a Subscription needs from either
// StateCell or DerivedCell: a value getter and the shared producerBase for
// listener (de)registration.
type valueSource interface {
	asProducer() *producerBase
	readAny() (any, error)
}

// Subscription is the internal, untyped half of spec.md §4.5's
// ReactiveSubscription; reactor.Subscription[T] wraps it with a typed
// onData callback.
type Subscription struct {
	source valueSource
	handle ListenerHandle

	onData func(any)
	onDone func()

	status uint8

	resumeWatch chan struct{}
	doneFired   bool
}

// Listen attaches a push subscription over source. For a derived cell,
// callers must force a compute before calling Listen so the dependency set
// is established before the first push (spec.md §4.5).
func Listen(source valueSource, onData func(any), onDone func()) *Subscription {
	sub := &Subscription{source: source, onData: onData, onDone: onDone}

	pb := source.asProducer()
	if pb.isDisposed() {
		sub.fireDone()
		return sub
	}

	sub.handle = pb.AddListener(func() {
		sub.deliver()
	})
	return sub
}

func (sub *Subscription) deliver() {
	if sub.status&(subCancelled|subPaused) != 0 {
		return
	}
	pb := sub.source.asProducer()
	if pb.isDisposed() {
		sub.fireDone()
		return
	}
	v, err := sub.source.readAny()
	if err != nil {
		return
	}
	sub.onData(v)
}

// Pause suspends delivery. If resume is non-nil, the subscription resumes
// automatically once resume is closed or receives a value.
func (sub *Subscription) Pause(resume <-chan struct{}) {
	if sub.status&subCancelled != 0 {
		return
	}
	sub.status |= subPaused

	if resume == nil {
		return
	}
	watch := make(chan struct{})
	sub.resumeWatch = watch
	go func() {
		<-resume
		if sub.resumeWatch == watch {
			sub.Resume()
		}
	}()
}

// Resume clears the paused flag.
func (sub *Subscription) Resume() {
	sub.status &^= subPaused
	sub.resumeWatch = nil
}

// Cancel detaches the listener and fires onDone exactly once. Idempotent.
func (sub *Subscription) Cancel() {
	if sub.status&subCancelled != 0 {
		return
	}
	sub.status |= subCancelled
	if sub.handle != nil {
		sub.source.asProducer().RemoveListener(sub.handle)
		sub.handle = nil
	}
	sub.fireDone()
}

func (sub *Subscription) fireDone() {
	if sub.doneFired {
		return
	}
	sub.doneFired = true
	sub.status |= subCancelled
	if sub.onDone != nil {
		sub.onDone()
	}
}

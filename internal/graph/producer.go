package graph

// Logger is the seam the graph uses for diagnostics it recovers from —
// compute panics, listener panics — without forcing a dependency on any
// concrete logging library on callers who don't want one. *logrus.Logger
// satisfies it; see reactor.WithLogger.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Warnf(string, ...any)  {}
func (discardLogger) Debugf(string, ...any) {}

// DiscardLogger is the default Logger: silent, matching coregx-signals'
// Options.OnPanic defaulting to a no-op.
var DiscardLogger Logger = discardLogger{}

// producerBase is the state spec.md §3 assigns to "ProducerBase": a
// listener list, an outgoing fan-out of DependencyNodes, the tracking_edge
// fast-path cache, and the {disposed, notifying} status flags. StateCell and
// DerivedCell both embed it.
type producerBase struct {
	listenersHead *listenerNode

	fanoutHead, fanoutTail *DependencyNode
	trackingEdge           *DependencyNode

	status uint8

	onPanic func(recovered any)
	logger  Logger
}

func (p *producerBase) init() {
	p.logger = DiscardLogger
}

func (p *producerBase) asProducer() *producerBase { return p }

func (p *producerBase) isDisposed() bool {
	return p.status&flagDisposed != 0
}

// AddListener prepends a ListenerNode; O(1). Registering the same callback
// more than once is allowed, per spec.md §4.1, and must be removed the same
// number of times.
func (p *producerBase) AddListener(cb func()) ListenerHandle {
	if p.isDisposed() {
		return nil
	}
	ln := &listenerNode{callback: cb, next: p.listenersHead}
	if p.listenersHead != nil {
		p.listenersHead.prev = ln
	}
	p.listenersHead = ln
	return ln
}

// RemoveListener removes the node identified by the handle returned from
// AddListener. A nil or already-removed handle is a no-op.
func (p *producerBase) RemoveListener(h ListenerHandle) {
	ln := h
	if ln == nil {
		return
	}
	if ln.prev != nil {
		ln.prev.next = ln.next
	} else if p.listenersHead == ln {
		p.listenersHead = ln.next
	}
	if ln.next != nil {
		ln.next.prev = ln.prev
	}
	ln.prev, ln.next = nil, nil
}

// notify walks the listener list (newest first, since AddListener prepends)
// invoking each callback, then walks the fan-out list marking every
// consumer dirty. Reentrant calls on the same producer are squashed per
// spec.md §4.1; listener panics are isolated so the iteration continues
// (spec.md §7's "must not raise... isolate the failure").
func (p *producerBase) notify() {
	if p.isDisposed() || p.status&flagNotifying != 0 {
		return
	}
	p.status |= flagNotifying
	defer func() { p.status &^= flagNotifying }()

	for ln := p.listenersHead; ln != nil; ln = ln.next {
		p.invokeListener(ln.callback)
	}

	for edge := p.fanoutHead; edge != nil; edge = edge.nextInFanout {
		edge.consumer.markDirty()
	}
}

func (p *producerBase) invokeListener(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			if p.onPanic != nil {
				p.onPanic(r)
			} else {
				p.logger.Warnf("reactor: listener panic recovered: %v", r)
			}
		}
	}()
	cb()
}

// dispose marks the producer disposed, drops every outgoing fan-out edge
// (releasing each to the pool) and releases the listener list, per spec.md
// §3's "a disposed producer drops further writes and drops all fan-out;
// listeners already registered are released."
func (p *producerBase) dispose() {
	if p.isDisposed() {
		return
	}
	p.status |= flagDisposed

	// Give every still-registered listener one final call with the
	// disposed flag already set, so adapters like Subscription that check
	// isDisposed() inside their callback can detach themselves.
	for ln := p.listenersHead; ln != nil; ln = ln.next {
		p.invokeListener(ln.callback)
	}

	for edge := p.fanoutHead; edge != nil; {
		next := edge.nextInFanout
		removeFanin(edge.consumer.asConsumer(), edge)
		releaseNode(edge)
		edge = next
	}
	p.fanoutHead, p.fanoutTail = nil, nil
	p.trackingEdge = nil
	p.listenersHead = nil
}

// consumerBase is the consumer-side capability: the fan-in list a
// DerivedCell tracks its own dependencies through.
type consumerBase struct {
	faninHead, faninTail *DependencyNode
}

func (c *consumerBase) asConsumer() *consumerBase { return c }

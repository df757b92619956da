package graph

// StateCell is the mutable leaf of the reactive graph (spec.md §3/§4.2). It
// is untyped at this layer; reactor.StateCell[T] wraps it with a generic
// facade the same way the teacher's root sig.go wraps internal.Signal.
type StateCell struct {
	producerBase

	value   any
	equals  func(a, b any) bool
	inBatch bool
}

// NewStateCell creates a state cell. equals may be nil, in which case
// defaultEquals (identity then structural ==) is used.
func NewStateCell(initial any, equals func(a, b any) bool) *StateCell {
	s := &StateCell{value: initial, equals: equals}
	s.init()
	return s
}

// defaultEquals is "identity then structural ==": reference types compare
// equal by identity through ==, value types structurally. Dynamic types
// that aren't comparable (slices, maps, funcs) would panic on ==; recover
// and treat them as never-equal instead of propagating that panic into
// caller code that never asked for a custom equality function.
func defaultEquals(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Value reads the stored value, registering a dependency edge on the
// currently-running DerivedCell's compute, if any.
func (s *StateCell) Value() any {
	if !s.isDisposed() {
		if c := currentConsumer(); c != nil {
			track(s, c)
		}
	}
	return s.value
}

// readAny satisfies valueSource for Subscription; a state cell read never
// fails.
func (s *StateCell) readAny() (any, error) { return s.Value(), nil }

// Set writes a new value. A write that the equality function judges equal
// to the current value is dropped entirely: neither the value nor
// notification happen (spec.md §4.2's documented contract, including the
// degenerate "always equal" case).
func (s *StateCell) Set(v any) {
	if s.isDisposed() {
		return
	}

	eq := s.equals
	if eq == nil {
		eq = defaultEquals
	}
	if eq(s.value, v) {
		return
	}

	s.value = v

	if !s.inBatch && enrollIfBatching(s) {
		s.inBatch = true
		return
	}
	if s.inBatch {
		return
	}

	s.notify()
}

// Update is equivalent to Set(fn(Value())).
func (s *StateCell) Update(fn func(any) any) {
	s.Set(fn(s.value))
}

// flushPending is called by BatchScope.flush for every state cell enrolled
// during the batch, in enrolment order.
func (s *StateCell) flushPending() {
	s.inBatch = false
	if !s.isDisposed() {
		s.notify()
	}
}

// Dispose marks the cell disposed: further writes are dropped, reads keep
// returning the last value, and all fan-out/listeners are released.
func (s *StateCell) Dispose() {
	s.dispose()
}

// SetOnPanic installs the panic hook used when a listener callback panics.
func (s *StateCell) SetOnPanic(fn func(any)) { s.onPanic = fn }

// SetLogger installs the diagnostics logger; nil resets to DiscardLogger.
func (s *StateCell) SetLogger(l Logger) {
	if l == nil {
		l = DiscardLogger
	}
	s.logger = l
}

package graph

// Bit flags for ProducerBase.status (spec.md §3: "status: bit flags
// { disposed, notifying }").
const (
	flagDisposed  uint8 = 1 << iota
	flagNotifying       // reentrant notify is a no-op while this is set
)

// Bit flags for DerivedCell.status (spec.md §3: "status: bit flags
// { dirty, running, disposed }", initial dirty).
const (
	flagDirty   uint8 = 1 << iota
	flagRunning       // recursive Value() while this is set fails with CycleDetected
)

package graph

import "sync"

// Producer is the capability shared by StateCell and DerivedCell: a node
// that carries listeners and an outgoing fan-out of DependencyNodes. Spec.md
// §9 calls for composition over inheritance here; producerBase is embedded
// by value in both concrete cell types instead of a base class.
type Producer interface {
	asProducer() *producerBase
}

// Consumer is the capability a DerivedCell carries in addition to Producer:
// an incoming fan-in of DependencyNodes and the ability to be marked dirty.
type Consumer interface {
	asConsumer() *consumerBase
	markDirty()
}

// DependencyNode is the pooled edge record linking one producer to one
// consumer, per spec.md §3. It carries two doubly-linked-list memberships
// (the producer's fan-out, the consumer's fan-in) plus the rollback pointer
// used to save/restore the producer's tracking_edge across nested
// recomputations.
type DependencyNode struct {
	producer Producer
	consumer Consumer

	// active marks this edge as touched during the consumer's current
	// compute pass; edges left inactive after a recompute are released.
	active bool

	prevInFanout, nextInFanout *DependencyNode
	prevInFanin, nextInFanin   *DependencyNode

	rollback *DependencyNode
}

// listenerNode is a singly-traversable doubly-linked node holding one
// parameterless callback. It lives only in a producer's listener list.
// AddListener hands its caller the *listenerNode itself as an opaque
// ListenerHandle: Go func values carry no usable identity (they are not
// comparable), so removal-by-token is the re-architecture spec.md §9
// prescribes for "listener callbacks as bare function values".
type listenerNode struct {
	callback func()
	prev, next *listenerNode
}

// ListenerHandle is the token returned by AddListener and required by
// RemoveListener.
type ListenerHandle = *listenerNode

var nodePool = sync.Pool{
	New: func() any { return &DependencyNode{} },
}

func acquireNode(producer Producer, consumer Consumer) *DependencyNode {
	n := nodePool.Get().(*DependencyNode)
	n.producer = producer
	n.consumer = consumer
	n.active = true
	return n
}

// releaseNode returns a node to the pool. Per spec.md §3 ("a released node
// carries no references"), every field is cleared first so the pool never
// pins a disposed producer or consumer in memory.
func releaseNode(n *DependencyNode) {
	*n = DependencyNode{}
	nodePool.Put(n)
}

func appendFanout(p *producerBase, n *DependencyNode) {
	n.prevInFanout = p.fanoutTail
	n.nextInFanout = nil
	if p.fanoutTail != nil {
		p.fanoutTail.nextInFanout = n
	} else {
		p.fanoutHead = n
	}
	p.fanoutTail = n
}

func removeFanout(p *producerBase, n *DependencyNode) {
	if n.prevInFanout != nil {
		n.prevInFanout.nextInFanout = n.nextInFanout
	} else {
		p.fanoutHead = n.nextInFanout
	}
	if n.nextInFanout != nil {
		n.nextInFanout.prevInFanout = n.prevInFanout
	} else {
		p.fanoutTail = n.prevInFanout
	}
	n.prevInFanout, n.nextInFanout = nil, nil
}

func appendFanin(c *consumerBase, n *DependencyNode) {
	n.prevInFanin = c.faninTail
	n.nextInFanin = nil
	if c.faninTail != nil {
		c.faninTail.nextInFanin = n
	} else {
		c.faninHead = n
	}
	c.faninTail = n
}

func removeFanin(c *consumerBase, n *DependencyNode) {
	if n.prevInFanin != nil {
		n.prevInFanin.nextInFanin = n.nextInFanin
	} else {
		c.faninHead = n.nextInFanin
	}
	if n.nextInFanin != nil {
		n.nextInFanin.prevInFanin = n.prevInFanin
	} else {
		c.faninTail = n.prevInFanin
	}
	n.prevInFanin, n.nextInFanin = nil, nil
}

// moveFaninToTail relocates an already-linked edge to the tail of the
// consumer's fan-in list (spec.md §4.2's "LRU-at-tail" fast path).
func moveFaninToTail(c *consumerBase, n *DependencyNode) {
	if c.faninTail == n {
		return
	}
	removeFanin(c, n)
	appendFanin(c, n)
}

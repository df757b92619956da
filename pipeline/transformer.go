package pipeline

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Transformer consumes the pipeline's drained event stream and returns a
// stream of results. It is a pure function of streams; its only coupling to
// Pipeline is the per-event sub-stream lifetime produced by process.
type Transformer func(events <-chan *Event, process func(*Event) <-chan Result) <-chan Result

// Sequential awaits each event's sub-stream before starting the next: at
// most one event active at a time.
func Sequential() Transformer {
	return func(events <-chan *Event, process func(*Event) <-chan Result) <-chan Result {
		out := make(chan Result)
		go func() {
			defer close(out)
			for ev := range events {
				for r := range process(ev) {
					out <- r
				}
			}
		}()
		return out
	}
}

// Concurrent subscribes to every event's sub-stream as it is drained,
// bounded by limit concurrently active tasks (0 means unbounded), fanned
// out with an errgroup.Group the way juju-juju's eventmultiplexer dispatches
// a drained batch of per-subscription work.
func Concurrent(limit int) Transformer {
	return func(events <-chan *Event, process func(*Event) <-chan Result) <-chan Result {
		out := make(chan Result)
		go func() {
			defer close(out)

			g := &errgroup.Group{}
			if limit > 0 {
				g.SetLimit(limit)
			}
			for ev := range events {
				ev := ev
				g.Go(func() error {
					for r := range process(ev) {
						out <- r
					}
					return nil
				})
			}
			g.Wait()
		}()
		return out
	}
}

// Droppable keeps at most one sub-stream open. While one is in flight,
// newly drained events are cancelled immediately without starting their
// task.
func Droppable() Transformer {
	return func(events <-chan *Event, process func(*Event) <-chan Result) <-chan Result {
		out := make(chan Result)
		go func() {
			var wg sync.WaitGroup
			defer close(out)
			defer wg.Wait()

			busy := false
			done := make(chan struct{})
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					if busy {
						ev.cancel()
						continue
					}
					busy = true
					sub := process(ev)
					wg.Add(1)
					go func() {
						defer wg.Done()
						for r := range sub {
							out <- r
						}
						close(done)
					}()
				case <-done:
					busy = false
					done = make(chan struct{})
				}
			}
		}()
		return out
	}
}

// Restartable cancels the in-flight sub-stream (flips its context's
// IsActive to false) when a new event is drained, then starts the new one.
// The superseded task keeps running to completion cooperatively; only its
// liveness flag changes.
func Restartable() Transformer {
	return func(events <-chan *Event, process func(*Event) <-chan Result) <-chan Result {
		out := make(chan Result)
		go func() {
			var wg sync.WaitGroup
			defer close(out)
			defer wg.Wait()

			var current *Event
			for ev := range events {
				if current != nil {
					current.deactivate()
				}
				current = ev
				sub := process(ev)
				wg.Add(1)
				go func(sub <-chan Result) {
					defer wg.Done()
					for r := range sub {
						out <- r
					}
				}(sub)
			}
		}()
		return out
	}
}

package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flowcell-dev/reactor/internal/asyncutil"
	"github.com/stretchr/testify/assert"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestPipelineSequential(t *testing.T) {
	p := New(Sequential())
	defer p.Dispose(true)

	var order []int
	var mu sync.Mutex

	for i := 0; i < 3; i++ {
		i := i
		f := p.Run(func(ctx Context) (any, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		})
		res, err := f.Result()
		assert.NoError(t, err)
		assert.NoError(t, res.Err)
		assert.Equal(t, i, res.Value)
	}

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestPipelineConcurrent(t *testing.T) {
	p := New(Concurrent(0))
	defer p.Dispose(true)

	const n = 5
	var started int32
	release := make(chan struct{})

	futures := make([]*asyncutil.Future[Result], 0, n)
	for i := 0; i < n; i++ {
		i := i
		futures = append(futures, p.Run(func(ctx Context) (any, error) {
			atomic.AddInt32(&started, 1)
			<-release
			return i, nil
		}))
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&started) == n })
	close(release)

	for _, f := range futures {
		res, err := f.Result()
		assert.NoError(t, err)
		assert.NoError(t, res.Err)
	}
}

func TestPipelineDroppable(t *testing.T) {
	p := New(Droppable())
	defer p.Dispose(true)

	release := make(chan struct{})
	first := p.Run(func(ctx Context) (any, error) {
		<-release
		return "first", nil
	})

	// Give the transformer a moment to pick up the first event before the
	// second is drained.
	time.Sleep(20 * time.Millisecond)

	second := p.Run(func(ctx Context) (any, error) {
		return "second", nil
	})

	r2, err := second.Result()
	assert.NoError(t, err)
	assert.True(t, errors.Is(r2.Err, ErrCancelled))

	close(release)
	r1, err := first.Result()
	assert.NoError(t, err)
	assert.Equal(t, "first", r1.Value)
}

func TestPipelineRestartable(t *testing.T) {
	p := New(Restartable())
	defer p.Dispose(true)

	var firstWasActive int32 = 1
	firstStarted := make(chan struct{})
	first := p.Run(func(ctx Context) (any, error) {
		close(firstStarted)
		<-ctx.Done()
		if ctx.IsActive() {
			atomic.StoreInt32(&firstWasActive, 1)
		} else {
			atomic.StoreInt32(&firstWasActive, 0)
		}
		return "first", nil
	})

	<-firstStarted
	second := p.Run(func(ctx Context) (any, error) {
		return "second", nil
	})

	r1, err := first.Result()
	assert.NoError(t, err)
	assert.Equal(t, "first", r1.Value)
	assert.Equal(t, int32(0), atomic.LoadInt32(&firstWasActive), "first task must observe its context go inactive")

	r2, err := second.Result()
	assert.NoError(t, err)
	assert.Equal(t, "second", r2.Value)
}

func TestPipelineDisposeForce(t *testing.T) {
	p := New(Sequential())

	release := make(chan struct{})
	started := make(chan struct{})
	running := p.Run(func(ctx Context) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	queued := p.Run(func(ctx Context) (any, error) {
		return "never runs", nil
	})

	done := p.Dispose(true)
	_, err := done.Result()
	assert.NoError(t, err)

	qr, err := queued.Result()
	assert.NoError(t, err)
	assert.True(t, errors.Is(qr.Err, ErrCancelled))

	close(release)
	rr, _ := running.Result()
	assert.True(t, errors.Is(rr.Err, ErrCancelled))

	after := p.Run(func(ctx Context) (any, error) { return nil, nil })
	ar, err := after.Result()
	assert.NoError(t, err)
	assert.True(t, errors.Is(ar.Err, ErrDisposed))
}

func TestPipelineDisposeDrains(t *testing.T) {
	p := New(Sequential())

	done := make(chan struct{})
	f := p.Run(func(ctx Context) (any, error) {
		close(done)
		return "ok", nil
	})

	<-done
	disposed := p.Dispose(false)
	_, err := disposed.Result()
	assert.NoError(t, err)

	r, _ := f.Result()
	assert.Equal(t, "ok", r.Value)
}

func TestTaskPanicBecomesTaskError(t *testing.T) {
	p := New(Sequential())
	defer p.Dispose(true)

	f := p.Run(func(ctx Context) (any, error) {
		panic("boom")
	})

	r, err := f.Result()
	assert.NoError(t, err)
	var taskErr *TaskError
	assert.ErrorAs(t, r.Err, &taskErr)
}

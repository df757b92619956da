package reactor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	t.Run("defers notification until the outermost batch exits", func(t *testing.T) {
		log := []string{}
		count := State(0)
		count.AddListener(func() {
			log = append(log, fmt.Sprintf("notified %d", count.Value()))
		})

		Batch(func() int {
			count.Set(1)
			count.Set(2)
			log = append(log, "inside batch")
			return 0
		})

		assert.Equal(t, []string{"inside batch", "notified 2"}, log)
	})

	t.Run("nested batches only flush once, at the outermost exit", func(t *testing.T) {
		log := []string{}
		count := State(0)
		count.AddListener(func() {
			log = append(log, fmt.Sprintf("notified %d", count.Value()))
		})

		Batch(func() int {
			count.Set(1)
			Batch(func() int {
				count.Set(2)
				return 0
			})
			log = append(log, "inside outer")
			return 0
		})

		assert.Equal(t, []string{"inside outer", "notified 2"}, log)
	})

	t.Run("multiple cells flush in enrolment order", func(t *testing.T) {
		log := []string{}
		a := State(0)
		b := State(0)
		a.AddListener(func() { log = append(log, "a") })
		b.AddListener(func() { log = append(log, "b") })

		Batch(func() int {
			b.Set(1)
			a.Set(1)
			return 0
		})

		assert.Equal(t, []string{"b", "a"}, log)
	})

	t.Run("derived cells recompute lazily on the next read after a batch", func(t *testing.T) {
		runs := 0
		count := State(1)
		double := Derived(func() int {
			runs++
			return count.Value() * 2
		})
		_, _ = double.Value()
		assert.Equal(t, 1, runs)

		Batch(func() int {
			count.Set(2)
			count.Set(3)
			return 0
		})
		assert.Equal(t, 1, runs, "a derived cell must not recompute during the batch itself")

		v, _ := double.Value()
		assert.Equal(t, 6, v)
		assert.Equal(t, 2, runs)
	})

	t.Run("a batch that panics still flushes before the panic escapes", func(t *testing.T) {
		log := []string{}
		count := State(0)
		count.AddListener(func() {
			log = append(log, fmt.Sprintf("notified %d", count.Value()))
		})

		assert.Panics(t, func() {
			Batch(func() int {
				count.Set(1)
				panic("boom")
			})
		})

		assert.Equal(t, []string{"notified 1"}, log)
	})

	t.Run("untrack suppresses dependency registration", func(t *testing.T) {
		runs := 0
		a := State(1)
		b := State(2)
		sum := Derived(func() int {
			runs++
			return a.Value() + Untrack(func() int { return b.Value() })
		})

		v, _ := sum.Value()
		assert.Equal(t, 3, v)
		assert.Equal(t, 1, runs)

		b.Set(100)
		v, _ = sum.Value()
		assert.Equal(t, 3, v, "sum must not see b's change since it was read untracked")
		assert.Equal(t, 1, runs)

		a.Set(5)
		v, _ = sum.Value()
		assert.Equal(t, 105, v)
		assert.Equal(t, 2, runs)
	})
}

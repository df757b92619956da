package reactor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCell(t *testing.T) {
	t.Run("set and read", func(t *testing.T) {
		count := State(0)
		assert.Equal(t, 0, count.Value())

		count.Set(10)
		assert.Equal(t, 10, count.Value())
	})

	t.Run("equal writes are dropped", func(t *testing.T) {
		log := []string{}
		count := State(0)
		count.AddListener(func() {
			log = append(log, fmt.Sprintf("notified %d", count.Value()))
		})

		count.Set(0)
		assert.Empty(t, log)

		count.Set(1)
		assert.Equal(t, []string{"notified 1"}, log)
	})

	t.Run("custom equality suppresses notification", func(t *testing.T) {
		log := []string{}
		count := State(0, WithEquals(func(a, b int) bool { return true }))
		count.AddListener(func() {
			log = append(log, "notified")
		})

		count.Set(5)
		assert.Empty(t, log)
		assert.Equal(t, 0, count.Value(), "value must not change when equals always reports true")
	})

	t.Run("update applies a function to the current value", func(t *testing.T) {
		count := State(1)
		count.Update(func(v int) int { return v + 1 })
		assert.Equal(t, 2, count.Value())
	})

	t.Run("remove listener stops notification", func(t *testing.T) {
		log := []string{}
		count := State(0)
		h := count.AddListener(func() { log = append(log, "fired") })

		count.Set(1)
		count.RemoveListener(h)
		count.Set(2)

		assert.Equal(t, []string{"fired"}, log)
	})

	t.Run("dispose drops writes and keeps last value", func(t *testing.T) {
		count := State(1)
		count.Dispose()

		count.Set(99)
		assert.Equal(t, 1, count.Value())
	})
}

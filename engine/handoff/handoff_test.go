package handoff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	Name  string
	Count int
}

func newSlot() *Slot[world] {
	return New(func() world { return world{Name: "placeholder"} })
}

func TestEnter_PlaceholderDuringCall(t *testing.T) {
	slot := newSlot()
	w := world{Name: "real", Count: 1}

	err := slot.Enter(&w, func() error {
		assert.Equal(t, "placeholder", w.Name, "owner should see the placeholder")

		held, err := slot.Borrow()
		require.NoError(t, err)
		assert.Equal(t, "real", held.Name)
		held.Count++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, world{Name: "real", Count: 2}, w)
	assert.False(t, slot.Active())
}

func TestEnter_ReturnsFnError(t *testing.T) {
	slot := newSlot()
	w := world{Name: "real"}
	boom := errors.New("boom")

	err := slot.Enter(&w, func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "real", w.Name)
}

func TestEnter_NestedFails(t *testing.T) {
	slot := newSlot()
	outer := world{Name: "outer"}
	inner := world{Name: "inner"}

	var nestedErr error
	err := slot.Enter(&outer, func() error {
		nestedErr = slot.Enter(&inner, func() error {
			t.Fatal("nested fn must not run")
			return nil
		})
		return nil
	})

	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrHandoffActive)
	assert.Equal(t, "inner", inner.Name, "failed Enter must not touch its owner")
	assert.Equal(t, "outer", outer.Name)
}

func TestEnter_RestoresOnPanic(t *testing.T) {
	slot := newSlot()
	w := world{Name: "real", Count: 7}

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = slot.Enter(&w, func() error {
			panic("kaboom")
		})
	})

	assert.Equal(t, world{Name: "real", Count: 7}, w)
	assert.False(t, slot.Active())

	// Slot is usable again.
	require.NoError(t, slot.Enter(&w, func() error { return nil }))
}

func TestBorrow_WithoutHandoff(t *testing.T) {
	slot := newSlot()

	v, err := slot.Borrow()
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrNoHandoff)
}

func TestEnter_SequentialCalls(t *testing.T) {
	slot := newSlot()
	w := world{}

	for i := 0; i < 3; i++ {
		require.NoError(t, slot.Enter(&w, func() error {
			held, err := slot.Borrow()
			if err != nil {
				return err
			}
			held.Count++
			return nil
		}))
	}
	assert.Equal(t, 3, w.Count)
}

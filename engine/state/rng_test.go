package state

import (
	"testing"

	"github.com/nathoo/ruinscript/types"
)

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		a := rng1.Roll(6)
		b := rng2.Roll(6)
		if a != b {
			t.Fatalf("roll %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_Roll_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		r := rng.Roll(6)
		if r < 1 || r > 6 {
			t.Fatalf("roll out of range [1,6]: got %d", r)
		}
	}
}

func TestRNG_Range_SwappedBounds(t *testing.T) {
	rng := NewRNG(5)

	for i := 0; i < 200; i++ {
		n := rng.Range(10, 3)
		if n < 3 || n > 10 {
			t.Fatalf("range out of [3,10]: got %d", n)
		}
	}
}

func TestRNG_Range_SingleValue(t *testing.T) {
	rng := NewRNG(1)

	for i := 0; i < 10; i++ {
		if n := rng.Range(7, 7); n != 7 {
			t.Fatalf("expected 7, got %d", n)
		}
	}
}

func TestRestoreRNG_ContinuesSequence(t *testing.T) {
	rng := NewRNG(7)
	for i := 0; i < 5; i++ {
		rng.Range(1, 100)
	}
	restored := RestoreRNG(7, rng.Position())

	for i := 0; i < 10; i++ {
		a := rng.Range(1, 100)
		b := restored.Range(1, 100)
		if a != b {
			t.Fatalf("draw %d after restore: got %d and %d", i, a, b)
		}
	}
}

func TestRandInt_AdvancesStatePosition(t *testing.T) {
	s := &types.State{RNGSeed: 11}

	first := RandInt(s, 1, 1000)
	if s.RNGPosition == 0 {
		t.Fatal("expected position to advance")
	}

	replay := &types.State{RNGSeed: 11}
	if got := RandInt(replay, 1, 1000); got != first {
		t.Errorf("same seed and position gave %d, want %d", got, first)
	}
	second := RandInt(s, 1, 1000)
	third := RandInt(replay, 1, 1000)
	if second != third {
		t.Errorf("second draws differ: %d vs %d", second, third)
	}
}

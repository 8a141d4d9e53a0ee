package vox

import "testing"

func TestLCGRandIsDeterministic(t *testing.T) {
	seedA := uint32(12345)
	seedB := uint32(12345)

	for i := 0; i < 1000; i++ {
		a := lcgRand(&seedA)
		b := lcgRand(&seedB)
		if a != b {
			t.Fatalf("step %d: lcgRand diverged for identical seeds: %v != %v", i, a, b)
		}
		if a < 0.0 || a >= 1.0 {
			t.Fatalf("step %d: lcgRand out of [0,1): %v", i, a)
		}
	}
}

func TestLCGRandZeroSeedCollapses(t *testing.T) {
	seed := uint32(0)
	for i := 0; i < 5; i++ {
		if v := lcgRand(&seed); v != 0.0 {
			t.Fatalf("expected zero seed to stay collapsed at zero, got %v at step %d", v, i)
		}
	}
}

func TestNewWiggleRejectsZeroSeed(t *testing.T) {
	if _, err := NewWiggle(0.01, 1.0, 0); err == nil {
		t.Fatal("expected error for zero seed")
	}
}

func TestNewWiggleRejectsUnstableStep(t *testing.T) {
	if _, err := NewWiggle(1.0, 1.0, 1); err == nil {
		t.Fatal("expected error when dtime*frequency >= 0.5")
	}
}

func TestWiggleProcessStaysBounded(t *testing.T) {
	w := mustNewWiggle(1.0/48000.0, 6.0, 7)
	for i := 0; i < 48000; i++ {
		v := w.Process()
		if v < -2.0 || v > 2.0 {
			t.Fatalf("step %d: wiggle value out of expected range: %v", i, v)
		}
	}
}

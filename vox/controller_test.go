package vox

import (
	"math"
	"testing"
)

func TestFrequencyPIDTracksTargetSmoothly(t *testing.T) {
	pid := NewPIDParam(50.0, 20.0, 0.3)
	f := NewFrequency(FrequencyPID, 0.02, 1, 140.0, 48000.0)
	f.Set(220.0, false)

	var last float64
	for i := 0; i < 200; i++ {
		f.update(0.02, 0.0, 0.0, 5.0)
		// get advances the PID loop by one sample; a 20ms block at 48kHz
		// is 960 samples.
		for s := 0; s < 960; s++ {
			last = f.get(pid, float64(s)/960.0)
			if math.IsNaN(last) || math.IsInf(last, 0) {
				t.Fatalf("block %d: non-finite frequency: %v", i, last)
			}
		}
	}
	if math.Abs(last-220.0) > 5.0 {
		t.Fatalf("expected PID tracking to converge near 220Hz, got %v", last)
	}
}

func TestFrequencyRawSmoothingTracksTargetWithoutPID(t *testing.T) {
	pid := NewPIDParam(50.0, 20.0, 0.3)
	f := NewFrequency(FrequencyRawSmoothing, 0.02, 1, 140.0, 48000.0)
	f.Set(220.0, false)

	var last float64
	for i := 0; i < 200; i++ {
		f.update(0.02, 0.0, 0.0, 5.0)
		last = f.get(pid, 1.0)
		if math.IsNaN(last) || math.IsInf(last, 0) {
			t.Fatalf("block %d: non-finite frequency: %v", i, last)
		}
	}
	if math.Abs(last-220.0) > 5.0 {
		t.Fatalf("expected raw-smoothing tracking to converge near 220Hz, got %v", last)
	}
}

func TestFrequencySetWithResetSnapsImmediately(t *testing.T) {
	pid := NewPIDParam(50.0, 20.0, 0.3)
	f := NewFrequency(FrequencyRawSmoothing, 0.02, 1, 140.0, 48000.0)
	f.Set(300.0, true)
	if got := f.get(pid, 1.0); math.Abs(got-300.0) > 1e-9 {
		t.Fatalf("expected immediate snap to 300Hz, got %v", got)
	}
}

func TestIntensityADSRRisesOnTriggerAndDecaysOnRelease(t *testing.T) {
	i := NewIntensity(IntensityADSR, 48000.0)
	i.Trigger(0.8)

	const interval = 0.001
	for n := 0; n < 200; n++ {
		i.updateBlock(true, interval)
	}
	peak := i.get(1.0)
	if peak <= 0 {
		t.Fatalf("expected ADSR envelope to rise after Trigger, got %v", peak)
	}

	for n := 0; n < 500; n++ {
		i.updateBlock(false, interval)
	}
	released := i.get(1.0)
	if released >= peak {
		t.Fatalf("expected ADSR envelope to decay once sound stops, got %v (was %v)", released, peak)
	}
}

func TestIntensityPIDDecaysToZeroWhenSilent(t *testing.T) {
	i := NewIntensity(IntensityPID, 48000.0)
	pid := NewPIDParam(10.0, 100.0, 0.0)
	for n := 0; n < 2000; n++ {
		i.processSample(true, false, pid)
	}
	if i.get(1.0) <= 0 {
		t.Fatalf("expected PID intensity to rise while sounding")
	}
	for n := 0; n < 20000; n++ {
		i.processSample(false, false, pid)
	}
	if got := i.get(1.0); got > 1e-6 {
		t.Fatalf("expected PID intensity to decay to ~0 once silent, got %v", got)
	}
}

func TestManagedControllerWiresSelectedModes(t *testing.T) {
	params := DefaultManagedParams()
	params.FrequencyMode = FrequencyRawSmoothing
	params.IntensityMode = IntensityADSR

	ctrl := NewManagedController(1.0, 48000.0, 7, params.FrequencyMode, params.IntensityMode)
	ctrl.Sound = true
	ctrl.Intensity.Trigger(0.9)
	ctrl.Frequency.Set(330.0, true)

	var out float64
	for n := 0; n < 48000; n++ {
		out = ctrl.Process(params)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		t.Fatalf("expected finite engine output, got %v", out)
	}
	if got := ctrl.Intensity.get(1.0); got <= 0 {
		t.Fatalf("expected ADSR-mode intensity to be nonzero after trigger, got %v", got)
	}
	if got := ctrl.Frequency.get(params.FrequencyPID, 1.0); math.Abs(got-330.0) > 5.0 {
		t.Fatalf("expected raw-smoothing frequency near 330Hz, got %v", got)
	}
}

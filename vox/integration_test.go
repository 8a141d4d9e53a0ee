package vox

import (
	"math"
	"testing"
)

func dftBinMagnitude(samples []float64, bin int) float64 {
	n := len(samples)
	var re, im float64
	for i := 0; i < n; i++ {
		phase := -2.0 * math.Pi * float64(bin*i) / float64(n)
		re += samples[i] * math.Cos(phase)
		im += samples[i] * math.Sin(phase)
	}
	return math.Hypot(re, im)
}

func twoStrongestPeaksNear(samples []float64, sampleRate int, minHz, maxHz float64) (float64, float64) {
	n := len(samples)
	minBin := int(minHz * float64(n) / float64(sampleRate))
	maxBin := int(maxHz * float64(n) / float64(sampleRate))
	if minBin < 1 {
		minBin = 1
	}
	if maxBin > n/2-1 {
		maxBin = n/2 - 1
	}

	bestBin1, bestBin2 := minBin, minBin
	bestMag1, bestMag2 := 0.0, 0.0
	for k := minBin; k <= maxBin; k++ {
		mag := dftBinMagnitude(samples, k)
		if mag > bestMag1 {
			bestMag2, bestBin2 = bestMag1, bestBin1
			bestMag1, bestBin1 = mag, k
		} else if mag > bestMag2 {
			bestMag2, bestBin2 = mag, k
		}
	}

	f1 := float64(bestBin1) * float64(sampleRate) / float64(n)
	f2 := float64(bestBin2) * float64(sampleRate) / float64(n)
	if f1 > f2 {
		return f2, f1
	}
	return f1, f2
}

// measureFundamentalFreq returns the frequency of the strongest
// autocorrelation lag between 50Hz and 1000Hz. Zero-crossing counting is
// not used: a vowel's formant ripple crosses zero several times a period.
func measureFundamentalFreq(samples []float64, sampleRate float64) float64 {
	x := samples[len(samples)/10:]
	bestLag, bestCorr := 0, 0.0
	for lag := int(sampleRate / 1000.0); lag <= int(sampleRate/50.0) && lag < len(x); lag++ {
		var c float64
		for i := 0; i+lag < len(x); i++ {
			c += x[i] * x[i+lag]
		}
		if c > bestCorr {
			bestLag, bestCorr = lag, c
		}
	}
	if bestLag == 0 {
		return 0
	}
	return sampleRate / float64(bestLag)
}

// renderVowel optionally selects a tongue preset (by note-range index,
// -1 to leave the default resting shape) then sings pitchNote, which
// must fall past every preset/constriction/velum/routine note range so
// HandleEvent routes it to the pitched voice stack; the raw note value
// is used directly as the MIDI pitch (440*2^((note-69)/12)).
func renderVowel(t *testing.T, pitchNote uint8, tonguePreset int, sampleRate float64, seconds float64) []float64 {
	t.Helper()
	s := NewSynth()
	s.EnsureEngine(sampleRate)

	if tonguePreset >= 0 {
		s.HandleEvent(0.0, NoteOnEvent{Note: uint8(tonguePreset), Velocity: 0.5})
	}
	s.HandleEvent(0.0, NoteOnEvent{Note: pitchNote, Velocity: 0.8})

	dt := 1.0 / sampleRate
	frames := int(seconds * sampleRate)
	out := make([]float64, frames)
	for i := range out {
		out[i] = s.Process(dt)
	}
	return out
}

// S4: singing a note addressed past every preset/routine range must
// produce output whose fundamental tracks the MIDI-derived target
// frequency. Note 64 is E4 (329.63Hz).
func TestSynthFundamentalMatchesRequestedNote(t *testing.T) {
	const sampleRate = 48000.0
	samples := renderVowel(t, 64, -1, sampleRate, 1.0)

	// Give the PID frequency controller time to settle before measuring.
	settleFrames := int(0.5 * sampleRate)
	measured := measureFundamentalFreq(samples[settleFrames:], sampleRate)

	const want = 329.63
	if math.Abs(measured-want)/want > 0.15 {
		t.Fatalf("expected fundamental near %.2fHz, measured %.2fHz", want, measured)
	}
}

// S1: a sustained vowel must show two clear formant peaks in a plausible
// frequency ordering (F1 below F2) rather than a flat or noise-only
// spectrum.
func TestSynthVowelHasTwoOrderedFormants(t *testing.T) {
	const sampleRate = 48000.0
	samples := renderVowel(t, 48, 2, sampleRate, 0.5)

	settleFrames := int(0.3 * sampleRate)
	tail := samples[settleFrames:]

	f1, f2 := twoStrongestPeaksNear(tail, int(sampleRate), 200.0, 3000.0)
	if f1 <= 0 || f2 <= 0 {
		t.Fatalf("expected two nonzero formant peaks, got f1=%v f2=%v", f1, f2)
	}
	if f1 >= f2 {
		t.Fatalf("expected f1 < f2, got f1=%v f2=%v", f1, f2)
	}
}

// S6: identical seed, parameters and event timing must produce bit-exact
// output across independent Synth instances.
func TestSynthIsDeterministicAcrossInstances(t *testing.T) {
	const sampleRate = 48000.0
	a := renderVowel(t, 60, -1, sampleRate, 0.2)
	b := renderVowel(t, 60, -1, sampleRate, 0.2)

	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d diverged: %v != %v", i, a[i], b[i])
		}
	}
}

// Every produced sample must stay finite throughout a full note-on/
// note-off cycle, including the intensity release tail after note-off.
func TestSynthFullNoteCycleStaysFinite(t *testing.T) {
	const sampleRate = 48000.0
	s := NewSynth()
	s.EnsureEngine(sampleRate)

	const note = uint8(60) // well past every preset/velum/routine note range

	dt := 1.0 / sampleRate
	s.HandleEvent(0.0, NoteOnEvent{Note: note, Velocity: 0.9})
	for i := 0; i < int(0.3*sampleRate); i++ {
		out := s.Process(dt)
		if math.IsNaN(out) || math.IsInf(out, 0) {
			t.Fatalf("note-on phase: non-finite output at step %d: %v", i, out)
		}
	}

	s.HandleEvent(0.3, NoteOffEvent{Note: note})
	for i := 0; i < int(0.3*sampleRate); i++ {
		out := s.Process(dt)
		if math.IsNaN(out) || math.IsInf(out, 0) {
			t.Fatalf("note-off phase: non-finite output at step %d: %v", i, out)
		}
	}
}

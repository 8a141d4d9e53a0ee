package vox

import "github.com/cwbudde/algo-approx"

// midiNoteToFreq converts a MIDI note number to frequency in Hz using
// A4 (note 69) = 440Hz equal temperament.
func midiNoteToFreq(note int) float64 {
	const a4Freq = 440.0
	const a4Note = 69
	exponent := float64(note-a4Note) / 12.0
	return a4Freq * pow2Approx(exponent)
}

// pow2Approx computes 2^x via a fast exponential approximation rather
// than math.Exp2, matching the piano's approach to pitch-ratio math
// where exactness matters less than avoiding a full libm call on
// every note-on and pitch-bend update.
func pow2Approx(x float64) float64 {
	const ln2 = 0.69314718055994530942
	return float64(approx.FastExp(float32(x * ln2)))
}

// pitchBendToRatio converts a normalized pitch-bend value in [-1, 1]
// to a frequency multiplier spanning +/- semitones.
func pitchBendToRatio(value float64, semitones float64) float64 {
	return pow2Approx(value * semitones / 12.0)
}

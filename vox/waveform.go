package vox

// WaveformRecorder buffers one full glottal period at a time, for a
// hosting GUI's oscilloscope display: "current" accumulates samples
// until the glottal phase wraps, at which point it becomes "previous"
// (a complete, stable period) and a fresh "current" begins.
type WaveformRecorder struct {
	waveform  []float32
	waveform2 []float32
	lastPhase float64
}

// NewWaveformRecorder constructs an empty recorder.
func NewWaveformRecorder() *WaveformRecorder {
	return &WaveformRecorder{}
}

// Record appends one sample, swapping buffers on a period
// boundary (phase wraparound).
func (w *WaveformRecorder) Record(phase float64, x float64) {
	if w.lastPhase > phase {
		w.waveform, w.waveform2 = w.waveform2, w.waveform
		w.waveform2 = w.waveform2[:0]
	}
	w.lastPhase = phase
	w.waveform2 = append(w.waveform2, float32(x))
}

// Waveform returns the most recently completed, stable period.
func (w *WaveformRecorder) Waveform() []float32 { return w.waveform }

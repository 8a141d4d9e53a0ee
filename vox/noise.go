package vox

import "math"

// biquadTDF2 is a canonical transposed Direct-Form-II biquad. Two
// accumulator registers, no separate input/output history — the form the
// source's DSP library uses for the noise coloring filters.
type biquadTDF2 struct {
	b0, b1, b2 float64
	a1, a2     float64
	w1, w2     float64
}

// newBandpass builds a constant-0dB-peak-gain RBJ band-pass biquad
// (Audio EQ Cookbook) centered at frequency Hz with quality factor q.
func newBandpass(sampleRate, frequency, q float64) biquadTDF2 {
	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	a0 := 1.0 + alpha
	return biquadTDF2{
		b0: alpha / a0,
		b1: 0,
		b2: -alpha / a0,
		a1: -2.0 * cosw0 / a0,
		a2: (1.0 - alpha) / a0,
	}
}

func (f *biquadTDF2) process(x float64) float64 {
	y := f.b0*x + f.w1
	f.w1 = f.b1*x - f.a1*y + f.w2
	f.w2 = f.b2*x - f.a2*y
	return y
}

// Noise is seeded white noise passed through a fixed band-pass filter —
// the aspiration source (500 Hz) and the fricative/turbulence source
// (1000 Hz) both use this with Q = 0.5.
type Noise struct {
	rand   uint32
	filter biquadTDF2
}

// NewNoise constructs a noise source. seed must be non-zero.
func NewNoise(seed uint32, sampleRate, frequency float64) *Noise {
	if seed == 0 {
		panic("vox: noise seed must be non-zero")
	}
	return &Noise{
		rand:   seed,
		filter: newBandpass(sampleRate, frequency, 0.5),
	}
}

func (n *Noise) Process() float64 {
	x := lcgRand(&n.rand)
	return n.filter.process(x*2.0 - 1.0)
}

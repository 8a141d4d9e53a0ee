package vox

import "math"

// Glottis is the monophonic voiced + aspirated excitation source: an LF
// glottal pulse regenerated every pitch period, band-limited by taking
// the discrete derivative of its closed-form integral, plus a filtered
// aspiration-noise component that grows as tenseness falls.
type Glottis struct {
	aspirationNoise *Noise
	phase           float64
	waveform        lfWaveformIntegral
	sampleRate      float64
	wiggle          *Wiggle
	lastIntegral    float64
}

// NewGlottis constructs a glottis clocked at the inner simulation rate.
func NewGlottis(sampleRate float64, seed uint32) *Glottis {
	w := newLFWaveformIntegral(newLFWaveform(0.6))
	return &Glottis{
		aspirationNoise: NewNoise(seed+1, sampleRate, 500.0),
		phase:           0.0,
		lastIntegral:    w.compute(0.0),
		waveform:        w,
		sampleRate:      sampleRate,
		wiggle:          mustNewWiggle(1.0/sampleRate, 10.0, seed+2),
	}
}

// Phase returns the current position within the pitch period, in [0, 1).
func (g *Glottis) Phase() float64 { return g.phase }

// Process advances one inner-rate step and returns the combined voiced +
// aspiration sample.
func (g *Glottis) Process(frequency, tenseness, intensity, loudness, aspirationLevel float64) float64 {
	noise := g.aspirationNoise.Process()

	d := frequency / g.sampleRate
	g.phase += d
	if g.phase >= 1.0 {
		g.phase -= 1.0
		g.waveform = newLFWaveformIntegral(newLFWaveform(tenseness))
		g.lastIntegral = g.waveform.compute(0.0)
	}

	integral := g.waveform.compute(g.phase)
	out := intensity * loudness * (integral - g.lastIntegral) / d
	g.lastIntegral = integral

	mod := g.noiseModulator(tenseness * intensity)
	aspiration := intensity * (1.0 - math.Sqrt(tenseness)) * mod * noise *
		(0.2 + 0.01*g.wiggle.Process()) * aspirationLevel

	return out + aspiration
}

func (g *Glottis) noiseModulator(rate float64) float64 {
	voiced := 0.1 + 0.2*math.Max(0, math.Sin(2*math.Pi*g.phase))
	return lerp(0.3, voiced, rate)
}

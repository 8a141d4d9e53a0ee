package vox

// Engine composes the Glottis, Tract, and Resample stages into the outer
// per-sample DSP kernel. It owns the inner (simulation) vs. host sample
// rate split: the tract always runs at a rate derived from soundSpeed,
// independent of whatever rate the host audio callback uses.
type Engine struct {
	forceTurbulence bool
	SampleRate      float64
	Glottis         *Glottis
	Tract           *Tract
	resample        *Resample
	glottalOutput   float64
}

// NewEngine constructs the outer kernel. soundSpeed scales the tract's
// inner step rate (48000*soundSpeed); overSample further oversamples the
// inner kernel relative to that. forceTurbulence always injects
// turbulence noise at full intensity, used by the non-managed (bare)
// outer kernel so fricatives are audible even without a controller
// driving intensity.
func NewEngine(soundSpeed, sampleRate, overSample float64, seed uint32, forceTurbulence bool) *Engine {
	tractSteps := 48000.0 * soundSpeed
	tractStepsPerProcess := maxInt(int(tractSteps/sampleRate), 1)
	innerSampleRate := tractSteps / float64(tractStepsPerProcess) * overSample

	return &Engine{
		forceTurbulence: forceTurbulence,
		SampleRate:      sampleRate,
		Glottis:         NewGlottis(innerSampleRate, seed),
		Tract:           NewTract(tractStepsPerProcess, innerSampleRate, seed+1),
		resample:        NewResample(innerSampleRate, sampleRate),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// GlottalOutput returns the most recent raw glottal-source sample (before
// the tract filters it), used by the controller's telemetry ring and the
// waveform recorder.
func (e *Engine) GlottalOutput() float64 { return e.glottalOutput }

// Process advances the engine by one host-rate sample.
func (e *Engine) Process(frequency, tenseness, intensity, loudness, aspirationLevel float64) float64 {
	frequency = clamp(frequency, 1.0, 10000.0)
	tenseness = clamp(tenseness, 0.0, 1.0)
	intensity = clamp(intensity, 0.0, 1.0)
	loudness = clamp(loudness, 0.0, 1.0)

	tractIntensity := intensity
	if e.forceTurbulence {
		tractIntensity = 1.0
	}

	return e.resample.Process(func() float64 {
		e.glottalOutput = e.Glottis.Process(frequency, tenseness, intensity, loudness, aspirationLevel)
		return e.Tract.Process(tractIntensity, e.glottalOutput)
	})
}

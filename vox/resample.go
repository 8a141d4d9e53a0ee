package vox

// resampleAlgo selects the resampling strategy fixed at construction time
// by comparing the inner (simulation) and host sample rates.
type resampleAlgo int

const (
	algoUpsample resampleAlgo = iota
	algoDownsample
	algoIdentity
)

// Resample bridges the inner DSP kernel's simulation rate and the host's
// audio callback rate. The producer passed to Process is a nullary
// callback that yields one inner-rate sample on demand; the inner kernel
// therefore advances an integer number of steps per host sample.
type Resample struct {
	algo resampleAlgo

	// upsample state
	inPerOut      float64
	prevSample    float64
	nextSample    float64
	nextSampleTim float64

	// downsample state
	outPerIn  float64
	leftValue float64
	rightVal  float64
	time      float64
}

// NewResample picks the fixed algorithm for the given rate pair.
func NewResample(inputSampleRate, outputSampleRate float64) *Resample {
	switch {
	case inputSampleRate < outputSampleRate:
		return &Resample{
			algo:          algoUpsample,
			inPerOut:      inputSampleRate / outputSampleRate,
			nextSampleTim: 1.0,
		}
	case inputSampleRate > outputSampleRate:
		return &Resample{
			algo:     algoDownsample,
			inPerOut: inputSampleRate / outputSampleRate,
			outPerIn: outputSampleRate / inputSampleRate,
		}
	default:
		return &Resample{algo: algoIdentity}
	}
}

// Process produces one output-rate sample, pulling as many inner-rate
// samples from producer as the resampling algorithm needs.
func (r *Resample) Process(producer func() float64) float64 {
	switch r.algo {
	case algoUpsample:
		r.nextSampleTim += r.inPerOut
		for r.nextSampleTim >= 1.0 {
			r.nextSampleTim -= 1.0
			r.prevSample = r.nextSample
			r.nextSample = producer()
		}
		t := r.nextSampleTim
		return r.prevSample + (r.nextSample-r.prevSample)*t
	case algoDownsample:
		r.time += r.inPerOut
		y := r.leftValue
		r.leftValue = r.rightVal
		for r.time >= 1.0 {
			r.leftValue += producer()
			r.time -= 1.0
		}
		x := producer()
		r.leftValue += x * r.time
		r.rightVal = x * (1.0 - r.time)
		r.time -= 1.0
		return y * r.outPerIn
	default:
		return producer()
	}
}

package vox

import "fmt"

// Wiggle is a smoothed random-walk generator: a band-limited source of
// "natural" jitter used to give vibrato, tenseness, and frequency control
// a non-mechanical wobble.
type Wiggle struct {
	frequency        float64
	rand             uint32
	currentValue     float64
	nextValue        float64
	dvalue           float64
	currentFrequency float64
	time             float64
	dtime            float64
}

// NewWiggle constructs a Wiggle stepped at dtime seconds with a target
// update rate near frequency Hz. seed must be non-zero and dtime*frequency
// must stay below 0.5 or the smoothing step becomes unstable.
func NewWiggle(dtime, frequency float64, seed uint32) (*Wiggle, error) {
	if seed == 0 {
		return nil, fmt.Errorf("vox: wiggle seed must be non-zero")
	}
	if dtime*frequency >= 0.5 {
		return nil, fmt.Errorf("vox: wiggle dtime*frequency must be < 0.5, got %f", dtime*frequency)
	}
	s := seed
	currentFrequency := frequency * (lcgRand(&s) + 0.5)
	next := lcgRand(&s)*2.0 - 1.0
	return &Wiggle{
		frequency:        frequency,
		currentValue:     0.0,
		nextValue:        next,
		dvalue:           0.0,
		currentFrequency: currentFrequency,
		time:             1.0 / currentFrequency,
		rand:             s,
		dtime:            dtime,
	}, nil
}

// mustNewWiggle is used where the caller already guarantees valid
// construction arguments (fixed internal seeds and dtime), mirroring the
// unwrap() the original source performs in those same call sites.
func mustNewWiggle(dtime, frequency float64, seed uint32) *Wiggle {
	w, err := NewWiggle(dtime, frequency, seed)
	if err != nil {
		panic(err)
	}
	return w
}

// Process advances the generator by one dtime step and returns the new
// smoothed value in roughly [-1, 1].
func (w *Wiggle) Process() float64 {
	factor := w.dtime * w.currentFrequency
	w.dvalue = w.dvalue*(1.0-factor) + (w.nextValue-w.currentValue)*factor*factor
	w.currentValue += w.dvalue
	w.time -= w.dtime
	if w.time < 0.0 {
		w.currentFrequency = w.frequency * (lcgRand(&w.rand) + 0.5)
		w.time = 1.0 / w.currentFrequency
		w.nextValue = lcgRand(&w.rand)*2.0 - 1.0
	}
	return w.currentValue
}

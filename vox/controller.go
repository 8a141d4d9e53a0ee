package vox

import "math"

// FrequencyMode selects between the two frequency-control strategies
// found across revisions of the source this synthesizer is modeled on.
type FrequencyMode int

const (
	// FrequencyPID drives new_frequency toward target via a PID loop in
	// linear Hz space, multiplied by vibrato and pitch-bend.
	FrequencyPID FrequencyMode = iota
	// FrequencyRawSmoothing averages the current value halfway toward
	// the target every block and multiplies by vibrato, without a PID
	// loop — cheaper, looser tracking.
	FrequencyRawSmoothing
)

// IntensityMode selects between the PID-with-bias and ADSR-envelope
// intensity controllers.
type IntensityMode int

const (
	IntensityPID IntensityMode = iota
	IntensityADSR
)

// Frequency smooths a target frequency (Hz) into a per-sample value,
// adding vibrato (a fixed-rate sine) and wobble (two Wiggle generators)
// on top of the target before tracking it.
type Frequency struct {
	mode FrequencyMode

	// PID-mode state
	value      float64
	pid        *pidController
	oldVibrato float64
	newVibrato float64
	phase      float64

	// raw-smoothing-mode state
	oldFrequency    float64
	newFrequency    float64
	smoothFrequency float64

	targetFrequency float64
	Pitchbend       float64

	wiggles [2]*Wiggle
}

// NewFrequency constructs a Frequency controller in the given mode,
// starting at frequency Hz.
func NewFrequency(mode FrequencyMode, dtime float64, seed uint32, frequency, sampleRate float64) *Frequency {
	return &Frequency{
		mode:            mode,
		value:           frequency,
		pid:             newPIDController(sampleRate),
		oldVibrato:      1.0,
		newVibrato:      1.0,
		oldFrequency:    frequency,
		newFrequency:    frequency,
		smoothFrequency: frequency,
		targetFrequency: frequency,
		Pitchbend:       1.0,
		phase:           math.Mod(float64(seed)/10.0, 1.0),
		wiggles: [2]*Wiggle{
			mustNewWiggle(dtime/4.0, 4.07*5.0, seed+1),
			mustNewWiggle(dtime/4.0, 2.15*5.0, seed+2),
		},
	}
}

// Set changes the target frequency. If reset is true both the old and
// new tracked values snap immediately to frequency instead of easing
// toward it — used when a note starts after a silence long enough that
// the previous pitch should not be audible as a glide.
func (f *Frequency) Set(frequency float64, reset bool) {
	f.targetFrequency = frequency
	if reset {
		f.value = frequency
		f.oldFrequency = frequency
		f.newFrequency = frequency
		f.smoothFrequency = frequency
	}
}

// update runs once per 20ms control block. wobbleAmount, vibratoAmount
// and vibratoFrequency are live GUI knobs, re-read from the caller's
// ManagedParams every block rather than fixed at construction.
func (f *Frequency) update(dtime, wobbleAmount, vibratoAmount, vibratoFrequency float64) {
	switch f.mode {
	case FrequencyPID:
		vibrato := vibratoAmount * math.Sin(2*math.Pi*f.phase)
		f.phase = math.Mod(f.phase+dtime*vibratoFrequency, 1.0)
		vibrato += wobbleAmount * (0.01*f.wiggles[0].Process() + 0.02*f.wiggles[1].Process())
		for i := 0; i < 3; i++ {
			f.wiggles[0].Process()
			f.wiggles[1].Process()
		}
		f.oldVibrato = f.newVibrato
		f.newVibrato = 1.0 + vibrato
	case FrequencyRawSmoothing:
		vibrato := vibratoAmount * math.Sin(2*math.Pi*f.phase)
		f.phase = math.Mod(f.phase+dtime*vibratoFrequency, 1.0)
		vibrato += wobbleAmount * (0.01*f.wiggles[0].Process() + 0.02*f.wiggles[1].Process())
		for i := 0; i < 3; i++ {
			f.wiggles[0].Process()
			f.wiggles[1].Process()
		}
		f.smoothFrequency = (f.smoothFrequency + f.targetFrequency) * 0.5
		f.oldFrequency = f.newFrequency
		f.newFrequency = f.smoothFrequency * (1.0 + vibrato)
	}
}

// get returns the per-sample interpolated frequency at block progress
// lambda, given the current PID gains (unused outside of FrequencyPID
// mode).
func (f *Frequency) get(pid PIDParam, lambda float64) float64 {
	switch f.mode {
	case FrequencyPID:
		vibrate := lerp(f.oldVibrato, f.newVibrato, lambda)
		target := f.targetFrequency * vibrate * f.Pitchbend
		f.value += f.pid.process(pid, target-f.value)
		f.value = clamp(f.value, 10.0, 10000.0)
		return f.value
	default:
		return lerp(f.oldFrequency, f.newFrequency, lambda) * f.Pitchbend
	}
}

// Tenseness smooths a target tenseness toward the value the engine reads
// each sample, perturbed by a slow wobble.
type Tenseness struct {
	oldTenseness    float64
	newTenseness    float64
	TargetTenseness float64
	wiggles         [2]*Wiggle
}

// NewTenseness constructs a Tenseness controller.
func NewTenseness(dtime float64, seed uint32, tenseness float64) *Tenseness {
	return &Tenseness{
		oldTenseness:    tenseness,
		newTenseness:    tenseness,
		TargetTenseness: tenseness,
		wiggles: [2]*Wiggle{
			mustNewWiggle(dtime, 0.46*5.0, seed+1),
			mustNewWiggle(dtime, 0.36*5.0, seed+2),
		},
	}
}

func (t *Tenseness) update() {
	t.oldTenseness = t.newTenseness
	t.newTenseness = t.TargetTenseness + 0.05*t.wiggles[0].Process() + 0.025*t.wiggles[1].Process()
	t.newTenseness = clamp(t.newTenseness, 0.0, 1.0)
}

func (t *Tenseness) get(lambda float64) float64 {
	return lerp(t.oldTenseness, t.newTenseness, lambda)
}

// Intensity drives the excitation envelope gating voiced+aspirated
// output. In ADSR mode it follows a classic attack/decay/sustain/release
// envelope gated by sound and scaled by noteOnIntensity (velocity). In
// PID mode it tracks a 0/1 target (sound||alwaysSound) through a PID
// loop with a small constant negative bias, so intensity decays back to
// zero on its own once the target drops, matching invariant 3 (energy
// decay when silent).
type Intensity struct {
	mode IntensityMode

	// ADSR-mode state
	adsr            ADSR
	stage           adsrStage
	stageTime       float64
	envelopeLevel   float64
	noteOnIntensity float64

	// PID-mode state
	value float64
	bias  float64
	pid   *pidController
}

// ADSR holds the four envelope-stage durations (seconds) and sustain
// level (0-1) exposed to a hosting GUI.
type ADSR struct {
	Attack, Decay, Sustain, Release float64
}

type adsrStage int

const (
	stageIdle adsrStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// NewIntensity constructs an Intensity controller in the given mode.
func NewIntensity(mode IntensityMode, sampleRate float64) *Intensity {
	return &Intensity{
		mode:  mode,
		adsr:  ADSR{Attack: 0.01, Decay: 0.05, Sustain: 0.8, Release: 0.1},
		bias:  -1.0,
		pid:   newPIDController(sampleRate),
	}
}

// Trigger starts (or restarts, on note-on) the ADSR envelope at the given
// velocity-derived intensity.
func (i *Intensity) Trigger(noteOnIntensity float64) {
	i.noteOnIntensity = noteOnIntensity
	i.stage = stageAttack
	i.stageTime = 0.0
}

// updateBlock advances the ADSR envelope once per 20ms control block. It
// has no effect in PID mode, which instead runs every sample via
// processSample.
func (i *Intensity) updateBlock(sound bool, interval float64) {
	if i.mode == IntensityADSR {
		if !sound && i.stage != stageIdle && i.stage != stageRelease {
			i.stage = stageRelease
			i.stageTime = 0.0
		}
		switch i.stage {
		case stageAttack:
			i.stageTime += interval
			if i.adsr.Attack <= 0 {
				i.envelopeLevel = 1.0
				i.stage = stageDecay
				i.stageTime = 0
			} else {
				i.envelopeLevel = math.Min(1.0, i.stageTime/i.adsr.Attack)
				if i.stageTime >= i.adsr.Attack {
					i.stage = stageDecay
					i.stageTime = 0
				}
			}
		case stageDecay:
			i.stageTime += interval
			if i.adsr.Decay <= 0 {
				i.envelopeLevel = i.adsr.Sustain
				i.stage = stageSustain
			} else {
				t := math.Min(1.0, i.stageTime/i.adsr.Decay)
				i.envelopeLevel = lerp(1.0, i.adsr.Sustain, t)
				if t >= 1.0 {
					i.stage = stageSustain
				}
			}
		case stageSustain:
			i.envelopeLevel = i.adsr.Sustain
		case stageRelease:
			i.stageTime += interval
			if i.adsr.Release <= 0 {
				i.envelopeLevel = 0
				i.stage = stageIdle
			} else {
				start := i.adsr.Sustain
				i.envelopeLevel = math.Max(0.0, start*(1.0-i.stageTime/i.adsr.Release))
				if i.stageTime >= i.adsr.Release {
					i.stage = stageIdle
				}
			}
		}
	}
}

// processSample runs one per-sample PID step toward a 0/1 sounding
// target, with a small constant negative bias so intensity always decays
// back toward zero once the target drops (the mechanism behind invariant
// 3: energy decay when silent). Has no effect in ADSR mode.
func (i *Intensity) processSample(sound, alwaysSound bool, pid PIDParam) {
	if i.mode != IntensityPID {
		return
	}
	target := 0.0
	if sound || alwaysSound {
		target = 1.0
	}
	i.value += i.pid.process(pid, target-i.value) + i.bias*i.pid.dtime
	i.value = math.Max(0.0, i.value)
}

// get returns the current intensity. Neither mode interpolates across the
// control block, so lambda is unused: ADSR mode returns the envelope level
// scaled by the note-on intensity, PID mode its per-sample value.
func (i *Intensity) get(lambda float64) float64 {
	if i.mode == IntensityADSR {
		return i.envelopeLevel * i.noteOnIntensity
	}
	return i.value
}

// Current returns the most recent intensity value without needing a
// block-progress lambda, used by the facade's note-on mute check.
func (i *Intensity) Current() float64 {
	return i.get(1.0)
}

// Loudness first-order-slews toward a target (tenseness^0.25) at a fixed
// 10/s rate.
type Loudness struct {
	current float64
	Target  float64
}

func NewLoudness(loudness float64) *Loudness {
	return &Loudness{current: loudness, Target: loudness}
}

func (l *Loudness) process(dtime float64) float64 {
	if l.current < l.Target {
		l.current = math.Min(l.Target, l.current+10.0*dtime)
	} else {
		l.current = math.Max(l.Target, l.current-10.0*dtime)
	}
	return l.current
}

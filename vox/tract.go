package vox

import "math"

const (
	mouthLength = 44
	noseLength  = 28
)

// Transient is a short, exponentially decaying impulse injected into both
// wave directions when an occlusion releases (a plosive burst).
type Transient struct {
	position  int
	delay     float64
	timeAlive float64
	strength  float64
}

const transientExponent = 200.0
const transientLifeTime = 0.2

// Turbulence is narrowband noise injected at a narrow non-tongue
// constriction (a fricative source). Its intensity ramps toward 1 while
// On and decays back to 0 otherwise; it is retained while On or while
// intensity has not yet reached zero.
type Turbulence struct {
	index    float64
	diameter float64
	strength float64
	intensity float64
	On       bool
}

func newTurbulence(index, diameter float64) *Turbulence {
	thinness := clamp(8.0*(0.7-diameter), 0.0, 1.0)
	openness := clamp(30.0*(diameter-0.3), 0.0, 1.0)
	return &Turbulence{
		index:    index,
		diameter: diameter,
		strength: 0.66 * thinness * openness,
		On:       true,
	}
}

func (t *Turbulence) updateIntensity(dtime float64) {
	const attackTime = 0.1
	if t.On {
		t.intensity = math.Min(t.intensity+dtime/attackTime, 1.0)
	} else {
		t.intensity = math.Max(t.intensity-dtime/attackTime, 0.0)
	}
}

// State is the scattering-junction transmission-line solver: right- and
// left-going wave samples for the mouth and nose channels, plus the
// transient and turbulence injection lists.
type State struct {
	r, l   []float64
	r2, l2 []float64

	noseR, noseL   []float64
	noseR2, noseL2 []float64

	transients  []*Transient
	turbulences []*Turbulence
}

// NewState allocates wave arrays for the given cell counts, zeroed.
func NewState(length, noseLen int) *State {
	return &State{
		r: make([]float64, length), l: make([]float64, length),
		r2: make([]float64, length), l2: make([]float64, length),
		noseR: make([]float64, noseLen), noseL: make([]float64, noseLen),
		noseR2: make([]float64, noseLen), noseL2: make([]float64, noseLen),
	}
}

func (s *State) processTransients(dtime float64) {
	kept := s.transients[:0]
	for _, tr := range s.transients {
		if tr.delay > 0.0 {
			tr.delay -= dtime
			kept = append(kept, tr)
			continue
		}
		amplitude := tr.strength * math.Pow(2.0, -transientExponent*tr.timeAlive)
		s.r[tr.position] += amplitude * 0.5
		s.l[tr.position] += amplitude * 0.5
		tr.timeAlive += dtime
		if tr.timeAlive <= transientLifeTime {
			kept = append(kept, tr)
		}
	}
	s.transients = kept
}

func (s *State) processTurbulenceNoise(dtime, turbulenceNoise float64) {
	kept := s.turbulences[:0]
	for _, t := range s.turbulences {
		t.updateIntensity(dtime)
		amplitude := t.strength * t.intensity
		if amplitude != 0.0 {
			s.addNoiseAtIndex(t.index+1.0, turbulenceNoise*amplitude)
		}
		if t.On || t.intensity > 0.0 {
			kept = append(kept, t)
		}
	}
	s.turbulences = kept
}

func (s *State) addNoiseAtIndex(index, noise float64) {
	i := int(math.Floor(index))
	delta := index - float64(i)

	noise0 := noise * (1.0 - delta)
	noise1 := noise * delta
	s.r[i] += noise0 * 0.5
	s.l[i] += noise0 * 0.5
	s.r[i+1] += noise1 * 0.5
	s.l[i+1] += noise1 * 0.5
}

func (s *State) processMouth(p *otherParams, reflections, newReflections *Reflections, lambda, glottalOutput float64) float64 {
	length := len(s.r)

	s.r2[0] = s.l[0]*p.glottalReflection + glottalOutput
	s.l2[length-1] = s.r[length-1] * p.lipReflection

	for i := 0; i < length-1; i++ {
		r := lerp(reflections.Mouth[i], newReflections.Mouth[i], lambda)
		w := r * (s.r[i] + s.l[i+1])
		s.r2[i+1] = s.r[i] - w
		s.l2[i] = s.l[i+1] + w
	}

	i := p.noseStart
	r := lerp(reflections.JunctionLeft, newReflections.JunctionLeft, lambda)
	s.l2[i-1] = r*s.r[i-1] + (1.0+r)*(s.noseL[0]+s.l[i])
	r = lerp(reflections.JunctionRight, newReflections.JunctionRight, lambda)
	s.r2[i] = r*s.l[i] + (1.0+r)*(s.r[i-1]+s.noseL[0])
	r = lerp(reflections.JunctionNose, newReflections.JunctionNose, lambda)
	s.noseR2[0] = r*s.noseL[0] + (1.0+r)*(s.l[i]+s.r[i-1])

	for j := 0; j < length; j++ {
		s.r[j] = clamp(s.r2[j]*p.fade, -1.0, 1.0)
		s.l[j] = clamp(s.l2[j]*p.fade, -1.0, 1.0)
	}

	return s.r[length-1]
}

func (s *State) processNose(p *otherParams, reflections *Reflections, first float64) float64 {
	length := len(s.noseR)
	s.noseL2[length-1] = s.noseR[length-1] * p.lipReflection

	w := first * (s.noseR[0] + s.noseL[1])
	s.noseR2[1] = s.noseR[0] - w
	s.noseL2[0] = s.noseL[1] + w

	for i := 1; i < length-1; i++ {
		w := reflections.Nose[i] * (s.noseR[i] + s.noseL[i+1])
		s.noseR2[i+1] = s.noseR[i] - w
		s.noseL2[i] = s.noseL[i+1] + w
	}

	for i := 0; i < length; i++ {
		s.noseR[i] = clamp(s.noseR2[i]*p.fade, -1.0, 1.0)
		s.noseL[i] = clamp(s.noseL2[i]*p.fade, -1.0, 1.0)
	}

	return s.noseR[length-1]
}

// otherParams collects the per-sample-rate constants the wave solver
// needs but that never change after construction.
type otherParams struct {
	noseStart         int
	glottalReflection float64
	lipReflection     float64
	fade              float64
}

func newOtherParams(noseStart int, sampleRate float64) *otherParams {
	return &otherParams{
		noseStart:         noseStart,
		glottalReflection: 0.75,
		lipReflection:     -0.85,
		fade:              math.Pow(0.999, 96000.0/sampleRate),
	}
}

const noObstruction = -1

// Tract is the 1-D transmission-line vocal tract model: mouth + branching
// nasal passage, geometry reshaped once per 20ms block and the scattering
// junctions stepped once per inner sample.
type Tract struct {
	params         *otherParams
	Source         *ShapeSource
	CurrentDiam    *Diameter
	TargetDiam     *Diameter
	reflections    *Reflections
	NewReflections *Reflections
	State          *State
	MovementSpeed  float64 // cm per second
	sampleRate     float64
	updateTimer    *IntervalTimer
	fricativeNoise *Noise
	lastObstructed int
	stepsPerProcess int
	dtime          float64
}

// NewTract constructs a tract whose inner solver runs stepsPerProcess
// scattering-junction steps per call to Process.
func NewTract(stepsPerProcess int, sampleRate float64, seed uint32) *Tract {
	noseStart := mouthLength - noseLength + 1
	source := NewShapeSource(mouthLength, noseLength)
	diameter := NewDiameter(source)
	reflections := NewReflections(mouthLength, noseLength)
	source.ComputeDiameter(diameter)
	diameter.ComputeReflections(reflections)

	return &Tract{
		params:          newOtherParams(noseStart, sampleRate*float64(stepsPerProcess)),
		Source:          source,
		CurrentDiam:     diameter.Clone(),
		TargetDiam:      diameter.Clone(),
		reflections:     reflections.Clone(),
		NewReflections:  reflections.Clone(),
		State:           NewState(mouthLength, noseLength),
		MovementSpeed:   15.0,
		sampleRate:      sampleRate,
		updateTimer:     NewIntervalTimerOverflowed(0.02),
		fricativeNoise:  NewNoise(seed+1, sampleRate, 1000.0),
		lastObstructed:  noObstruction,
		stepsPerProcess: stepsPerProcess,
		dtime:           1.0 / (sampleRate * float64(stepsPerProcess)),
	}
}

// Process runs the configured number of inner scattering-junction steps
// and returns the averaged tract output sample.
func (t *Tract) Process(intensity, x float64) float64 {
	if t.updateTimer.Overflowed() {
		t.updateBlock(t.updateTimer.Interval)
	}
	lambda := t.updateTimer.Progress()
	t.updateTimer.Update(1.0 / t.sampleRate)

	fricativeNoise := t.fricativeNoise.Process()

	// a little noise keeps the wave state away from subnormal floats
	x = x + fricativeNoise*1.0e-16

	turbulenceNoise := fricativeNoise * intensity
	vocalOut := 0.0
	for i := 0; i < t.stepsPerProcess; i++ {
		mouth, nose := t.runStep(x, turbulenceNoise, lambda)
		vocalOut += mouth + nose
	}

	return vocalOut / float64(t.stepsPerProcess)
}

func (t *Tract) runStep(glottalOutput, turbulenceNoise, lambda float64) (float64, float64) {
	t.State.processTransients(t.dtime)
	t.State.processTurbulenceNoise(t.dtime, turbulenceNoise)

	lipOutput := t.State.processMouth(t.params, t.reflections, t.NewReflections, lambda, glottalOutput)
	noseOut := t.State.processNose(t.params, t.NewReflections, lerp(t.reflections.Nose[0], t.NewReflections.Nose[0], lambda))

	return lipOutput, noseOut
}

func (t *Tract) updateBlock(blockTime float64) {
	t.CurrentDiam.Reshape(t.TargetDiam, blockTime*t.MovementSpeed)

	newLastObstructed := noObstruction
	for i, d := range t.CurrentDiam.Mouth {
		if d <= 0.0 {
			newLastObstructed = i
		}
	}
	if t.lastObstructed != noObstruction && newLastObstructed == noObstruction &&
		t.CurrentDiam.Nose[0]*t.CurrentDiam.Nose[0] < 0.05 {
		t.State.transients = append(t.State.transients, &Transient{
			position: t.lastObstructed,
			delay:    0.02,
			strength: 0.3,
		})
	}
	t.lastObstructed = newLastObstructed

	t.reflections, t.NewReflections = t.NewReflections, t.reflections
	t.CurrentDiam.ComputeReflections(t.NewReflections)
}

// UpdateDiameter recomputes the target mouth/nose profile from the
// current tongue + constriction sources and refreshes the turbulence
// list to match the active non-tongue constrictions.
func (t *Tract) UpdateDiameter() {
	t.Source.ComputeDiameter(t.TargetDiam)

	for _, tb := range t.State.turbulences {
		tb.On = false
	}
	for _, c := range t.Source.OtherConstrictions {
		if c.index < 1.0 || c.index >= float64(t.Source.Length-1) {
			continue
		}
		if c.diameter <= 0.3 || c.diameter >= 0.7 {
			continue
		}
		found := false
		for _, tb := range t.State.turbulences {
			if tb.index == c.index && tb.diameter == c.diameter {
				tb.On = true
				found = true
				break
			}
		}
		if !found {
			t.State.turbulences = append(t.State.turbulences, newTurbulence(c.index, c.diameter))
		}
	}
}

// SetVelumTarget sets the target velum opening (0.01-0.4).
func (t *Tract) SetVelumTarget(v float64) {
	t.TargetDiam.Nose[0] = v
}

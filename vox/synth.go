package vox

// Control distinguishes whether the tongue is driven by host automation
// or by an internal slider; the facade stores it for a hosting UI to
// read but does not change its own dispatch behavior on it.
type Control int

const (
	ControlHost Control = iota
	ControlInternal
)

// InputEvent is the note-range-addressed input the facade accepts:
// note-on/off and pitch bend, the same surface a MIDI keyboard would
// drive.
type InputEvent interface {
	isInputEvent()
}

// NoteOnEvent presses a note. Which note ranges mean "play a tongue
// preset", "set a constriction", "toggle the velum", "trigger a
// routine" or "play a pitch" is determined by Synth's preset list
// lengths at dispatch time, not by any field here.
type NoteOnEvent struct {
	Note     uint8
	Velocity float64
}

// NoteOffEvent releases a previously pressed note.
type NoteOffEvent struct {
	Note uint8
}

// PitchBendEvent sets the frequency controller's pitch-bend multiplier
// directly to 2^Value.
type PitchBendEvent struct {
	Value float64
}

func (NoteOnEvent) isInputEvent()    {}
func (NoteOffEvent) isInputEvent()   {}
func (PitchBendEvent) isInputEvent() {}

// Synth is the top-level facade: it owns the note-range preset tables,
// the routine library, and the (lazily constructed) managed controller
// that actually produces audio. A hosting application talks to it only
// through HandleEvent, TriggerRoutine and Process.
type Synth struct {
	SoundSpeed float64
	Seed       uint32
	Params     ManagedParams

	TonguePoses        [][2]float64
	OtherConstrictions [][2]float64
	Routines           []*Routine
	NoteOnRoutine      int
	NoteOffRoutine     int
	TongueControl      Control

	time        float64
	noteOffTime float64

	Controller     *ManagedController
	VoiceManager   *VoiceManager
	RoutineRuntime *Runtime

	resetRequired bool
	randomTongue  uint32
}

// NewSynth constructs a facade with the default vowel/constriction/
// routine presets.
func NewSynth() *Synth {
	return &Synth{
		SoundSpeed: 3.0,
		Seed:       0,
		Params:     DefaultManagedParams(),
		TonguePoses: [][2]float64{
			{27.2, 2.20}, // i
			{19.4, 3.43}, // e
			{12.9, 2.43}, // a
			{14.0, 2.09}, // o
			{22.8, 2.05}, // u
		},
		OtherConstrictions: [][2]float64{
			{25.0, 1.0},
			{30.0, 1.0},
			{35.0, 1.0},
			{41.0, 1.6},
		},
		Routines:       defaultRoutines(),
		NoteOnRoutine:  0,
		NoteOffRoutine: 0,
		TongueControl:  ControlInternal,
		VoiceManager:   NewVoiceManager(),
		RoutineRuntime: NewRuntime(),
		resetRequired:  true,
		randomTongue:   1,
	}
}

func floatPtr(v float64) *float64 { return &v }

func defaultRoutines() []*Routine {
	return []*Routine{
		NewRoutine("Tongue move",
			RoutineEvent{Delta: 0.0, Event: TongueEvent(0, floatPtr(200.0))},
			RoutineEvent{Delta: 0.1, Event: TongueEvent(1, floatPtr(20.0))},
		),
		NewRoutine("Tap",
			RoutineEvent{Delta: 0.0, Event: SoundEvent(false)},
			RoutineEvent{Delta: 0.0, Event: ConstrictionEvent(1, floatPtr(0.7))},
			RoutineEvent{Delta: 0.0, Event: ForceDiameterEvent()},
			RoutineEvent{Delta: 0.0, Event: ConstrictionEvent(1, nil)},
			RoutineEvent{Delta: 0.01, Event: SoundEvent(true)},
		),
	}
}

// TriggerRoutine queues routine index's events onto the runtime, merging
// with whatever is already pending.
func (s *Synth) TriggerRoutine(index int) {
	if index < 0 || index >= len(s.Routines) {
		return
	}
	s.RoutineRuntime.PushRoutine(s.Routines[index])
}

// EnsureEngine (re)constructs the managed controller if none exists yet
// or RequestReset was called since it was last built, at the given host
// sample rate.
func (s *Synth) EnsureEngine(sampleRate float64) {
	if s.Controller == nil || s.resetRequired {
		s.Controller = NewManagedController(s.SoundSpeed, sampleRate, s.Seed, s.Params.FrequencyMode, s.Params.IntensityMode)
		s.ensureOtherConstriction()
		s.randomTongue = s.Seed + 1
		s.resetRequired = false
	}
}

// RequestReset marks the controller for reconstruction on the next
// EnsureEngine call (e.g. after SoundSpeed or Seed changes).
func (s *Synth) RequestReset() {
	s.resetRequired = true
}

func (s *Synth) ensureOtherConstriction() {
	source := s.Controller.Engine.Tract.Source
	if len(source.OtherConstrictions) != 0 {
		return
	}
	source.OtherConstrictions = make([]constriction, len(s.OtherConstrictions))
	for i, c := range s.OtherConstrictions {
		source.OtherConstrictions[i] = constriction{index: c[0], diameter: 10.0}
	}
}

// Process drains any due routine events and advances the controller by
// one host-rate sample, returning the output.
func (s *Synth) Process(dtime float64) float64 {
	s.time += dtime
	if s.Controller == nil {
		return 0.0
	}
	ctrl := s.Controller

	s.RoutineRuntime.Process(dtime, func(e Event) {
		switch e.Kind {
		case EventTongue:
			var pose [2]float64
			if e.TongueRandom {
				s.randomTongue = (s.randomTongue * 48271) % ((1 << 31) - 1)
				pose = s.TonguePoses[int(s.randomTongue)%len(s.TonguePoses)]
			} else {
				if e.TongueIndex < 0 || e.TongueIndex >= len(s.TonguePoses) {
					return
				}
				pose = s.TonguePoses[e.TongueIndex]
			}
			ctrl.Tongue.Target = pose
			if e.Speed != nil {
				ctrl.Tongue.Speed = *e.Speed
			}
		case EventConstriction:
			if e.ConstrictionIndex < 0 || e.ConstrictionIndex >= len(s.OtherConstrictions) {
				return
			}
			diameter := 10.0
			if e.Strength != nil {
				diameter = s.OtherConstrictions[e.ConstrictionIndex][1] * (1.0 - *e.Strength)
			}
			ctrl.Engine.Tract.Source.OtherConstrictions[e.ConstrictionIndex].diameter = diameter
		case EventVelum:
			ctrl.Engine.Tract.SetVelumTarget(0.01 + (0.4-0.01)*e.Openness)
		case EventPitch:
			ctrl.Frequency.Pitchbend = pitchBendToRatio(e.PitchValue*2.0-1.0, 1.0)
		case EventSound:
			ctrl.Sound = e.Sound
		case EventForceDiameter:
			ctrl.Engine.Tract.UpdateDiameter()
			ctrl.Engine.Tract.CurrentDiam = ctrl.Engine.Tract.TargetDiam.Clone()
		}
	})

	return ctrl.Process(s.Params)
}

// HandleEvent dispatches a timed input event. The note's numeric range
// decides its meaning: tongue presets, then constriction presets, then
// the velum toggle, then routine triggers, then (for every remaining
// note) a voiced pitch played through the monophonic voice stack.
func (s *Synth) HandleEvent(time float64, event InputEvent) {
	if s.Controller == nil {
		return
	}
	ctrl := s.Controller

	switch ev := event.(type) {
	case NoteOnEvent:
		base := 0
		if int(ev.Note) >= base && int(ev.Note) < base+len(s.TonguePoses) {
			pose := s.TonguePoses[int(ev.Note)-base]
			index, diameter := ctrl.Engine.Tract.Source.TongueClamp(pose[0], pose[1])
			ctrl.Tongue.Target = [2]float64{index, diameter}
			return
		}
		base += len(s.TonguePoses)
		if int(ev.Note) >= base && int(ev.Note) < base+len(s.OtherConstrictions) {
			i := int(ev.Note) - base
			diameter := s.OtherConstrictions[i][1] * (1.0 - ev.Velocity)
			ctrl.Engine.Tract.Source.OtherConstrictions[i].diameter = diameter
			ctrl.Engine.Tract.UpdateDiameter()
			return
		}
		base += len(s.OtherConstrictions)
		if int(ev.Note) == base {
			ctrl.Engine.Tract.SetVelumTarget(0.01 + (0.4-0.01)*ev.Velocity)
			return
		}
		base++
		if int(ev.Note) < base+len(s.Routines) {
			s.TriggerRoutine(int(ev.Note) - base)
			return
		}

		const frequencyResetTime = 0.25
		muted := ctrl.Intensity.Current() < 0.01 && s.noteOffTime+frequencyResetTime < time
		s.VoiceManager.NoteOn(ev.Note)
		if voice, ok := s.VoiceManager.Voice(); ok {
			frequency := midiNoteToFreq(int(voice))
			ctrl.Frequency.Set(frequency, muted)
			ctrl.SetTenseness(ev.Velocity)
			ctrl.Intensity.Trigger(ev.Velocity)
			ctrl.Sound = true
			if s.NoteOnRoutine >= 1 && s.NoteOnRoutine <= len(s.Routines) {
				s.TriggerRoutine(s.NoteOnRoutine - 1)
			}
		}

	case NoteOffEvent:
		base := len(s.TonguePoses)
		if int(ev.Note) >= base && int(ev.Note) < base+len(s.OtherConstrictions) {
			i := int(ev.Note) - base
			ctrl.Engine.Tract.Source.OtherConstrictions[i].diameter = 10.0
			ctrl.Engine.Tract.UpdateDiameter()
			return
		}
		base += len(s.OtherConstrictions)
		if int(ev.Note) == base {
			ctrl.Engine.Tract.SetVelumTarget(0.01)
			return
		}
		base++
		if int(ev.Note) < base+len(s.Routines) {
			return
		}

		s.VoiceManager.NoteOff(ev.Note)
		if voice, ok := s.VoiceManager.Voice(); ok {
			frequency := midiNoteToFreq(int(voice))
			ctrl.Frequency.Set(frequency, false)
			ctrl.Sound = true
		} else {
			ctrl.Sound = false
			s.noteOffTime = time
			if s.NoteOffRoutine >= 1 && s.NoteOffRoutine <= len(s.Routines) {
				s.TriggerRoutine(s.NoteOffRoutine - 1)
			}
		}

	case PitchBendEvent:
		ctrl.Frequency.Pitchbend = pow2Approx(ev.Value)
	}
}

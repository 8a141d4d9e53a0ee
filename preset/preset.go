// Package preset loads and saves Synth configuration as JSON: sound
// speed, seed, tongue/constriction presets, routines, and the managed
// controller's knob parameters.
package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-vox/vox"
)

// File is the JSON schema for a vox preset.
type File struct {
	SoundSpeed *float64 `json:"sound_speed"`
	Seed       *uint32  `json:"seed"`

	TonguePoses        [][2]float64 `json:"tongue_poses"`
	OtherConstrictions [][2]float64 `json:"other_constrictions"`
	Routines           []Routine    `json:"routines"`
	NoteOnRoutine      *int         `json:"noteon_routine"`
	NoteOffRoutine     *int         `json:"noteoff_routine"`

	AlwaysSound      *bool     `json:"always_sound"`
	FrequencyMode    *string   `json:"frequency_mode"`
	IntensityMode    *string   `json:"intensity_mode"`
	FrequencyPID     *PID      `json:"frequency_pid"`
	IntensityPID     *PID      `json:"intensity_pid"`
	WobbleAmount     *float64  `json:"wobble_amount"`
	VibratoAmount    *float64  `json:"vibrato_amount"`
	VibratoFrequency *float64  `json:"vibrato_frequency"`
	AspirationLevel  *float64  `json:"aspiration_level"`
}

// PID mirrors vox.PIDParam for JSON round-tripping.
type PID struct {
	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	Kd float64 `json:"kd"`
}

// Routine mirrors vox.Routine for JSON round-tripping.
type Routine struct {
	Name   string         `json:"name"`
	Events []RoutineEvent `json:"events"`
}

// RoutineEvent mirrors vox.RoutineEvent/vox.Event for JSON round-tripping.
// Which fields are meaningful is determined by Kind, same as the
// in-memory representation.
type RoutineEvent struct {
	Delta float64 `json:"delta"`
	Kind  string  `json:"kind"`

	TongueRandom bool     `json:"tongue_random,omitempty"`
	TongueIndex  int      `json:"tongue_index,omitempty"`
	Speed        *float64 `json:"speed,omitempty"`

	ConstrictionIndex int      `json:"constriction_index,omitempty"`
	Strength          *float64 `json:"strength,omitempty"`

	Openness float64 `json:"openness,omitempty"`

	PitchValue float64 `json:"pitch_value,omitempty"`

	Sound bool `json:"sound,omitempty"`
}

var kindNames = map[vox.EventKind]string{
	vox.EventTongue:        "tongue",
	vox.EventConstriction:  "constriction",
	vox.EventVelum:         "velum",
	vox.EventPitch:         "pitch",
	vox.EventSound:         "sound",
	vox.EventForceDiameter: "force_diameter",
}

var namesToKind = func() map[string]vox.EventKind {
	out := make(map[string]vox.EventKind, len(kindNames))
	for k, v := range kindNames {
		out[v] = k
	}
	return out
}()

var frequencyModeNames = map[vox.FrequencyMode]string{
	vox.FrequencyPID:          "pid",
	vox.FrequencyRawSmoothing: "raw_smoothing",
}

var namesToFrequencyMode = func() map[string]vox.FrequencyMode {
	out := make(map[string]vox.FrequencyMode, len(frequencyModeNames))
	for k, v := range frequencyModeNames {
		out[v] = k
	}
	return out
}()

var intensityModeNames = map[vox.IntensityMode]string{
	vox.IntensityPID:  "pid",
	vox.IntensityADSR: "adsr",
}

var namesToIntensityMode = func() map[string]vox.IntensityMode {
	out := make(map[string]vox.IntensityMode, len(intensityModeNames))
	for k, v := range intensityModeNames {
		out[v] = k
	}
	return out
}()

// Load reads a preset JSON file and applies it on top of a default
// Synth.
func Load(path string) (*vox.Synth, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	s := vox.NewSynth()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyFile applies a parsed preset file onto an existing Synth.
func ApplyFile(dst *vox.Synth, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination synth")
	}
	if f == nil {
		return nil
	}

	if f.SoundSpeed != nil {
		if *f.SoundSpeed <= 0 {
			return fmt.Errorf("sound_speed must be > 0")
		}
		dst.SoundSpeed = *f.SoundSpeed
		dst.RequestReset()
	}
	if f.Seed != nil {
		dst.Seed = *f.Seed
		dst.RequestReset()
	}
	if len(f.TonguePoses) > 0 {
		dst.TonguePoses = append([][2]float64(nil), f.TonguePoses...)
	}
	if len(f.OtherConstrictions) > 0 {
		dst.OtherConstrictions = append([][2]float64(nil), f.OtherConstrictions...)
	}
	if len(f.Routines) > 0 {
		routines := make([]*vox.Routine, len(f.Routines))
		for i, r := range f.Routines {
			events := make([]vox.RoutineEvent, len(r.Events))
			for j, e := range r.Events {
				ev, err := e.toVox()
				if err != nil {
					return fmt.Errorf("routine %q event %d: %w", r.Name, j, err)
				}
				events[j] = vox.RoutineEvent{Delta: e.Delta, Event: ev}
			}
			routines[i] = vox.NewRoutine(r.Name, events...)
		}
		dst.Routines = routines
	}
	if f.NoteOnRoutine != nil {
		dst.NoteOnRoutine = *f.NoteOnRoutine
	}
	if f.NoteOffRoutine != nil {
		dst.NoteOffRoutine = *f.NoteOffRoutine
	}

	if f.AlwaysSound != nil {
		dst.Params.AlwaysSound = *f.AlwaysSound
	}
	if f.FrequencyMode != nil {
		mode, ok := namesToFrequencyMode[*f.FrequencyMode]
		if !ok {
			return fmt.Errorf("unknown frequency_mode %q", *f.FrequencyMode)
		}
		dst.Params.FrequencyMode = mode
		dst.RequestReset()
	}
	if f.IntensityMode != nil {
		mode, ok := namesToIntensityMode[*f.IntensityMode]
		if !ok {
			return fmt.Errorf("unknown intensity_mode %q", *f.IntensityMode)
		}
		dst.Params.IntensityMode = mode
		dst.RequestReset()
	}
	if f.FrequencyPID != nil {
		dst.Params.FrequencyPID = vox.NewPIDParam(f.FrequencyPID.Kp, f.FrequencyPID.Ki, f.FrequencyPID.Kd)
	}
	if f.IntensityPID != nil {
		dst.Params.IntensityPID = vox.NewPIDParam(f.IntensityPID.Kp, f.IntensityPID.Ki, f.IntensityPID.Kd)
	}
	if f.WobbleAmount != nil {
		if *f.WobbleAmount < 0 {
			return fmt.Errorf("wobble_amount must be >= 0")
		}
		dst.Params.WobbleAmount = *f.WobbleAmount
	}
	if f.VibratoAmount != nil {
		if *f.VibratoAmount < 0 {
			return fmt.Errorf("vibrato_amount must be >= 0")
		}
		dst.Params.VibratoAmount = *f.VibratoAmount
	}
	if f.VibratoFrequency != nil {
		if *f.VibratoFrequency <= 0 {
			return fmt.Errorf("vibrato_frequency must be > 0")
		}
		dst.Params.VibratoFrequency = *f.VibratoFrequency
	}
	if f.AspirationLevel != nil {
		if *f.AspirationLevel < 0 {
			return fmt.Errorf("aspiration_level must be >= 0")
		}
		dst.Params.AspirationLevel = *f.AspirationLevel
	}

	return nil
}

func (e RoutineEvent) toVox() (vox.Event, error) {
	kind, ok := namesToKind[e.Kind]
	if !ok {
		return vox.Event{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	switch kind {
	case vox.EventTongue:
		if e.TongueRandom {
			return vox.TongueRandomEvent(e.Speed), nil
		}
		return vox.TongueEvent(e.TongueIndex, e.Speed), nil
	case vox.EventConstriction:
		return vox.ConstrictionEvent(e.ConstrictionIndex, e.Strength), nil
	case vox.EventVelum:
		return vox.VelumEvent(e.Openness), nil
	case vox.EventPitch:
		return vox.PitchEvent(e.PitchValue), nil
	case vox.EventSound:
		return vox.SoundEvent(e.Sound), nil
	case vox.EventForceDiameter:
		return vox.ForceDiameterEvent(), nil
	}
	return vox.Event{}, fmt.Errorf("unhandled event kind %q", e.Kind)
}

// Save writes synth's configuration to path as JSON.
func Save(path string, s *vox.Synth) error {
	f := File{
		SoundSpeed:         &s.SoundSpeed,
		Seed:               &s.Seed,
		TonguePoses:        s.TonguePoses,
		OtherConstrictions: s.OtherConstrictions,
		NoteOnRoutine:      &s.NoteOnRoutine,
		NoteOffRoutine:     &s.NoteOffRoutine,
		AlwaysSound:        &s.Params.AlwaysSound,
		FrequencyMode:      stringPtr(frequencyModeNames[s.Params.FrequencyMode]),
		IntensityMode:      stringPtr(intensityModeNames[s.Params.IntensityMode]),
		FrequencyPID:       &PID{Kp: s.Params.FrequencyPID.Kp, Ki: s.Params.FrequencyPID.Ki, Kd: s.Params.FrequencyPID.Kd},
		IntensityPID:       &PID{Kp: s.Params.IntensityPID.Kp, Ki: s.Params.IntensityPID.Ki, Kd: s.Params.IntensityPID.Kd},
		WobbleAmount:       &s.Params.WobbleAmount,
		VibratoAmount:      &s.Params.VibratoAmount,
		VibratoFrequency:   &s.Params.VibratoFrequency,
		AspirationLevel:    &s.Params.AspirationLevel,
	}
	for _, r := range s.Routines {
		routine := Routine{Name: r.Name}
		for _, re := range r.Events {
			routine.Events = append(routine.Events, fromVox(re))
		}
		f.Routines = append(f.Routines, routine)
	}

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func stringPtr(s string) *string { return &s }

func fromVox(re vox.RoutineEvent) RoutineEvent {
	return RoutineEvent{
		Delta:             re.Delta,
		Kind:              kindNames[re.Event.Kind],
		TongueRandom:      re.Event.TongueRandom,
		TongueIndex:       re.Event.TongueIndex,
		Speed:             re.Event.Speed,
		ConstrictionIndex: re.Event.ConstrictionIndex,
		Strength:          re.Event.Strength,
		Openness:          re.Event.Openness,
		PitchValue:        re.Event.PitchValue,
		Sound:             re.Event.Sound,
	}
}

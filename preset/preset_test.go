package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-vox/vox"
)

func TestApplyFileValidatesFields(t *testing.T) {
	cases := []struct {
		name string
		file File
	}{
		{"sound_speed", File{SoundSpeed: floatPtr(-1.0)}},
		{"wobble_amount", File{WobbleAmount: floatPtr(-0.1)}},
		{"vibrato_amount", File{VibratoAmount: floatPtr(-0.1)}},
		{"vibrato_frequency", File{VibratoFrequency: floatPtr(0.0)}},
		{"aspiration_level", File{AspirationLevel: floatPtr(-1.0)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := vox.NewSynth()
			if err := ApplyFile(s, &c.file); err == nil {
				t.Fatalf("expected an error for invalid %s", c.name)
			}
		})
	}
}

func TestApplyFileNilSynthErrors(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatal("expected an error applying onto a nil synth")
	}
}

func TestApplyFileNilFileIsNoop(t *testing.T) {
	s := vox.NewSynth()
	before := s.SoundSpeed
	if err := ApplyFile(s, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SoundSpeed != before {
		t.Fatalf("expected no change, got SoundSpeed=%v", s.SoundSpeed)
	}
}

func TestApplyFileOverridesOnlySetFields(t *testing.T) {
	s := vox.NewSynth()
	originalSeed := s.Seed
	originalTongues := s.TonguePoses

	f := &File{SoundSpeed: floatPtr(2.5)}
	if err := ApplyFile(s, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SoundSpeed != 2.5 {
		t.Fatalf("expected SoundSpeed to be overridden, got %v", s.SoundSpeed)
	}
	if s.Seed != originalSeed {
		t.Fatalf("expected Seed to stay default, got %v", s.Seed)
	}
	if len(s.TonguePoses) != len(originalTongues) {
		t.Fatalf("expected TonguePoses to stay default, got %v", s.TonguePoses)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")

	s := vox.NewSynth()
	s.SoundSpeed = 2.0
	s.Seed = 7
	s.TonguePoses = [][2]float64{{13.0, 2.5}, {20.0, 3.0}}
	s.Params.WobbleAmount = 0.25
	s.Params.VibratoFrequency = 5.5
	s.Params.FrequencyPID = vox.NewPIDParam(40.0, 15.0, 0.2)

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.SoundSpeed != s.SoundSpeed {
		t.Fatalf("SoundSpeed mismatch: got %v want %v", loaded.SoundSpeed, s.SoundSpeed)
	}
	if loaded.Seed != s.Seed {
		t.Fatalf("Seed mismatch: got %v want %v", loaded.Seed, s.Seed)
	}
	if len(loaded.TonguePoses) != len(s.TonguePoses) || loaded.TonguePoses[0] != s.TonguePoses[0] {
		t.Fatalf("TonguePoses mismatch: got %v want %v", loaded.TonguePoses, s.TonguePoses)
	}
	if loaded.Params.WobbleAmount != s.Params.WobbleAmount {
		t.Fatalf("WobbleAmount mismatch: got %v want %v", loaded.Params.WobbleAmount, s.Params.WobbleAmount)
	}
	if loaded.Params.FrequencyPID != s.Params.FrequencyPID {
		t.Fatalf("FrequencyPID mismatch: got %+v want %+v", loaded.Params.FrequencyPID, s.Params.FrequencyPID)
	}
}

func TestSaveLoadRoundTripsRoutines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")

	s := vox.NewSynth()
	speed := 150.0
	strength := 0.5
	s.Routines = []*vox.Routine{
		vox.NewRoutine("custom",
			vox.RoutineEvent{Delta: 0.0, Event: vox.TongueEvent(1, &speed)},
			vox.RoutineEvent{Delta: 0.02, Event: vox.ConstrictionEvent(2, &strength)},
			vox.RoutineEvent{Delta: 0.0, Event: vox.ForceDiameterEvent()},
		),
	}

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.Routines) != 1 || loaded.Routines[0].Name != "custom" {
		t.Fatalf("expected one routine named custom, got %+v", loaded.Routines)
	}
	events := loaded.Routines[0].Events
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Event.Kind != vox.EventTongue || events[0].Event.TongueIndex != 1 || *events[0].Event.Speed != speed {
		t.Fatalf("tongue event mismatch: %+v", events[0].Event)
	}
	if events[1].Event.Kind != vox.EventConstriction || events[1].Event.ConstrictionIndex != 2 || *events[1].Event.Strength != strength {
		t.Fatalf("constriction event mismatch: %+v", events[1].Event)
	}
	if events[2].Event.Kind != vox.EventForceDiameter {
		t.Fatalf("expected force-diameter event, got %+v", events[2].Event)
	}
}

func TestLoadRejectsUnknownEventKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	const body = `{"routines":[{"name":"r","events":[{"delta":0,"kind":"nonsense"}]}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error loading a preset with an unknown event kind")
	}
}

func floatPtr(v float64) *float64 { return &v }

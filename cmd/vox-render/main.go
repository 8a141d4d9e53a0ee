package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-vox/dsp"
	"github.com/cwbudde/algo-vox/preset"
	"github.com/cwbudde/algo-vox/room"
	"github.com/cwbudde/algo-vox/vox"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func main() {
	note := flag.Int("note", 69, "MIDI note number (69 = A4 = 440 Hz)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 1.5, "Duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional, uses built-in defaults otherwise)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	roomIR := flag.String("room-ir", "", "Impulse response WAV for body/room convolution (optional)")
	roomWet := flag.Float64("room-wet", 0.3, "Dry/wet mix for the room convolution (0=dry, 1=fully wet)")
	brightness := flag.Float64("brightness", 9000.0, "Mouth-radiation lowpass cutoff in Hz (0 disables)")
	chorusMix := flag.Float64("chorus-mix", 0.0, "Chorus/doubling wet mix (0 disables, 0.0-1.0)")
	flag.Parse()

	var synth *vox.Synth
	if *presetPath != "" {
		var err error
		synth, err = preset.Load(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	} else {
		synth = vox.NewSynth()
	}

	synth.EnsureEngine(float64(*sampleRate))

	fmt.Printf("Rendering note %d, velocity %d, for %.2fs at %dHz...\n", *note, *velocity, *duration, *sampleRate)

	dt := 1.0 / float64(*sampleRate)
	totalFrames := int(*duration * float64(*sampleRate))
	releaseFrame := int(*releaseAfter * float64(*sampleRate))

	velocityNorm := float64(*velocity) / 127.0
	synth.HandleEvent(0.0, vox.NoteOnEvent{Note: uint8(*note), Velocity: velocityNorm})

	// A gentle DC-blocking highpass keeps the tract's low-frequency drift
	// (e.g. from the velum/nose branch) from showing up as offset in the
	// rendered file.
	dcBlock := dsp.NewHighpass(30.0, float32(*sampleRate), 0.707)

	// An optional lowpass rounds off the sharp edges the dry kernel leaves
	// above the mouth's natural radiation rolloff.
	var mouthLowpass *dsp.Biquad
	if *brightness > 0 {
		mouthLowpass = dsp.NewLowpass(float32(*brightness), float32(*sampleRate), 0.707)
	}

	// An optional single-voice chorus thickens the dry render, the same
	// "doubling" effect a hosting synth would apply after this engine.
	var chorus *dsp.Chorus
	if *chorusMix > 0 {
		chorus = dsp.NewChorus(float64(*sampleRate), 18.0, 4.0, 0.6, float32(*chorusMix), 30.0)
	}

	samples := make([]float32, 0, totalFrames)
	released := false
	for i := 0; i < totalFrames; i++ {
		t := float64(i) * dt
		if !released && i >= releaseFrame {
			synth.HandleEvent(t, vox.NoteOffEvent{Note: uint8(*note)})
			released = true
		}
		s := dsp.FlushDenormals(float32(synth.Process(dt)))
		s = dcBlock.Process(s)
		if mouthLowpass != nil {
			s = mouthLowpass.Process(s)
		}
		if chorus != nil {
			s = chorus.Process(s)
		}
		samples = append(samples, s)
	}

	if *roomIR != "" {
		conv := room.NewConvolver(*sampleRate)
		if err := conv.SetIRFromWAV(*roomIR); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading room IR %q: %v\n", *roomIR, err)
			os.Exit(1)
		}
		wet := conv.Process(samples)
		mix := float32(*roomWet)
		for i := range samples {
			wetMono := 0.5 * (wet[i*2] + wet[i*2+1])
			samples[i] = (1-mix)*samples[i] + mix*wetMono
		}
	}

	file, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, *sampleRate, 16, 1, 1)
	defer encoder.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  *sampleRate,
			NumChannels: 1,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, totalFrames)
}

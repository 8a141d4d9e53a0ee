package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-vox/preset"
	"github.com/cwbudde/algo-vox/vox"
)

func main() {
	note := flag.Int("note", 48, "MIDI note to sing while fitting (a lower note gives a denser harmonic comb to read the envelope from)")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	duration := flag.Float64("duration", 0.3, "Render duration per candidate in seconds")
	targetF1 := flag.Float64("f1", 800.0, "Target first formant frequency in Hz")
	targetF2 := flag.Float64("f2", 1200.0, "Target second formant frequency in Hz")
	population := flag.Int("population", 20, "Mayfly population size")
	iterations := flag.Int("iterations", 30, "Mayfly iteration count")
	seed := flag.Int64("seed", 1, "Random seed")
	presetName := flag.String("preset-index", "0", "Tongue preset slot to overwrite in the output preset")
	output := flag.String("output", "", "Write the fitted pose into this preset JSON file (optional)")
	flag.Parse()

	result, err := runFormantFit(fitConfig{
		note:       *note,
		sampleRate: *sampleRate,
		duration:   *duration,
		targetF1:   *targetF1,
		targetF2:   *targetF2,
		population: *population,
		iterations: *iterations,
		seed:       *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fit failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Best pose: index=%.3f diameter=%.3f (F1=%.1fHz F2=%.1fHz, score=%.5f)\n",
		result.best.index, result.best.diameter, result.f1, result.f2, result.score)

	if *output == "" {
		return
	}

	var slot int
	if _, err := fmt.Sscanf(*presetName, "%d", &slot); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -preset-index %q: %v\n", *presetName, err)
		os.Exit(1)
	}

	synth := vox.NewSynth()
	if _, err := os.Stat(*output); err == nil {
		if s, err := preset.Load(*output); err == nil {
			synth = s
		}
	}
	for slot >= len(synth.TonguePoses) {
		synth.TonguePoses = append(synth.TonguePoses, [2]float64{})
	}
	synth.TonguePoses[slot] = [2]float64{result.best.index, result.best.diameter}

	if err := preset.Save(*output, synth); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write preset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote pose to %s (tongue preset slot %d)\n", *output, slot)
}

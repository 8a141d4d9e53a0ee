package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vox/vox"
	"github.com/cwbudde/mayfly"
)

// tongue (index, diameter) search bounds, matching the clamp region for a
// 44-cell tract (blade_start+2 .. tip_start-3, and the physically
// plausible diameter range).
const (
	indexLowerBound = 12.0
	indexUpperBound = 29.0
	diameterLower   = 2.05
	diameterUpper   = 3.5
)

type candidate struct {
	index    float64
	diameter float64
}

func fromNormalized(pos []float64) candidate {
	return candidate{
		index:    indexLowerBound + pos[0]*(indexUpperBound-indexLowerBound),
		diameter: diameterLower + pos[1]*(diameterUpper-diameterLower),
	}
}

// renderSteady builds a fresh synth, snaps the tongue directly to the
// candidate pose (bypassing the glide, the same way the facade's
// ForceDiameter routine event does), sings note at sampleRate for
// duration seconds and returns the rendered samples.
func renderSteady(c candidate, note int, sampleRate int, duration float64) []float64 {
	synth := vox.NewSynth()
	synth.EnsureEngine(float64(sampleRate))

	synth.HandleEvent(0.0, vox.NoteOnEvent{Note: uint8(note), Velocity: 0.8})

	tract := synth.Controller.Engine.Tract
	tract.Source.Tongue = [2]float64{c.index, c.diameter}
	tract.UpdateDiameter()
	tract.CurrentDiam = tract.TargetDiam.Clone()
	synth.Controller.Tongue.Target = [2]float64{c.index, c.diameter}

	dt := 1.0 / float64(sampleRate)
	frames := int(duration * float64(sampleRate))
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		samples[i] = synth.Process(dt)
	}
	return samples
}

type fitConfig struct {
	note       int
	sampleRate int
	duration   float64
	targetF1   float64
	targetF2   float64
	population int
	iterations int
	seed       int64
}

type fitResult struct {
	best  candidate
	f1    float64
	f2    float64
	score float64
}

func runFormantFit(cfg fitConfig) (*fitResult, error) {
	evaluate := func(c candidate) float64 {
		samples := renderSteady(c, cfg.note, cfg.sampleRate, cfg.duration)
		skip := int(0.05 * float64(cfg.sampleRate))
		if skip >= len(samples) {
			skip = 0
		}
		f1, f2, err := findFormants(samples[skip:], cfg.sampleRate, 3500.0)
		if err != nil {
			return 1.0
		}
		d1 := (f1 - cfg.targetF1) / cfg.targetF1
		d2 := (f2 - cfg.targetF2) / cfg.targetF2
		return d1*d1 + d2*d2
	}

	mayflyConfig := mayfly.NewDefaultConfig()
	mayflyConfig.ProblemSize = 2
	mayflyConfig.LowerBound = 0.0
	mayflyConfig.UpperBound = 1.0
	mayflyConfig.MaxIterations = cfg.iterations
	mayflyConfig.NPop = cfg.population
	mayflyConfig.NPopF = cfg.population
	mayflyConfig.NC = 2 * cfg.population
	mayflyConfig.NM = maxInt(1, int(math.Round(0.05*float64(cfg.population))))
	mayflyConfig.Rand = rand.New(rand.NewSource(cfg.seed))

	var bestScore = math.Inf(1)
	var best candidate
	mayflyConfig.ObjectiveFunc = func(pos []float64) float64 {
		c := fromNormalized(pos)
		score := evaluate(c)
		if score < bestScore {
			bestScore = score
			best = c
			fmt.Printf("improved: index=%.2f diameter=%.3f score=%.5f\n", c.index, c.diameter, score)
		}
		return score
	}

	if _, err := mayfly.Optimize(mayflyConfig); err != nil {
		return nil, fmt.Errorf("mayfly optimize failed: %w", err)
	}

	samples := renderSteady(best, cfg.note, cfg.sampleRate, cfg.duration)
	f1, f2, _ := findFormants(samples, cfg.sampleRate, 3500.0)

	return &fitResult{best: best, f1: f1, f2: f2, score: bestScore}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

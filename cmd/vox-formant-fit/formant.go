package main

import (
	"errors"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// findFormants estimates the two strongest smoothed-spectrum peaks above
// 150Hz in a steady-state mono signal, returned in frequency order, the same FFT-plan pattern the piano
// analysis package uses for its spectral distance metric: try the fast
// real plan first, fall back to the safe one.
func findFormants(signal []float64, sampleRate int, maxFreq float64) (f1, f2 float64, err error) {
	n := len(signal)
	n &^= 1 // real FFT plans require an even length
	if n < 1024 {
		return 0, 0, errors.New("formant: signal too short")
	}
	signal = signal[:n]

	windowed := make([]float64, n)
	for i, v := range signal {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		windowed[i] = v * w
	}

	bins := n / 2
	spectrum := make([]complex128, bins+1)

	fast, ferr := algofft.NewFastPlanReal64(n)
	if ferr == nil {
		fast.Forward(spectrum, windowed)
	} else {
		safe, serr := algofft.NewPlanReal64(n)
		if serr != nil {
			return 0, 0, errors.New("formant: no usable FFT plan")
		}
		if err := safe.Forward(spectrum, windowed); err != nil {
			return 0, 0, err
		}
	}

	mag := make([]float64, bins+1)
	for i, c := range spectrum {
		mag[i] = cmplx.Abs(c)
	}

	smoothed := smooth(mag, 4)

	binHz := float64(sampleRate) / float64(n)
	minBin := int(150.0 / binHz)
	maxBin := int(maxFreq / binHz)
	if maxBin > len(smoothed)-2 {
		maxBin = len(smoothed) - 2
	}

	type peak struct {
		bin int
		mag float64
	}
	var peaks []peak
	for k := minBin + 1; k < maxBin; k++ {
		if smoothed[k] > smoothed[k-1] && smoothed[k] > smoothed[k+1] {
			peaks = append(peaks, peak{bin: k, mag: smoothed[k]})
		}
	}
	if len(peaks) < 2 {
		return 0, 0, errors.New("formant: fewer than two peaks found")
	}

	// Keep the two strongest, then report them in frequency order.
	for i := 0; i < len(peaks); i++ {
		for j := i + 1; j < len(peaks); j++ {
			if peaks[j].mag > peaks[i].mag {
				peaks[i], peaks[j] = peaks[j], peaks[i]
			}
		}
	}
	top := peaks[:2]
	if top[0].bin > top[1].bin {
		top[0], top[1] = top[1], top[0]
	}
	return float64(top[0].bin) * binHz, float64(top[1].bin) * binHz, nil
}

func smooth(x []float64, radius int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		lo, hi := i-radius, i+radius
		if lo < 0 {
			lo = 0
		}
		if hi >= len(x) {
			hi = len(x) - 1
		}
		var sum float64
		for k := lo; k <= hi; k++ {
			sum += x[k]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

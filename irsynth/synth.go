package irsynth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Config controls synthetic IR generation.
type Config struct {
	SampleRate int
	DurationS  float64
	Modes      int
	Seed       int64

	Brightness  float64
	StereoWidth float64
	DirectLevel float64
	EarlyCount  int
	LateLevel   float64

	LowDecayS  float64
	HighDecayS float64

	// TractLengthCm is the speaker's effective vocal tract length, used to
	// scale the chest/body resonance range: a shorter tract (child, soprano)
	// raises the whole body-resonance band, a longer one (bass) lowers it,
	// the same inverse relationship a vocal tract's own formants have with
	// its length. 17.5cm (adult male) is the neutral baseline.
	TractLengthCm float64
	// PlateRatio/StiffnessRatio place the body modes on the eigenfrequencies
	// of a simply-supported orthotropic rectangular plate (see
	// plateEigenfreqs) instead of a generic power-law spacing, modeling the
	// chest/throat cavity as a thin resonant plate the way a soundboard
	// would be modeled, scaled to vocal proportions.
	PlateRatio     float64
	StiffnessRatio float64

	FadeOutS float64 // Cosine fade-out at the end; 0 = no fade

	NormalizePeak float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate:     96000,
		DurationS:      2.0,
		Modes:          128,
		Seed:           1,
		Brightness:     1.0,
		StereoWidth:    0.6,
		DirectLevel:    0.6,
		EarlyCount:     16,
		LateLevel:      0.045,
		LowDecayS:      2.4,
		HighDecayS:     0.35,
		TractLengthCm:  17.5,
		PlateRatio:     1.2,
		StiffnessRatio: 6.0,
		FadeOutS:       0.02,
		NormalizePeak:  0.9,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.StereoWidth < 0 {
		return fmt.Errorf("stereo width must be >= 0")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.LateLevel < 0 {
		return fmt.Errorf("late level must be >= 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.TractLengthCm <= 0 {
		return fmt.Errorf("tract length must be > 0")
	}
	if c.PlateRatio <= 0 {
		return fmt.Errorf("plate ratio must be > 0")
	}
	if c.StiffnessRatio <= 0 {
		return fmt.Errorf("stiffness ratio must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// GenerateStereo synthesizes a stereo IR according to cfg.
func GenerateStereo(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := int(math.Round(cfg.DurationS * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	left := make([]float64, n)
	right := make([]float64, n)

	rng := rand.New(rand.NewSource(cfg.Seed))

	// Direct path impulse.
	left[0] += cfg.DirectLevel * (1.0 - 0.05*cfg.StereoWidth)
	right[0] += cfg.DirectLevel * (1.0 + 0.05*cfg.StereoWidth)

	maxF := 0.47 * float64(cfg.SampleRate)
	if maxF < 500.0 {
		maxF = 500.0
	}
	// The body-resonance band scales inversely with tract length: a
	// shorter tract pushes the whole band up, a longer one pulls it down,
	// relative to the 17.5cm adult-male baseline.
	tractScale := 17.5 / cfg.TractLengthCm
	minF := 35.0 * tractScale
	if minF >= maxF {
		minF = maxF * 0.5
	}

	// Modal body contribution with deterministic frequency placement: mode
	// frequencies come from the eigenfrequencies of a simply-supported
	// orthotropic plate (plateEigenfreqs), the same physically grounded
	// placement a resonant chest/throat cavity would have, rather than a
	// generic density-controlled power-law spacing. RNG is only used for
	// amplitude jitter, phase, and stereo pan (non-critical).
	freqs := plateEigenfreqs(minF, maxF, cfg.Modes, cfg.PlateRatio, cfg.StiffnessRatio)
	for _, f := range freqs {
		brightnessExp := 0.7 + 0.9*cfg.Brightness
		amp := 0.9 / math.Pow(1.0+f/120.0, brightnessExp)
		amp *= 0.7 + 0.6*rng.Float64()

		tau := lerp(cfg.LowDecayS, cfg.HighDecayS, math.Sqrt(f/maxF))
		decay := math.Exp(-1.0 / (tau * float64(cfg.SampleRate)))

		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		lGain := 1.0 - 0.45*pan
		rGain := 1.0 + 0.45*pan
		fSkew := 0.004 * pan
		fL := f * (1.0 - fSkew)
		fR := f * (1.0 + fSkew)

		phi := rng.Float64() * 2.0 * math.Pi
		addModeRec(left, amp*lGain, fL, phi, decay, cfg.SampleRate)
		addModeRec(right, amp*rGain, fR, phi+0.01*pan, decay, cfg.SampleRate)
	}

	// Early reflections cluster.
	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.001 + 0.030*rng.Float64()
		idx := int(t * float64(cfg.SampleRate))
		if idx <= 0 || idx >= n {
			continue
		}
		amp := (0.10 + 0.35*rng.Float64()) * math.Exp(-t*28.0)
		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		left[idx] += amp * (1.0 - 0.5*pan)
		right[idx] += amp * (1.0 + 0.5*pan)
	}

	// Diffuse late tail.
	if cfg.LateLevel > 0 {
		lpL := 0.0
		lpR := 0.0
		for i := 0; i < n; i++ {
			t := float64(i) / float64(cfg.SampleRate)
			env := math.Exp(-t / (0.75 * cfg.LowDecayS))
			nL := rng.NormFloat64()
			nR := rng.NormFloat64()
			lpL = 0.985*lpL + 0.015*nL
			lpR = 0.985*lpR + 0.015*nR
			left[i] += cfg.LateLevel * env * lpL
			right[i] += cfg.LateLevel * env * lpR
		}
	}

	// Remove tiny DC drift.
	highpassDC(left, 0.995)
	highpassDC(right, 0.995)
	applyFadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	applyFadeOut(right, cfg.FadeOutS, cfg.SampleRate)

	// Normalize.
	peak := maxAbs(left)
	if rp := maxAbs(right); rp > peak {
		peak = rp
	}
	if peak < 1e-12 {
		peak = 1e-12
	}
	s := cfg.NormalizePeak / peak
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := 0; i < n; i++ {
		outL[i] = float32(left[i] * s)
		outR[i] = float32(right[i] * s)
	}
	return outL, outR, nil
}

// plateEigenfreqs computes eigenfrequencies for a simply-supported orthotropic
// rectangular plate and returns up to maxModes frequencies in [f11, maxF].
// R = Lx/Ly (plate ratio), S = Dx/Dy (stiffness ratio).
func plateEigenfreqs(f11, maxF float64, maxModes int, R, S float64) []float64 {
	sqrtS := math.Sqrt(S)
	R2 := R * R
	R4 := R2 * R2
	denom := math.Sqrt(S + 2*sqrtS*R2 + R4)

	// Upper bound on mode indices: f_{m,1} ~ f11 * S^0.5 * m^2 / denom,
	// so m_max ~ sqrt(maxF/f11 * denom / sqrt(S)) + 1.
	mMax := int(math.Sqrt(maxF/f11*denom/sqrtS)) + 2
	nMax := int(math.Sqrt(maxF/f11*denom)) + 2

	freqs := make([]float64, 0, mMax*nMax)
	for m := 1; m <= mMax; m++ {
		m2 := float64(m * m)
		m4 := m2 * m2
		for n := 1; n <= nMax; n++ {
			n2 := float64(n * n)
			n4 := n2 * n2
			num := math.Sqrt(S*m4 + 2*sqrtS*m2*n2*R2 + n4*R4)
			f := f11 * num / denom
			if f > maxF {
				break // n only increases f, so inner loop can break
			}
			freqs = append(freqs, f)
		}
	}

	sort.Float64s(freqs)
	if len(freqs) > maxModes {
		freqs = freqs[:maxModes]
	}
	return freqs
}

func addModeRec(out []float64, amp float64, freq float64, phase float64, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := 1.0

	out[0] += amp * env * x0
	env *= decay
	if len(out) == 1 {
		return
	}
	out[1] += amp * env * x1
	env *= decay
	for i := 2; i < len(out); i++ {
		x2 := 2.0*cw*x1 - x0
		x0 = x1
		x1 = x2
		out[i] += amp * env * x2
		env *= decay
	}
}

func highpassDC(x []float64, r float64) {
	if len(x) == 0 {
		return
	}
	prevIn := 0.0
	prevOut := 0.0
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		a := math.Abs(v)
		if a > m {
			m = a
		}
	}
	return m
}

// applyFadeOut applies a cosine fade-out to the last fadeS seconds of buf.
func applyFadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	fadeSamples := int(math.Round(fadeS * float64(sampleRate)))
	if fadeSamples > len(buf) {
		fadeSamples = len(buf)
	}
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples) // 0..1
		gain := 0.5 * (1.0 + math.Cos(t*math.Pi))
		buf[start+i] *= gain
	}
}

func lerp(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}


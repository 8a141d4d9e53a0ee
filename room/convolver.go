// Package room applies a convolution reverb to a rendered vocal signal,
// giving a dry glottis/tract render the sense of a physical space (a body
// resonance, a small room, a synthesized plate).
package room

import (
	"fmt"
	"os"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
)

// Convolver implements partitioned convolution of a mono voice signal
// against a stereo impulse response.
type Convolver struct {
	sampleRate int
	partSize   int
	irLen      int

	leftOLA  *dspconv.OverlapAdd
	rightOLA *dspconv.OverlapAdd

	tailLeft  []float64
	tailRight []float64
}

// NewConvolver creates a convolver with an identity (dry) impulse response.
func NewConvolver(sampleRate int) *Convolver {
	c := &Convolver{
		sampleRate: sampleRate,
		partSize:   128,
	}
	c.SetIR([]float32{1.0}, []float32{1.0})
	return c
}

// Process convolves mono input against the configured IR and returns
// interleaved stereo output.
func (c *Convolver) Process(input []float32) []float32 {
	output := make([]float32, len(input)*2)
	if len(input) == 0 {
		return output
	}

	in64 := toFloat64(input)

	leftFull, errL := c.leftOLA.Process(in64)
	rightFull, errR := c.rightOLA.Process(in64)
	if errL != nil || errR != nil {
		for i, s := range input {
			output[i*2] = s
			output[i*2+1] = s
		}
		return output
	}

	outL, newTailL := overlapAddBlock(leftFull, c.tailLeft, len(input))
	outR, newTailR := overlapAddBlock(rightFull, c.tailRight, len(input))
	c.tailLeft = newTailL
	c.tailRight = newTailR

	for i := 0; i < len(input); i++ {
		output[i*2] = float32(outL[i])
		output[i*2+1] = float32(outR[i])
	}
	return output
}

// SetIR configures the left/right impulse responses directly.
func (c *Convolver) SetIR(leftIR []float32, rightIR []float32) {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1.0}
	}

	left64 := toFloat64(leftIR)
	right64 := toFloat64(rightIR)

	leftOLA, errL := dspconv.NewOverlapAdd(left64, c.partSize)
	rightOLA, errR := dspconv.NewOverlapAdd(right64, c.partSize)
	if errL != nil || errR != nil {
		return
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = len(leftIR)
	if len(rightIR) > c.irLen {
		c.irLen = len(rightIR)
	}
	if c.irLen < 1 {
		c.irLen = 1
	}
	c.Reset()
}

// SetIRFromWAV loads a mono/stereo impulse response from a WAV file,
// resampling it to the convolver's sample rate if needed.
func (c *Convolver) SetIRFromWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if srcRate <= 0 {
		return fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	if numCh == 1 {
		for i := 0; i < frames; i++ {
			v := buf.Data[i]
			left[i] = v
			right[i] = v
		}
	} else {
		for i := 0; i < frames; i++ {
			left[i] = buf.Data[i*numCh]
			right[i] = buf.Data[i*numCh+1]
		}
	}

	left, err = c.resampleIfNeeded(left, srcRate)
	if err != nil {
		return err
	}
	right, err = c.resampleIfNeeded(right, srcRate)
	if err != nil {
		return err
	}
	c.SetIR(left, right)
	return nil
}

// Reset clears convolver history and overlap buffers.
func (c *Convolver) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
	tailLen := c.irLen - 1
	if tailLen < 0 {
		tailLen = 0
	}
	c.tailLeft = make([]float64, tailLen)
	c.tailRight = make([]float64, tailLen)
}

func (c *Convolver) resampleIfNeeded(in []float32, inRate int) ([]float32, error) {
	if inRate == c.sampleRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(inRate),
		float64(c.sampleRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}

	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64 := r.Process(in64)
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func overlapAddBlock(convOut []float64, tail []float64, blockLen int) ([]float64, []float64) {
	if len(convOut) < blockLen {
		out := make([]float64, blockLen)
		copy(out, convOut)
		return out, nil
	}

	full := make([]float64, len(convOut))
	copy(full, convOut)
	n := len(tail)
	if n > len(full) {
		n = len(full)
	}
	for i := 0; i < n; i++ {
		full[i] += tail[i]
	}

	out := make([]float64, blockLen)
	copy(out, full[:blockLen])
	newTail := make([]float64, len(full)-blockLen)
	copy(newTail, full[blockLen:])
	return out, newTail
}

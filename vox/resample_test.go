package vox

import (
	"math"
	"testing"
)

func TestResampleConstantInputConverges(t *testing.T) {
	const constant = 0.42

	cases := []struct {
		name   string
		inRate float64
		outRate float64
	}{
		{"upsample", 24000, 48000},
		{"downsample", 96000, 48000},
		{"identity", 48000, 48000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewResample(c.inRate, c.outRate)
			producer := func() float64 { return constant }

			var last float64
			for i := 0; i < 2000; i++ {
				last = r.Process(producer)
			}
			if math.Abs(last-constant) > 1e-9 {
				t.Fatalf("%s: expected output to converge to %v, got %v", c.name, constant, last)
			}
		})
	}
}

func TestResampleIdentityPassesThroughExactly(t *testing.T) {
	r := NewResample(48000, 48000)
	values := []float64{0.1, -0.5, 0.0, 1.0, -1.0}
	i := 0
	for _, want := range values {
		got := r.Process(func() float64 {
			v := values[i]
			i++
			return v
		})
		if got != want {
			t.Fatalf("identity resample mismatch: want %v, got %v", want, got)
		}
	}
}

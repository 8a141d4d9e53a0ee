package vox

import "math"

// TongueGlide eases a tract's tongue pose toward a target at a fixed
// speed, decoupled from the tract's own per-block diameter reshape: the
// target moves instantly on a routine/note event, the tongue itself
// glides toward it over subsequent blocks.
type TongueGlide struct {
	Target [2]float64 // (index, diameter)
	Speed  float64    // index-units (scaled) and cm per second
}

// NewTongueGlide starts at the default tongue pose with the source's
// default glide speed.
func NewTongueGlide() *TongueGlide {
	return &TongueGlide{Target: DefaultTongue, Speed: 20.0}
}

// Update moves tongue toward Target by at most Speed*dtime, using a
// wider step scale on the index axis (x_scale) since tongue index and
// diameter live on very different numeric ranges.
func (g *TongueGlide) Update(dtime float64, tongue *[2]float64) {
	const xScale = 8.0
	x := (g.Target[0] - tongue[0]) / xScale
	y := g.Target[1] - tongue[1]
	d := math.Hypot(x, y)
	if d < 0.0001 {
		return
	}
	dx := x / d * dtime * g.Speed * xScale
	dy := y / d * dtime * g.Speed

	if g.Target[0] < tongue[0] {
		tongue[0] = math.Max(g.Target[0], tongue[0]+dx)
	} else {
		tongue[0] = math.Min(g.Target[0], tongue[0]+dx)
	}
	if g.Target[1] < tongue[1] {
		tongue[1] = math.Max(g.Target[1], tongue[1]+dy)
	} else {
		tongue[1] = math.Min(g.Target[1], tongue[1]+dy)
	}
}

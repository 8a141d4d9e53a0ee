package vox

// PIDParam holds the gains for a discrete PID controller, exposed to a
// hosting GUI as knob values.
type PIDParam struct {
	Kp, Ki, Kd float64
}

// NewPIDParam is a small convenience constructor mirroring the source's
// positional-argument style.
func NewPIDParam(kp, ki, kd float64) PIDParam {
	return PIDParam{Kp: kp, Ki: ki, Kd: kd}
}

// pidController is a discrete PID with a fixed sample period; it
// accumulates its own integral and derivative state across calls.
type pidController struct {
	dtime    float64
	integral float64
	last     float64
}

func newPIDController(sampleRate float64) *pidController {
	return &pidController{dtime: 1.0 / sampleRate}
}

// process runs one control step on error x and returns the control
// output.
func (c *pidController) process(p PIDParam, x float64) float64 {
	d := x - c.last
	c.integral += x * c.dtime
	y := (x*p.Kp+c.integral*p.Ki)*c.dtime + d*p.Kd
	c.last = x
	return y
}

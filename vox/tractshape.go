package vox

import "math"

// DefaultTongue is the resting tongue pose (index, diameter) used when a
// Tract is constructed, matching the synth facade's default "schwa"-ish
// shape.
var DefaultTongue = [2]float64{12.9, 2.43}

// constriction is a non-tongue narrowing of the vocal tract: teeth,
// alveolar ridge, palate, or velar constrictions, addressed by index in
// the facade's note-range layout.
type constriction struct {
	index    float64
	diameter float64
}

// ShapeSource holds the tract geometry inputs (tongue pose and the
// ordered list of other constrictions) and derives a target mouth/nose
// diameter profile from them. The number of other constrictions is fixed
// once the first diameter is computed from it.
type ShapeSource struct {
	Length     int
	NoseLength int
	BladeStart int
	TipStart   int
	LipStart   int
	NoseStart  int

	originalDiameter []float64

	Tongue             [2]float64 // (index, diameter)
	OtherConstrictions []constriction
}

// NewShapeSource builds the baseline mouth profile (0.6cm back, 1.1cm
// mid, 1.5cm front) for a tract of the given cell counts.
func NewShapeSource(length, noseLength int) *ShapeSource {
	original := make([]float64, length)
	for i := range original {
		switch {
		case float64(i) < 7.0/44.0*float64(length)-0.5:
			original[i] = 0.6
		case float64(i) < 12.0/44.0*float64(length):
			original[i] = 1.1
		default:
			original[i] = 1.5
		}
	}

	return &ShapeSource{
		Length:           length,
		NoseLength:       noseLength,
		BladeStart:       int(math.Floor(10.0 / 44.0 * float64(length))),
		TipStart:         int(math.Floor(32.0 / 44.0 * float64(length))),
		LipStart:         int(math.Floor(39.0 / 44.0 * float64(length))),
		NoseStart:        length - noseLength + 1,
		originalDiameter: original,
		Tongue:           DefaultTongue,
	}
}

// ComputeDiameter fills diameter.Mouth from the baseline profile, the
// tongue bump, and each active other-constriction narrowing.
func (s *ShapeSource) ComputeDiameter(diameter *Diameter) {
	const gridOffset = 1.7

	tongueIndex, tongueDiameter := s.Tongue[0], s.Tongue[1]

	copy(diameter.Mouth, s.originalDiameter)
	for i := s.BladeStart; i < s.LipStart; i++ {
		t := 1.1 * math.Pi * (tongueIndex - float64(i)) / float64(s.TipStart-s.BladeStart)
		fixedTongueDiameter := 2.0 + (tongueDiameter-2.0)/1.5
		curve := (1.5 - fixedTongueDiameter + gridOffset) * math.Cos(t)
		if i == s.BladeStart-2 || i == s.LipStart-1 {
			curve *= 0.8
		}
		if i == s.BladeStart || i == s.LipStart-2 {
			curve *= 0.94
		}
		diameter.Mouth[i] = 1.5 - curve
	}

	for _, c := range s.OtherConstrictions {
		index := c.index
		d := math.Max(c.diameter-0.3, 0.0)

		var width float64
		switch {
		case index < 25.0:
			width = 10.0
		case index >= float64(s.TipStart):
			width = 5.0
		default:
			width = 10.0 - 5.0*(index-25.0)/(float64(s.TipStart)-25.0)
		}

		if index >= 2.0 && index < float64(s.Length) && d < 3.0 {
			intIndex := int(math.Round(index))
			lo := -int(math.Ceil(width)) - 1
			hi := int(width) + 1
			for i := lo; i < hi; i++ {
				idx := intIndex + i
				if idx < 0 || idx >= s.Length {
					continue
				}
				relpos := math.Abs(float64(idx)-index) - 0.5
				var shrink float64
				switch {
				case relpos <= 0.0:
					shrink = 0.0
				case relpos > width:
					shrink = 1.0
				default:
					shrink = 0.5 * (1.0 - math.Cos(math.Pi*relpos/width))
				}
				if d < diameter.Mouth[idx] {
					diameter.Mouth[idx] = d + (diameter.Mouth[idx]-d)*shrink
				}
			}
		}
	}
}

// TongueClamp restricts a candidate tongue (index, diameter) pair to the
// physically plausible ellipse region used by preset note ranges.
func (s *ShapeSource) TongueClamp(index, diameter float64) (float64, float64) {
	const innerRadius = 2.05
	const outerRadius = 3.5
	lowerIndexBound := float64(s.BladeStart) + 2.0
	upperIndexBound := float64(s.TipStart) - 3.0
	indexCenter := (lowerIndexBound + upperIndexBound) * 0.5

	fromPoint := clamp((outerRadius-diameter)/(outerRadius-innerRadius), 0.0, 1.0)
	fromPoint = math.Pow(fromPoint, 0.58) - 0.2*(fromPoint*fromPoint-fromPoint)
	out := fromPoint * 0.5 * (upperIndexBound - lowerIndexBound)
	index = clamp(index, indexCenter-out, indexCenter+out)

	diameter = clamp(diameter, innerRadius, outerRadius)
	return index, diameter
}

// Diameter is the current or target mouth/nose geometry, in centimeters.
// nose[0] is the velum opening.
type Diameter struct {
	noseStart int
	tipStart  int
	Mouth     []float64
	Nose      []float64
}

// NewDiameter builds the default nose profile and an empty mouth profile
// sized to match source.
func NewDiameter(source *ShapeSource) *Diameter {
	nose := make([]float64, source.NoseLength)
	for i := range nose {
		d := 2.0 * float64(i) / float64(source.NoseLength)
		var v float64
		if d < 1.0 {
			v = 0.4 + 1.6*d
		} else {
			v = 0.5 + 1.5*(2.0-d)
		}
		nose[i] = math.Min(1.9, v)
	}
	nose[0] = 0.01 // velum

	return &Diameter{
		noseStart: source.NoseStart,
		tipStart:  source.TipStart,
		Mouth:     make([]float64, source.Length),
		Nose:      nose,
	}
}

// Clone returns a deep copy, used to seed current/target pairs that must
// not alias.
func (d *Diameter) Clone() *Diameter {
	out := &Diameter{noseStart: d.noseStart, tipStart: d.tipStart}
	out.Mouth = append([]float64(nil), d.Mouth...)
	out.Nose = append([]float64(nil), d.Nose...)
	return out
}

// Reshape moves the current diameter toward target by amount centimeters,
// asymmetrically: faster when closing than when opening, with the
// opening rate ramping from 0.6 before the nose junction to 1.0 at the
// tongue tip. The velum moves up at 0.25*amount, down at 0.1*amount.
func (d *Diameter) Reshape(target *Diameter, amount float64) {
	for i := range d.Mouth {
		var slowReturn float64
		switch {
		case i < d.noseStart:
			slowReturn = 0.6
		case i >= d.tipStart:
			slowReturn = 1.0
		default:
			slowReturn = 0.6 + 0.4*(float64(i)-float64(d.noseStart))/(float64(d.tipStart)-float64(d.noseStart))
		}
		d.Mouth[i] = moveTowards(d.Mouth[i], target.Mouth[i], slowReturn*amount, 2.0*amount)
	}

	d.Nose[0] = moveTowards(d.Nose[0], target.Nose[0], 0.25*amount, 0.1*amount)
}

// ComputeReflections derives reflection coefficients from d's current
// cross-sectional areas (diameter squared).
func (d *Diameter) ComputeReflections(r *Reflections) {
	area := make([]float64, len(d.Mouth))
	for i, v := range d.Mouth {
		area[i] = v * v
	}
	for i := 0; i < len(d.Mouth)-1; i++ {
		if area[i+1] == 0.0 {
			r.Mouth[i] = 0.999
		} else {
			r.Mouth[i] = (area[i] - area[i+1]) / (area[i] + area[i+1])
		}
	}

	noseArea := make([]float64, len(d.Nose))
	for i, v := range d.Nose {
		noseArea[i] = v * v
	}
	for i := 0; i < len(d.Nose)-1; i++ {
		r.Nose[i] = (noseArea[i] - noseArea[i+1]) / (noseArea[i] + noseArea[i+1])
	}

	sum := area[d.noseStart] + area[d.noseStart+1] + noseArea[0]
	r.JunctionLeft = 2.0*area[d.noseStart]/sum - 1.0
	r.JunctionRight = 2.0*area[d.noseStart+1]/sum - 1.0
	r.JunctionNose = 2.0*noseArea[0]/sum - 1.0
}

// Reflections holds the per-cell reflection coefficients plus the
// three-way branch-junction scalars.
type Reflections struct {
	Mouth []float64
	Nose  []float64

	JunctionLeft  float64
	JunctionRight float64
	JunctionNose  float64
}

// NewReflections allocates zeroed reflection arrays for the given cell
// counts.
func NewReflections(length, noseLength int) *Reflections {
	return &Reflections{
		Mouth: make([]float64, length-1),
		Nose:  make([]float64, noseLength-1),
	}
}

// Clone returns a deep copy.
func (r *Reflections) Clone() *Reflections {
	return &Reflections{
		Mouth:         append([]float64(nil), r.Mouth...),
		Nose:          append([]float64(nil), r.Nose...),
		JunctionLeft:  r.JunctionLeft,
		JunctionRight: r.JunctionRight,
		JunctionNose:  r.JunctionNose,
	}
}

package vox

import "math"

// HistorySample is one telemetry snapshot (taken roughly every 20ms) fed
// to a hosting GUI's plotting, mirroring the source's rolling
// [frequency, intensity, tenseness, loudness, rms] history buffer.
type HistorySample struct {
	Frequency float64
	Intensity float64
	Tenseness float64
	Loudness  float64
	RMS       float64
}

const historyCapacity = 1000

// ManagedParams are the knobs a hosting GUI exposes over the managed
// controller, read fresh at the top of each process() call.
type ManagedParams struct {
	AlwaysSound      bool
	FrequencyMode    FrequencyMode
	IntensityMode    IntensityMode
	FrequencyPID     PIDParam
	IntensityPID     PIDParam
	WobbleAmount     float64
	VibratoAmount    float64
	VibratoFrequency float64
	AspirationLevel  float64
}

// DefaultManagedParams matches the source's defaults.
func DefaultManagedParams() ManagedParams {
	return ManagedParams{
		AlwaysSound:      false,
		FrequencyMode:    FrequencyPID,
		IntensityMode:    IntensityPID,
		FrequencyPID:     NewPIDParam(50.0, 20.0, 0.3),
		IntensityPID:     NewPIDParam(10.0, 100.0, 0.0),
		WobbleAmount:     0.1,
		VibratoAmount:    0.005,
		VibratoFrequency: 6.0,
		AspirationLevel:  1.0,
	}
}

// ManagedController is the parameter-smoothing layer that sits between
// the sparse, high-level events the Synth facade produces and the
// per-sample Engine kernel: it holds Frequency/Tenseness/Intensity/
// Loudness smoothing, the tongue glide, and the telemetry the GUI reads.
type ManagedController struct {
	Sound bool

	Frequency *Frequency
	Tenseness *Tenseness
	Intensity *Intensity
	Loudness  *Loudness
	Tongue    *TongueGlide

	Engine *Engine

	updateTimer *IntervalTimer
	sampleRate  float64
	dtime       float64

	History      []HistorySample
	historyCount int
	level        float32

	Waveform *WaveformRecorder
}

// NewManagedController constructs a managed controller driving an Engine
// at the given sound speed / sample rate, seeded identically throughout.
// freqMode and intensityMode select the Frequency/Intensity tracking
// strategy (see ManagedParams.FrequencyMode/IntensityMode).
func NewManagedController(soundSpeed, sampleRate float64, seed uint32, freqMode FrequencyMode, intensityMode IntensityMode) *ManagedController {
	const interval = 0.02
	return &ManagedController{
		Sound:       false,
		Frequency:   NewFrequency(freqMode, interval, seed, 140.0, sampleRate),
		Tenseness:   NewTenseness(interval, seed, 0.6),
		Intensity:   NewIntensity(intensityMode, sampleRate),
		Loudness:    NewLoudness(math.Pow(0.6, 0.25)),
		Tongue:      NewTongueGlide(),
		Engine:      NewEngine(soundSpeed, sampleRate, 1.0, seed, false),
		updateTimer: NewIntervalTimerOverflowed(interval),
		sampleRate:  sampleRate,
		dtime:       1.0 / sampleRate,
		Waveform:    NewWaveformRecorder(),
	}
}

// SetTenseness sets the target tenseness and derives the loudness target
// (tenseness^0.25) from it, mirroring the source's combined setter.
func (m *ManagedController) SetTenseness(tenseness float64) {
	tenseness = clamp(tenseness, 0.0, 1.0)
	m.Tenseness.TargetTenseness = tenseness
	m.Loudness.Target = math.Pow(tenseness, 0.25)
}

// Process advances the controller and its engine by one host-rate
// sample.
func (m *ManagedController) Process(params ManagedParams) float64 {
	if m.updateTimer.Overflowed() {
		m.Frequency.update(m.updateTimer.Interval, params.WobbleAmount, params.VibratoAmount, params.VibratoFrequency)
		m.Tenseness.update()
		m.Tongue.Update(m.updateTimer.Interval, &m.Engine.Tract.Source.Tongue)
		m.Engine.Tract.UpdateDiameter()
		m.Intensity.updateBlock(m.Sound, m.updateTimer.Interval)
	}
	lambda := m.updateTimer.Progress()
	m.updateTimer.Update(m.dtime)

	m.Intensity.processSample(m.Sound, params.AlwaysSound, params.IntensityPID)

	intensity := m.Intensity.get(lambda)
	frequency := m.Frequency.get(params.FrequencyPID, lambda)
	tenseness := m.Tenseness.get(lambda)
	loudness := m.Loudness.process(m.dtime)

	if m.historyCount == 0 {
		m.historyCount = int(m.sampleRate) / 50
		rms := 0.0
		if m.historyCount > 0 {
			rms = math.Sqrt(float64(m.level) / float64(m.historyCount))
		}
		m.History = append(m.History, HistorySample{
			Frequency: frequency,
			Intensity: intensity,
			Tenseness: tenseness,
			Loudness:  loudness,
			RMS:       rms,
		})
		m.level = 0.0
		if len(m.History) > historyCapacity {
			m.History = m.History[1:]
		}
	}
	m.historyCount--
	glot := m.Engine.GlottalOutput()
	m.level += float32(glot * glot)

	y := m.Engine.Process(frequency, tenseness, intensity, loudness, params.AspirationLevel)

	m.Waveform.Record(m.Engine.Glottis.Phase(), m.Engine.GlottalOutput())

	return y
}

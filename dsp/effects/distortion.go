package effects

import (
	"fmt"
	"math"
)

const (
	// GateThreshold is the absolute level below which the noise gate acts.
	GateThreshold = 0.01
	// GateFactor is the gain applied below GateThreshold.
	GateFactor = 0.1
	// RangeScale converts the range parameter into pre-shaping gain.
	RangeScale = 5.0
	// ShapeCeiling bounds the Sa and Bi shaper outputs (and scales Wa).
	ShapeCeiling = 0.9

	// Bi input is limited so the cubic fold stays finite for any finite
	// sample.
	maxFoldInput = 1e6

	minDistortionDrive  = 0.0
	maxDistortionDrive  = 2.0
	minDistortionRange  = 0.0
	maxDistortionRange  = 5.0
	minDistortionVolume = 0.0
	maxDistortionVolume = 2.0

	defaultDistortionDrive  = 0.5
	defaultDistortionRange  = 1.0
	defaultDistortionBlend  = 0.8
	defaultDistortionVolume = 1.0
)

// DistortionMode selects the waveshaper.
type DistortionMode int

const (
	// DistortionModeWa is tanh saturation.
	DistortionModeWa DistortionMode = iota
	// DistortionModeSa is tanh pre-shaping into a hard clip.
	DistortionModeSa
	// DistortionModeBi is a sine wavefolder.
	DistortionModeBi

	numDistortionModes
)

func (m DistortionMode) String() string {
	switch m {
	case DistortionModeWa:
		return "Wa"
	case DistortionModeSa:
		return "Sa"
	case DistortionModeBi:
		return "Bi"
	default:
		return fmt.Sprintf("DistortionMode(%d)", int(m))
	}
}

// ModeFromParam maps a distortionType parameter in [0, 1] to a mode using
// round(v*2). The switch is hard at 0.25 and 0.75; out-of-range values
// clamp and NaN selects Wa.
func ModeFromParam(v float64) DistortionMode {
	if math.IsNaN(v) {
		return DistortionModeWa
	}

	idx := math.Round(v * 2)
	switch {
	case idx <= 0:
		return DistortionModeWa
	case idx >= 2:
		return DistortionModeBi
	default:
		return DistortionModeSa
	}
}

// Param returns the distortionType parameter value at the mode's detent.
func (m DistortionMode) Param() float64 {
	return float64(m) / 2
}

// Gate returns the noise-gate factor for x: GateFactor when |x| is below
// GateThreshold, otherwise 1.
func Gate(x float64) float64 {
	if math.Abs(x) < GateThreshold {
		return GateFactor
	}

	return 1
}

// PreGain converts the range parameter into pre-shaping gain.
func PreGain(rangeParam float64) float64 {
	return rangeParam * RangeScale
}

// PostGain converts the volume parameter into post-shaping gain.
func PostGain(volume float64) float64 {
	return 0.5 + volume*1.5
}

// Shape applies the mode's transfer curve to an already pre-gained sample.
func Shape(mode DistortionMode, x, drive float64) float64 {
	switch mode {
	case DistortionModeSa:
		x = mathTanh(x*0.6) * 1.8
		return clamp(x*(1+drive*2), -ShapeCeiling, ShapeCeiling)
	case DistortionModeBi:
		x = clamp(x, -maxFoldInput, maxFoldInput)
		folded := x - 0.2*x*x*x
		return clamp(mathSin(folded*math.Pi*(0.5+drive*0.5)), -ShapeCeiling, ShapeCeiling)
	default:
		return mathTanh(x*(1+drive)) * ShapeCeiling
	}
}

// DistortionOption mutates construction-time parameters.
type DistortionOption func(*Distortion) error

// WithDistortionMode selects the waveshaper.
func WithDistortionMode(mode DistortionMode) DistortionOption {
	return func(d *Distortion) error {
		if mode < 0 || mode >= numDistortionModes {
			return fmt.Errorf("distortion mode is invalid: %d", mode)
		}

		d.mode = mode

		return nil
	}
}

// WithDistortionDrive sets drive in [0, 2].
func WithDistortionDrive(drive float64) DistortionOption {
	return func(d *Distortion) error {
		if err := checkRange("drive", drive, minDistortionDrive, maxDistortionDrive); err != nil {
			return err
		}

		d.drive = drive

		return nil
	}
}

// WithDistortionRange sets the range parameter in [0, 5].
func WithDistortionRange(rangeParam float64) DistortionOption {
	return func(d *Distortion) error {
		if err := checkRange("range", rangeParam, minDistortionRange, maxDistortionRange); err != nil {
			return err
		}

		d.preGain = PreGain(rangeParam)

		return nil
	}
}

// WithDistortionVolume sets the volume parameter in [0, 2].
func WithDistortionVolume(volume float64) DistortionOption {
	return func(d *Distortion) error {
		if err := checkRange("volume", volume, minDistortionVolume, maxDistortionVolume); err != nil {
			return err
		}

		d.postGain = PostGain(volume)

		return nil
	}
}

// WithDistortionBlend sets the dry/wet blend in [0, 1].
func WithDistortionBlend(blend float64) DistortionOption {
	return func(d *Distortion) error {
		if err := checkRange("blend", blend, 0, 1); err != nil {
			return err
		}

		d.blend = blend

		return nil
	}
}

// Distortion holds one block's worth of shaping parameters. It has no
// memory between samples, so a single value can serve every channel.
type Distortion struct {
	mode     DistortionMode
	drive    float64
	preGain  float64
	postGain float64
	blend    float64
}

// NewDistortion creates a Distortion with default parameters, then applies
// opts.
func NewDistortion(opts ...DistortionOption) (*Distortion, error) {
	d := &Distortion{}
	d.Configure(DistortionModeWa, defaultDistortionDrive, defaultDistortionRange,
		defaultDistortionVolume, defaultDistortionBlend)

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Configure sets all parameters from raw parameter values without range
// checks. It is the per-block path and never allocates.
func (d *Distortion) Configure(mode DistortionMode, drive, rangeParam, volume, blend float64) {
	d.mode = mode
	d.drive = drive
	d.preGain = PreGain(rangeParam)
	d.postGain = PostGain(volume)
	d.blend = blend
}

// ProcessSample runs gate, shaper, post-gain and blend on one sample.
//
// The gate factor scales the input before shaping and the blended result
// again, so a sub-threshold sample is attenuated twice.
func (d *Distortion) ProcessSample(clean float64) float64 {
	gate := Gate(clean)
	gated := clean * gate

	wet := Shape(d.mode, gated*d.preGain, d.drive) * d.postGain

	return (wet*d.blend + gated*(1-d.blend)) * gate
}

// ProcessInPlace applies ProcessSample to every sample of buf.
func (d *Distortion) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}

// Mode returns the selected waveshaper.
func (d *Distortion) Mode() DistortionMode { return d.mode }

// Drive returns the drive parameter.
func (d *Distortion) Drive() float64 { return d.drive }

// PreGain returns the pre-shaping gain (range * 5).
func (d *Distortion) PreGain() float64 { return d.preGain }

// PostGain returns the post-shaping gain (0.5 + 1.5 * volume).
func (d *Distortion) PostGain() float64 { return d.postGain }

// Blend returns the wet fraction.
func (d *Distortion) Blend() float64 { return d.blend }

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) {
		return fmt.Errorf("distortion %s must be in [%g, %g]: %f", name, lo, hi, v)
	}

	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}

	if x > hi {
		return hi
	}

	return x
}

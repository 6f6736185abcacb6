package wasabi

import (
	"github.com/cwbudde/algo-wasabi/dsp/filter/biquad"
	"github.com/cwbudde/algo-wasabi/dsp/filter/design"
	"github.com/cwbudde/algo-wasabi/plugin/params"
)

const (
	// LowPassQ is slightly below Butterworth.
	LowPassQ = 0.7
	// MidQ is the mid-peak bandwidth.
	MidQ = 1.0
	// HighPassQ is Butterworth; the high-pass has no resonance control.
	HighPassQ = design.ButterworthQ
)

// CoefficientSet holds one block's coefficients for the three filter roles.
type CoefficientSet struct {
	HighPass biquad.Coefficients
	Mid      biquad.Coefficients
	LowPass  biquad.Coefficients
}

// FilterSettings are the parameter values the filters depend on.
type FilterSettings struct {
	HighPassFreq float64
	MidFreq      float64
	MidGainDB    float64
	LowPassFreq  float64
}

// FilterSettingsFrom reads the filter parameters from src.
func FilterSettingsFrom(src ParamSource) FilterSettings {
	return FilterSettings{
		HighPassFreq: src.Value(params.HighPassFreq),
		MidFreq:      src.Value(params.MidFreq),
		MidGainDB:    src.Value(params.MidGain),
		LowPassFreq:  src.Value(params.LowPassFreq),
	}
}

// DesignCoefficients computes the filter coefficients at sampleRate, the
// host rate. Cutoffs are clamped below its Nyquist first, so the result is
// always finite for a positive, finite sampleRate.
func DesignCoefficients(sampleRate float64, fs FilterSettings) CoefficientSet {
	return CoefficientSet{
		HighPass: design.Highpass(design.ClampCutoff(fs.HighPassFreq, sampleRate), HighPassQ, sampleRate),
		Mid:      design.Peak(design.ClampCutoff(fs.MidFreq, sampleRate), fs.MidGainDB, MidQ, sampleRate),
		LowPass:  design.Lowpass(design.ClampCutoff(fs.LowPassFreq, sampleRate), LowPassQ, sampleRate),
	}
}

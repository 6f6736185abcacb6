package design

import (
	"math"

	"github.com/cwbudde/algo-wasabi/dsp/core"
	"github.com/cwbudde/algo-wasabi/dsp/filter/biquad"
)

const (
	// ButterworthQ is the Q of a maximally flat second-order section.
	ButterworthQ = 1 / math.Sqrt2

	// MaxCutoffRatio is the highest cutoff ClampCutoff allows, as a fraction
	// of the sample rate.
	MaxCutoffRatio = 0.45

	// MinCutoff is the lowest cutoff ClampCutoff allows, in Hz.
	MinCutoff = 1.0
)

// ClampCutoff limits freq to [MinCutoff, MaxCutoffRatio*sampleRate].
// NaN maps to MinCutoff. A non-positive or non-finite sampleRate returns
// freq unchanged; the designers reject it separately.
func ClampCutoff(freq, sampleRate float64) float64 {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return freq
	}
	if math.IsNaN(freq) {
		return MinCutoff
	}

	limit := MaxCutoffRatio * sampleRate
	if limit < MinCutoff {
		return limit
	}

	return math.Min(math.Max(freq, MinCutoff), limit)
}

// Lowpass designs a second-order lowpass at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2

	return normalizeBiquad(b0, b1, b0, 1+alpha, -2*cw, 1-alpha)
}

// Highpass designs a second-order highpass at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cw) / 2

	return normalizeBiquad(b0, -(1 + cw), b0, 1+alpha, -2*cw, 1-alpha)
}

// Peak designs a peaking-EQ biquad centered at freq with gain in dB.
// The response at freq is exactly 10^(gainDB/20) and unity far from it.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !core.IsFinite(gainDB) {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Pow(10, gainDB/40)

	return normalizeBiquad(
		1+alpha*a, -2*cw, 1-alpha*a,
		1+alpha/a, -2*cw, 1-alpha/a,
	)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 0, false
	}

	if !core.IsFinite(freq) || freq <= 0 || freq >= sampleRate/2 {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || !core.IsFinite(q) {
		return ButterworthQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || !core.IsFinite(a0) {
		return biquad.Identity()
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

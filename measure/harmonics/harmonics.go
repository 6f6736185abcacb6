// Package harmonics measures the harmonic content of a rendered signal:
// fundamental level, per-harmonic ratios, THD and basic level statistics.
package harmonics

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-wasabi/dsp/core"
	"github.com/cwbudde/algo-wasabi/dsp/window"
)

const (
	defaultMaxHarmonics = 9
	minSearchHz         = 20.0
	// hannLobeBins is the half-width of the Hann main lobe in bins of an
	// unpadded transform.
	hannLobeBins = 2
)

// ErrEmptySignal is returned when there is nothing to analyze.
var ErrEmptySignal = errors.New("harmonics: empty signal")

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// Fundamental is the expected fundamental in Hz. Zero searches for the
	// strongest component above 20 Hz.
	Fundamental float64
	// MaxHarmonics limits the harmonics measured (H2 and up). Zero means 9.
	MaxHarmonics int
}

// Result holds the measurement.
type Result struct {
	// Fundamental is the analyzed fundamental frequency in Hz.
	Fundamental float64
	// FundamentalLevel is the estimated sine amplitude of the fundamental.
	FundamentalLevel float64
	// Harmonics are the amplitudes of H2, H3, ... relative to the
	// fundamental.
	Harmonics []float64
	THD       float64
	THDdB     float64
	Peak      float64
	RMS       float64
	DC        float64
}

// Analyze applies a Hann window, transforms the signal with a zero-padded
// power-of-two FFT and measures the fundamental and its harmonics. Levels
// are energy sums over each component's main lobe, so the result does not
// depend on where the tone falls between bins.
func Analyze(signal []float64, cfg Config) (Result, error) {
	n := len(signal)
	if n == 0 {
		return Result{}, ErrEmptySignal
	}
	if cfg.SampleRate <= 0 || !core.IsFinite(cfg.SampleRate) {
		return Result{}, fmt.Errorf("harmonics: sample rate must be > 0 and finite: %f", cfg.SampleRate)
	}
	if cfg.Fundamental < 0 || cfg.Fundamental >= cfg.SampleRate/2 || math.IsNaN(cfg.Fundamental) {
		return Result{}, fmt.Errorf("harmonics: fundamental must be in [0, %g): %f", cfg.SampleRate/2, cfg.Fundamental)
	}

	maxHarmonics := cfg.MaxHarmonics
	if maxHarmonics <= 0 {
		maxHarmonics = defaultMaxHarmonics
	}

	res := Result{
		Peak: vecmath.MaxAbs(signal),
		RMS:  math.Sqrt(vecmath.DotProduct(signal, signal) / float64(n)),
		DC:   vecmath.Sum(signal) / float64(n),
	}

	fftSize := nextPowerOf2(n)
	power, winEnergy, err := powerSpectrum(signal, fftSize)
	if err != nil {
		return Result{}, err
	}

	binHz := cfg.SampleRate / float64(fftSize)
	maxBin := len(power) - 1
	capture := hannLobeBins * int(math.Ceil(float64(fftSize)/float64(n)))

	var f0 float64
	if cfg.Fundamental > 0 {
		f0 = cfg.Fundamental
	} else {
		lower := max(int(math.Ceil(minSearchHz/binHz)), capture+1)
		if lower > maxBin {
			return Result{}, fmt.Errorf("harmonics: signal too short to search for a fundamental: %d samples", n)
		}
		f0 = float64(strongestBin(power, lower, maxBin)) * binHz
	}

	fundBin := int(math.Round(f0 / binHz))
	if fundBin <= capture {
		return Result{}, fmt.Errorf("harmonics: fundamental %g Hz too close to DC for %d samples", f0, n)
	}
	res.Fundamental = f0

	// A sine of amplitude A puts A^2/4 * fftSize * sum(w^2) into the
	// positive-frequency half.
	norm := 4 / (float64(fftSize) * winEnergy)
	amplitude := func(bin int) float64 {
		lo := max(bin-capture, 1)
		hi := min(bin+capture, maxBin)
		var e float64
		for i := lo; i <= hi; i++ {
			e += power[i]
		}
		return math.Sqrt(e * norm)
	}

	res.FundamentalLevel = amplitude(fundBin)
	if res.FundamentalLevel == 0 {
		res.THDdB = math.Inf(-1)
		return res, nil
	}

	var harmonicEnergy float64
	res.Harmonics = make([]float64, 0, maxHarmonics)
	for k := 2; k < maxHarmonics+2; k++ {
		bin := int(math.Round(float64(k) * f0 / binHz))
		if bin+capture > maxBin {
			break
		}
		ratio := amplitude(bin) / res.FundamentalLevel
		res.Harmonics = append(res.Harmonics, ratio)
		harmonicEnergy += ratio * ratio
	}

	res.THD = math.Sqrt(harmonicEnergy)
	res.THDdB = ratioToDB(res.THD)

	return res, nil
}

// powerSpectrum returns |X[k]|^2 for k in [0, fftSize/2] of the
// Hann-windowed, zero-padded signal, and the window energy sum(w^2).
func powerSpectrum(signal []float64, fftSize int) ([]float64, float64, error) {
	n := len(signal)

	win, err := window.Hann(n, window.WithPeriodic())
	if err != nil {
		return nil, 0, fmt.Errorf("harmonics: %w", err)
	}
	buf, err := window.ApplyCoefficients(signal, win)
	if err != nil {
		return nil, 0, fmt.Errorf("harmonics: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range buf {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, 0, fmt.Errorf("harmonics: %w", err)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, fmt.Errorf("harmonics: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	return power, window.Energy(win), nil
}

func strongestBin(power []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if power[i] > power[best] {
			best = i
		}
	}
	return best
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

package core

import "math"

// defaultEpsilon is the NearlyEqual tolerance used when eps <= 0.
const defaultEpsilon = 1e-12

// denormalThreshold is the magnitude below which FlushDenormals returns 0.
const denormalThreshold = 1e-30

// Clamp limits value to [lo, hi]. Swapped bounds are accepted.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return min(max(value, lo), hi)
}

// NearlyEqual reports whether a and b agree within eps, absolutely or
// relative to the larger magnitude. eps <= 0 selects 1e-12.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	return diff <= eps*math.Max(math.Abs(a), math.Abs(b))
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals returns 0 for values too small to matter, keeping filter
// feedback paths out of subnormal arithmetic.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalThreshold {
		return 0
	}
	return x
}

// DBToLinear converts an amplitude level in dB to a linear gain.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude to dB: 0 maps to -Inf and
// negative input to NaN.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	default:
		return 20 * math.Log10(linear)
	}
}

//go:build fastmath

package effects

import "github.com/meko-christian/algo-approx"

// mathTanh evaluates tanh(|x|) = (1-e)/(1+e) with e = exp(-2|x|) and
// restores the sign, so the result is odd and keeps its precision near
// zero. Beyond |x| = 20 the result is +-1 in float64 anyway.
func mathTanh(x float64) float64 {
	a := x
	if a < 0 {
		a = -a
	}

	y := 1.0
	if a <= 20 {
		e := approx.FastExp(-2 * a)
		y = (1 - e) / (1 + e)
	}

	if x < 0 {
		return -y
	}
	return y
}

// mathSin uses the 7-term series; Bi folds large arguments, which the
// series reduces to [-pi/2, pi/2] first.
func mathSin(x float64) float64 {
	return approx.FastSinPrec(x, approx.PrecisionHigh)
}

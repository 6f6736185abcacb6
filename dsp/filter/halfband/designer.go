package halfband

import (
	"fmt"
	"math"
)

const (
	// DefaultCoefficientCount gives roughly 100 dB image rejection at the
	// default transition bandwidth.
	DefaultCoefficientCount = 8
	// DefaultTransition is the normalized transition bandwidth (fraction of
	// the oversampled rate) below Nyquist of the base rate.
	DefaultTransition = 0.05
)

// DesignCoefficients computes half-band allpass coefficients for the given
// number of coefficients and normalized transition bandwidth in (0, 0.5).
// The result is sorted ascending and every value lies in (0, 1).
func DesignCoefficients(numberOfCoeffs int, transition float64) ([]float64, error) {
	if err := validateDesignParams(numberOfCoeffs, transition); err != nil {
		return nil, err
	}

	k, q := transitionParams(transition)
	order := numberOfCoeffs*2 + 1

	coeffs := make([]float64, numberOfCoeffs)
	for i := range coeffs {
		coeffs[i] = coefficient(i, k, q, order)
	}

	return coeffs, nil
}

// Attenuation returns the stopband attenuation in dB achieved by a design
// with the given coefficient count and transition bandwidth.
func Attenuation(numberOfCoeffs int, transition float64) (float64, error) {
	if err := validateDesignParams(numberOfCoeffs, transition); err != nil {
		return 0, err
	}

	_, q := transitionParams(transition)
	order := numberOfCoeffs*2 + 1

	v := 4 * math.Exp(float64(order)*0.5*math.Log(q))
	return -10 * math.Log10(v/(1+v)), nil
}

func validateDesignParams(numberOfCoeffs int, transition float64) error {
	if numberOfCoeffs < 1 {
		return fmt.Errorf("halfband: number of coefficients must be >= 1: %d", numberOfCoeffs)
	}
	if math.IsNaN(transition) || transition <= 0 || transition >= 0.5 {
		return fmt.Errorf("halfband: transition must be in (0, 0.5): %g", transition)
	}

	return nil
}

func validateCoefficients(coeffs []float64) error {
	if len(coeffs) == 0 {
		return fmt.Errorf("halfband: coefficients must not be empty")
	}

	for i, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("halfband: coefficient[%d] is not finite", i)
		}
		if math.Abs(c) >= 1 {
			return fmt.Errorf("halfband: coefficient[%d] magnitude must be < 1 for stability: %g", i, c)
		}
	}

	return nil
}

// transitionParams returns the elliptic modulus k and nome q.
func transitionParams(transition float64) (k, q float64) {
	k = math.Pow(math.Tan((1-transition*2)*math.Pi*0.25), 2)
	kk := math.Pow(1-k*k, 0.25)
	e := 0.5 * (1 - kk) / (1 + kk)
	e4 := e * e * e * e
	q = e * (1 + e4*(2+e4*(15+150*e4)))

	return k, q
}

func coefficient(index int, k, q float64, order int) float64 {
	c := index + 1
	num := thetaNum(q, order, c) * math.Pow(q, 0.25)
	den := thetaDen(q, order, c) + 0.5
	ww := (num * num) / (den * den)

	r := math.Sqrt((1-ww*k)*(1-ww/k)) / (1 + ww)
	return (1 - r) / (1 + r)
}

func thetaNum(q float64, order, c int) float64 {
	var result float64
	sign := 1.0
	for i := 0; ; i++ {
		term := math.Pow(q, float64(i*(i+1))) * math.Sin(float64(i*2+1)*float64(c)*math.Pi/float64(order)) * sign
		result += term
		sign = -sign
		if math.Abs(term) <= 1e-100 {
			return result
		}
	}
}

func thetaDen(q float64, order, c int) float64 {
	var result float64
	sign := -1.0
	for i := 1; ; i++ {
		term := math.Pow(q, float64(i*i)) * math.Cos(2*float64(i)*float64(c)*math.Pi/float64(order)) * sign
		result += term
		sign = -sign
		if math.Abs(term) <= 1e-100 {
			return result
		}
	}
}

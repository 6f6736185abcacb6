package halfband

// stages holds the coefficients and first-order allpass memory of both
// polyphase paths. Stage i belongs to path i%2.
type stages struct {
	coeffs []float64
	xm     []float64
	ym     []float64
}

func newStages(coeffs []float64) (stages, error) {
	if err := validateCoefficients(coeffs); err != nil {
		return stages{}, err
	}

	c := make([]float64, len(coeffs))
	copy(c, coeffs)

	return stages{
		coeffs: c,
		xm:     make([]float64, len(c)),
		ym:     make([]float64, len(c)),
	}, nil
}

// run feeds a into path 0 and b into path 1 and returns both path outputs.
func (s *stages) run(a, b float64) (float64, float64) {
	n := len(s.coeffs)
	i := 0
	for ; i+1 < n; i += 2 {
		ya := s.coeffs[i]*(a-s.ym[i]) + s.xm[i]
		s.xm[i] = a
		s.ym[i] = ya
		a = ya

		yb := s.coeffs[i+1]*(b-s.ym[i+1]) + s.xm[i+1]
		s.xm[i+1] = b
		s.ym[i+1] = yb
		b = yb
	}

	if i < n {
		ya := s.coeffs[i]*(a-s.ym[i]) + s.xm[i]
		s.xm[i] = a
		s.ym[i] = ya
		a = ya
	}

	return a, b
}

func (s *stages) reset() {
	for i := range s.xm {
		s.xm[i] = 0
		s.ym[i] = 0
	}
}

func (s *stages) flushDenormals() {
	const tiny = 1e-30
	for i := range s.ym {
		if s.ym[i] > -tiny && s.ym[i] < tiny {
			s.ym[i] = 0
		}
		if s.xm[i] > -tiny && s.xm[i] < tiny {
			s.xm[i] = 0
		}
	}
}

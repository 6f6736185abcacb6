package halfband

// Upsampler2x doubles the sample rate of one channel.
type Upsampler2x struct {
	s stages
}

// NewUpsampler2x creates an upsampler from half-band allpass coefficients.
func NewUpsampler2x(coeffs []float64) (*Upsampler2x, error) {
	s, err := newStages(coeffs)
	if err != nil {
		return nil, err
	}

	return &Upsampler2x{s: s}, nil
}

// NumCoefficients returns the number of allpass stages.
func (u *Upsampler2x) NumCoefficients() int { return len(u.s.coeffs) }

// ProcessSample returns the two output samples for one input sample.
func (u *Upsampler2x) ProcessSample(x float64) (float64, float64) {
	return u.s.run(x, x)
}

// ProcessBlock writes 2*len(in) samples to out. out must hold at least
// 2*len(in) samples; in and out must not overlap.
func (u *Upsampler2x) ProcessBlock(out, in []float64) {
	if len(in) == 0 {
		return
	}
	_ = out[2*len(in)-1]
	for i, x := range in {
		out[2*i], out[2*i+1] = u.s.run(x, x)
	}
	u.s.flushDenormals()
}

// Reset clears the allpass memory.
func (u *Upsampler2x) Reset() { u.s.reset() }

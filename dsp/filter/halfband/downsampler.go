package halfband

// Downsampler2x halves the sample rate of one channel.
type Downsampler2x struct {
	s stages
}

// NewDownsampler2x creates a downsampler from half-band allpass
// coefficients.
func NewDownsampler2x(coeffs []float64) (*Downsampler2x, error) {
	s, err := newStages(coeffs)
	if err != nil {
		return nil, err
	}

	return &Downsampler2x{s: s}, nil
}

// NumCoefficients returns the number of allpass stages.
func (d *Downsampler2x) NumCoefficients() int { return len(d.s.coeffs) }

// ProcessSample consumes two input samples and returns one output sample.
func (d *Downsampler2x) ProcessSample(x0, x1 float64) float64 {
	a, b := d.s.run(x1, x0)
	return 0.5 * (a + b)
}

// ProcessBlock writes len(in)/2 samples to out. len(in) must be even and
// out must hold at least len(in)/2 samples. out may alias in.
func (d *Downsampler2x) ProcessBlock(out, in []float64) {
	n := len(in) / 2
	if n == 0 {
		return
	}
	_ = out[n-1]
	for i := range n {
		out[i] = d.ProcessSample(in[2*i], in[2*i+1])
	}
	d.s.flushDenormals()
}

// Reset clears the allpass memory.
func (d *Downsampler2x) Reset() { d.s.reset() }

// Package oversample provides a multichannel 2x oversampler built on
// polyphase IIR half-band filters.
//
// The usual sequence per block is Upsample, process the returned wide
// buffers in place, then Downsample. All buffers are allocated in Prepare;
// Upsample and Downsample do not allocate.
package oversample

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-wasabi/dsp/core"
	"github.com/cwbudde/algo-wasabi/dsp/filter/halfband"
)

// Factor is the oversampling ratio.
const Factor = 2

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	numCoeffs  int
	transition float64
}

func defaultConfig() config {
	return config{
		numCoeffs:  halfband.DefaultCoefficientCount,
		transition: halfband.DefaultTransition,
	}
}

// WithCoefficientCount sets the number of allpass coefficients per
// half-band filter in [1, 32].
func WithCoefficientCount(n int) Option {
	return func(cfg *config) error {
		if n < 1 || n > 32 {
			return fmt.Errorf("oversample: coefficient count must be in [1, 32]: %d", n)
		}

		cfg.numCoeffs = n

		return nil
	}
}

// WithTransition sets the normalized transition bandwidth in (0, 0.5).
func WithTransition(tbw float64) Option {
	return func(cfg *config) error {
		if tbw <= 0 || tbw >= 0.5 || math.IsNaN(tbw) {
			return fmt.Errorf("oversample: transition must be in (0, 0.5): %f", tbw)
		}

		cfg.transition = tbw

		return nil
	}
}

// Oversampler runs one upsampler/downsampler pair per channel.
type Oversampler struct {
	coeffs    []float64
	up        []*halfband.Upsampler2x
	down      []*halfband.Downsampler2x
	wide      [][]float64
	views     [][]float64
	blockSize int
	active    int // channels in the current block
	n         int // base-rate samples in the current block
}

// New creates an oversampler for the given channel count. Prepare must be
// called before the first block.
func New(channels int, opts ...Option) (*Oversampler, error) {
	if channels < 1 {
		return nil, fmt.Errorf("oversample: channels must be >= 1: %d", channels)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	coeffs, err := halfband.DesignCoefficients(cfg.numCoeffs, cfg.transition)
	if err != nil {
		return nil, fmt.Errorf("oversample: %w", err)
	}

	o := &Oversampler{
		coeffs: coeffs,
		up:     make([]*halfband.Upsampler2x, channels),
		down:   make([]*halfband.Downsampler2x, channels),
		wide:   make([][]float64, channels),
		views:  make([][]float64, channels),
	}

	for ch := range channels {
		if o.up[ch], err = halfband.NewUpsampler2x(coeffs); err != nil {
			return nil, err
		}
		if o.down[ch], err = halfband.NewDownsampler2x(coeffs); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Prepare sizes the internal buffers for blocks of up to blockSize
// samples and clears the filter state.
func (o *Oversampler) Prepare(blockSize int) error {
	if blockSize < 1 {
		return fmt.Errorf("oversample: block size must be >= 1: %d", blockSize)
	}

	for ch := range o.wide {
		o.wide[ch] = core.EnsureLen(o.wide[ch], Factor*blockSize)
	}

	o.blockSize = blockSize
	o.Reset()

	return nil
}

// Upsample filters in[ch] into the internal wide buffers and returns them.
// Only the first min(len(in), Channels()) channels are processed, and each
// block may hold at most BlockSize() samples; longer input is truncated.
// The returned slices are valid until the next Upsample or Prepare.
func (o *Oversampler) Upsample(in [][]float64) [][]float64 {
	active := min(len(in), len(o.up))
	n := 0
	if active > 0 {
		n = min(len(in[0]), o.blockSize)
	}

	for ch := range active {
		src := in[ch][:n]
		dst := o.wide[ch][:Factor*n]
		o.up[ch].ProcessBlock(dst, src)
		o.views[ch] = dst
	}

	o.active = active
	o.n = n

	return o.views[:active]
}

// Downsample decimates the wide buffers from the last Upsample into
// out[ch]. out must provide the same channels and at least as many samples
// as the preceding Upsample.
func (o *Oversampler) Downsample(out [][]float64) {
	active := min(o.active, len(out))
	for ch := range active {
		o.down[ch].ProcessBlock(out[ch][:o.n], o.wide[ch][:Factor*o.n])
	}
}

// Reset clears all filter memory and wide buffers.
func (o *Oversampler) Reset() {
	for ch := range o.up {
		o.up[ch].Reset()
		o.down[ch].Reset()
		clear(o.wide[ch])
	}
	o.active = 0
	o.n = 0
}

// Channels returns the number of channels the oversampler was built for.
func (o *Oversampler) Channels() int { return len(o.up) }

// BlockSize returns the prepared maximum base-rate block size.
func (o *Oversampler) BlockSize() int { return o.blockSize }

// Coefficients returns a copy of the half-band allpass coefficients.
func (o *Oversampler) Coefficients() []float64 {
	out := make([]float64, len(o.coeffs))
	copy(out, o.coeffs)
	return out
}

package wasabi

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-wasabi/dsp/core"
	"github.com/cwbudde/algo-wasabi/dsp/effects"
	"github.com/cwbudde/algo-wasabi/dsp/filter/biquad"
	"github.com/cwbudde/algo-wasabi/dsp/oversample"
	"github.com/cwbudde/algo-wasabi/plugin/params"
)

// ErrNotPrepared is returned by operations that need Prepare first.
var ErrNotPrepared = errors.New("wasabi: processor not prepared")

// ParamSource is the read side of the parameter store. Value must not
// block or allocate.
type ParamSource interface {
	Value(id params.ID) float64
}

// StreamState is the processor lifecycle stage.
type StreamState int

const (
	StateUninitialized StreamState = iota
	StatePrepared
	StateProcessing
	StateReleased
)

func (s StreamState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePrepared:
		return "prepared"
	case StateProcessing:
		return "processing"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("StreamState(%d)", int(s))
	}
}

// channelFilters is the filter memory of one channel. No section is shared
// between channels or roles.
type channelFilters struct {
	highPass biquad.Section
	mid      biquad.Section
	lowPass  biquad.Section
}

func (f *channelFilters) apply(c CoefficientSet) {
	f.highPass.SetCoefficients(c.HighPass)
	f.mid.SetCoefficients(c.Mid)
	f.lowPass.SetCoefficients(c.LowPass)
}

func (f *channelFilters) reset() {
	f.highPass.Reset()
	f.mid.Reset()
	f.lowPass.Reset()
}

func (f *channelFilters) flushDenormals() {
	flushSection(&f.highPass)
	flushSection(&f.mid)
	flushSection(&f.lowPass)
}

func flushSection(s *biquad.Section) {
	st := s.State()
	s.SetState([2]float64{core.FlushDenormals(st[0]), core.FlushDenormals(st[1])})
}

// Processor is the real-time block processor.
type Processor struct {
	src      ParamSource
	cfg      core.ProcessorConfig
	state    StreamState
	over     *oversample.Oversampler
	filters  [core.MaxChannels]channelFilters
	coeffs   CoefficientSet
	dist     effects.Distortion
	chunk    [][]float64
	bypassed bool
}

// NewProcessor creates a processor reading parameters from src for the
// given channel count (1 or 2). osOpts tune the oversampler.
func NewProcessor(src ParamSource, channels int, osOpts ...oversample.Option) (*Processor, error) {
	if src == nil {
		return nil, errors.New("wasabi: parameter source must not be nil")
	}
	if channels < 1 || channels > core.MaxChannels {
		return nil, fmt.Errorf("wasabi: channels must be in [1, %d]: %d", core.MaxChannels, channels)
	}

	over, err := oversample.New(channels, osOpts...)
	if err != nil {
		return nil, fmt.Errorf("wasabi: %w", err)
	}

	p := &Processor{
		src:   src,
		cfg:   core.ApplyProcessorOptions(core.WithChannels(channels)),
		over:  over,
		chunk: make([][]float64, channels),
	}
	for ch := range p.filters {
		p.filters[ch].apply(CoefficientSet{
			HighPass: biquad.Identity(),
			Mid:      biquad.Identity(),
			LowPass:  biquad.Identity(),
		})
	}

	return p, nil
}

// Prepare fixes the sample rate and maximum block size, sizes the
// oversampler and clears all filter memory. It must not run concurrently
// with ProcessBlock.
func (p *Processor) Prepare(sampleRate float64, blockSize int) error {
	cfg := core.ApplyProcessorOptions(core.WithChannels(p.cfg.Channels))
	cfg.SampleRate = sampleRate
	cfg.BlockSize = blockSize
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("wasabi: %w", err)
	}

	if err := p.over.Prepare(blockSize); err != nil {
		return fmt.Errorf("wasabi: %w", err)
	}

	for ch := range p.filters {
		p.filters[ch].reset()
	}

	p.cfg = cfg
	p.state = StatePrepared

	return nil
}

// ProcessBlock processes planar channels in place. Channels beyond the
// processor's channel count are zeroed. Blocks longer than the prepared
// size are processed in prepared-size chunks. Before Prepare, or with
// bypass on, buf is left untouched.
func (p *Processor) ProcessBlock(buf [][]float64) {
	if p.state != StatePrepared && p.state != StateProcessing {
		return
	}

	p.bypassed = p.src.Value(params.Bypass) > 0.5
	if p.bypassed {
		return
	}

	core.ZeroChannels(buf, p.cfg.Channels)

	active := min(len(buf), p.cfg.Channels)
	if active == 0 {
		return
	}

	n := len(buf[0])
	for ch := 1; ch < active; ch++ {
		n = min(n, len(buf[ch]))
	}

	p.loadParams()

	for off := 0; off < n; off += p.cfg.BlockSize {
		end := min(off+p.cfg.BlockSize, n)
		for ch := range active {
			p.chunk[ch] = buf[ch][off:end]
		}
		p.processChunk(p.chunk[:active])
	}

	for ch := range active {
		p.filters[ch].flushDenormals()
	}

	p.state = StateProcessing
}

// loadParams reads every parameter once and retunes the filters and the
// distortion for this block. Coefficients are designed at the host rate
// and run at FilterRate, so each cutoff sounds an octave above its setting.
func (p *Processor) loadParams() {
	p.coeffs = DesignCoefficients(p.cfg.SampleRate, FilterSettingsFrom(p.src))
	for ch := range p.cfg.Channels {
		p.filters[ch].apply(p.coeffs)
	}

	p.dist.Configure(
		effects.ModeFromParam(p.src.Value(params.DistortionType)),
		p.src.Value(params.Drive),
		p.src.Value(params.Range),
		p.src.Value(params.Volume),
		p.src.Value(params.Blend),
	)
}

func (p *Processor) processChunk(chunk [][]float64) {
	wide := p.over.Upsample(chunk)
	for ch, w := range wide {
		f := &p.filters[ch]
		f.highPass.ProcessBlock(w)
		f.mid.ProcessBlock(w)
		p.dist.ProcessInPlace(w)
		f.lowPass.ProcessBlock(w)
	}
	p.over.Downsample(chunk)
}

// Release clears oversampler and filter memory. Prepare must be called
// again before the next block.
func (p *Processor) Release() {
	p.over.Reset()
	for ch := range p.filters {
		p.filters[ch].reset()
	}
	if p.state != StateUninitialized {
		p.state = StateReleased
	}
}

// State returns the lifecycle stage.
func (p *Processor) State() StreamState { return p.state }

// Channels returns the channel count.
func (p *Processor) Channels() int { return p.cfg.Channels }

// SampleRate returns the prepared host sample rate, or 0 before Prepare.
func (p *Processor) SampleRate() float64 {
	if p.state == StateUninitialized {
		return 0
	}
	return p.cfg.SampleRate
}

// BlockSize returns the prepared maximum block size, or 0 before Prepare.
func (p *Processor) BlockSize() int {
	if p.state == StateUninitialized {
		return 0
	}
	return p.cfg.BlockSize
}

// FilterRate is the rate the filters and distortion run at.
func (p *Processor) FilterRate() float64 {
	return p.cfg.SampleRate * oversample.Factor
}

// Coefficients returns the coefficients used for the last processed block.
func (p *Processor) Coefficients() CoefficientSet { return p.coeffs }

// Bypassed reports whether the last block was bypassed.
func (p *Processor) Bypassed() bool { return p.bypassed }

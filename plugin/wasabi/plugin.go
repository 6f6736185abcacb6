package wasabi

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-wasabi/dsp/oversample"
	"github.com/cwbudde/algo-wasabi/plugin/bus"
	"github.com/cwbudde/algo-wasabi/plugin/params"
	"github.com/cwbudde/algo-wasabi/plugin/preset"
	"github.com/cwbudde/algo-wasabi/plugin/state"
)

// Name is the product name reported to hosts.
const Name = "Wasabi"

// Option configures a Plugin.
type Option func(*Plugin) error

// WithLogger sets the control-path logger. The default is the logrus
// standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Plugin) error {
		if log == nil {
			return fmt.Errorf("wasabi: logger must not be nil")
		}
		p.log = log
		return nil
	}
}

// WithLayout sets the initial bus layout. The default is stereo.
func WithLayout(l bus.Layout) Option {
	return func(p *Plugin) error {
		if err := bus.Validate(l); err != nil {
			return err
		}
		p.layout = l
		return nil
	}
}

// WithOversampling passes options to the oversampler.
func WithOversampling(opts ...oversample.Option) Option {
	return func(p *Plugin) error {
		p.osOpts = append(p.osOpts, opts...)
		return nil
	}
}

// Plugin is the host-facing effect: parameter store, programs, state blob,
// bus layout and the block processor. Control-path methods log; the
// audio-path method ProcessBlock does not.
type Plugin struct {
	store   *params.Store
	proc    *Processor
	layout  bus.Layout
	program atomic.Int32
	log     logrus.FieldLogger
	osOpts  []oversample.Option
}

// New creates a Plugin with default parameters and program 0 selected
// (parameters stay at their defaults until SetProgram is called).
func New(opts ...Option) (*Plugin, error) {
	p := &Plugin{
		store:  params.New(),
		layout: bus.Stereo,
		log:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	proc, err := NewProcessor(p.store, p.layout.Channels(), p.osOpts...)
	if err != nil {
		return nil, err
	}
	p.proc = proc

	p.log.WithFields(logrus.Fields{
		"function": "New",
		"layout":   p.layout.String(),
	}).Debug("Plugin created")

	return p, nil
}

// Params returns the live parameter store.
func (p *Plugin) Params() *params.Store { return p.store }

// Processor returns the block processor.
func (p *Plugin) Processor() *Processor { return p.proc }

// NumPrograms returns the number of factory programs.
func (p *Plugin) NumPrograms() int { return preset.Count() }

// CurrentProgram returns the selected program index.
func (p *Plugin) CurrentProgram() int { return int(p.program.Load()) }

// ProgramName returns the name of program i, or "" if out of range.
func (p *Plugin) ProgramName(i int) string { return preset.Name(i) }

// SetProgram selects a factory program and writes its values into the
// parameter store. i is clamped to the valid range.
func (p *Plugin) SetProgram(i int) {
	clamped := preset.Clamp(i)
	if clamped != i {
		p.log.WithFields(logrus.Fields{
			"function":  "SetProgram",
			"requested": i,
			"clamped":   clamped,
		}).Warn("Program index out of range")
	}

	if err := preset.Apply(p.store, clamped); err != nil {
		p.log.WithFields(logrus.Fields{
			"function": "SetProgram",
			"program":  clamped,
			"error":    err.Error(),
		}).Error("Program apply failed")
		return
	}
	p.program.Store(int32(clamped))

	p.log.WithFields(logrus.Fields{
		"function": "SetProgram",
		"program":  clamped,
		"name":     preset.Name(clamped),
	}).Info("Program selected")
}

// State returns the serialized parameters and current program.
func (p *Plugin) State() ([]byte, error) {
	data, err := state.Marshal(p.store, p.CurrentProgram())
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"function": "State",
			"error":    err.Error(),
		}).Error("State serialization failed")
		return nil, err
	}
	return data, nil
}

// SetState restores parameters and the current program from data. The
// saved values win over the program's factory values.
func (p *Plugin) SetState(data []byte) error {
	program, err := state.Unmarshal(data, p.store)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"function": "SetState",
			"bytes":    len(data),
			"error":    err.Error(),
		}).Error("State restore failed")
		return fmt.Errorf("wasabi: %w", err)
	}

	p.program.Store(int32(preset.Clamp(program)))

	p.log.WithFields(logrus.Fields{
		"function": "SetState",
		"bytes":    len(data),
		"program":  p.CurrentProgram(),
	}).Info("State restored")

	return nil
}

// Layout returns the active bus layout.
func (p *Plugin) Layout() bus.Layout { return p.layout }

// SetLayout changes the bus layout. Like Prepare it must only be called
// while no block is being processed. A prepared processor is re-prepared
// with the new channel count.
func (p *Plugin) SetLayout(l bus.Layout) error {
	if err := bus.Validate(l); err != nil {
		p.log.WithFields(logrus.Fields{
			"function": "SetLayout",
			"layout":   l.String(),
		}).Warn("Layout rejected")
		return err
	}
	if l == p.layout {
		return nil
	}

	proc, err := NewProcessor(p.store, l.Channels(), p.osOpts...)
	if err != nil {
		return err
	}
	if st := p.proc.State(); st == StatePrepared || st == StateProcessing {
		if err := proc.Prepare(p.proc.SampleRate(), p.proc.BlockSize()); err != nil {
			return err
		}
	}

	p.proc = proc
	p.layout = l

	p.log.WithFields(logrus.Fields{
		"function": "SetLayout",
		"layout":   l.String(),
	}).Info("Layout changed")

	return nil
}

// Prepare readies the processor for a stream.
func (p *Plugin) Prepare(sampleRate float64, blockSize int) error {
	if err := p.proc.Prepare(sampleRate, blockSize); err != nil {
		p.log.WithFields(logrus.Fields{
			"function":    "Prepare",
			"sample_rate": sampleRate,
			"block_size":  blockSize,
			"error":       err.Error(),
		}).Error("Prepare failed")
		return err
	}

	p.log.WithFields(logrus.Fields{
		"function":    "Prepare",
		"sample_rate": sampleRate,
		"block_size":  blockSize,
		"channels":    p.layout.Channels(),
	}).Info("Stream prepared")

	return nil
}

// ProcessBlock processes planar audio in place. See Processor.ProcessBlock.
func (p *Plugin) ProcessBlock(buf [][]float64) {
	p.proc.ProcessBlock(buf)
}

// Release ends the stream and clears filter memory.
func (p *Plugin) Release() {
	p.proc.Release()

	p.log.WithFields(logrus.Fields{
		"function": "Release",
	}).Info("Stream released")
}

// TailSeconds is the time the effect keeps ringing after silent input.
func (p *Plugin) TailSeconds() float64 { return 0 }

// AcceptsMIDI reports whether the effect consumes MIDI.
func (p *Plugin) AcceptsMIDI() bool { return false }

// ProducesMIDI reports whether the effect emits MIDI.
func (p *Plugin) ProducesMIDI() bool { return false }

package main

import (
	"encoding/binary"
	"math"

	"github.com/cwbudde/algo-wasabi/dsp/core"
	"github.com/cwbudde/algo-wasabi/plugin/wasabi"
)

const (
	outChannels    = 2
	bytesPerSample = 4
	bytesPerFrame  = outChannels * bytesPerSample
)

// source produces planar stereo input.
type source interface {
	fill(buf [][]float64)
}

type toneSource struct {
	phase float64
	step  float64
	amp   float64
}

func newToneSource(freq, sampleRate, amp float64) *toneSource {
	return &toneSource{step: 2 * math.Pi * freq / sampleRate, amp: amp}
}

func (s *toneSource) fill(buf [][]float64) {
	for i := range buf[0] {
		v := s.amp * math.Sin(s.phase)
		for ch := range buf {
			buf[ch][i] = v
		}
		s.phase += s.step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

// loopSource repeats a clip. Mono clips feed both channels.
type loopSource struct {
	clip [][]float64
	pos  int
}

func (s *loopSource) fill(buf [][]float64) {
	n := len(s.clip[0])
	for i := range buf[0] {
		for ch := range buf {
			buf[ch][i] = s.clip[min(ch, len(s.clip)-1)][s.pos]
		}
		s.pos++
		if s.pos == n {
			s.pos = 0
		}
	}
}

// player is the io.Reader the audio device pulls float32 LE stereo frames
// from. Read runs on the device goroutine and does not allocate once the
// first callback has sized the buffers.
type player struct {
	plugin *wasabi.Plugin
	src    source
	block  int
	buf    [][]float64
	frame  [][]float64
	inter  []float64
}

func newPlayer(p *wasabi.Plugin, src source, block int) *player {
	pl := &player{
		plugin: p,
		src:    src,
		block:  block,
		buf:    make([][]float64, outChannels),
		frame:  make([][]float64, outChannels),
		inter:  make([]float64, outChannels*block),
	}
	for ch := range pl.buf {
		pl.buf[ch] = make([]float64, block)
	}
	return pl
}

func (pl *player) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	out := p
	for frames > 0 {
		n := min(frames, pl.block)
		for ch := range pl.frame {
			pl.frame[ch] = pl.buf[ch][:n]
		}

		pl.src.fill(pl.frame)
		pl.plugin.ProcessBlock(pl.frame)

		inter := pl.inter[:n*outChannels]
		core.Interleave(inter, pl.frame)
		for i, v := range inter {
			v = core.Clamp(v, -1, 1)
			binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(float32(v)))
		}

		out = out[n*bytesPerFrame:]
		frames -= n
	}

	clear(out)

	return len(p), nil
}

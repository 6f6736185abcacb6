// Package wavio reads and writes planar float64 audio as PCM WAV files.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-wasabi/dsp/core"
)

const pcmFormat = 1

// ErrInvalidFile is returned for input that is not a PCM WAV file.
var ErrInvalidFile = errors.New("wavio: not a valid wav file")

// Audio is planar audio at a fixed sample rate.
type Audio struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Frames returns the number of samples per channel.
func (a Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Decode reads a whole WAV stream and scales samples to [-1, 1).
func Decode(r io.ReadSeeker) (Audio, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Audio{}, ErrInvalidFile
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("wavio: decode: %w", err)
	}

	channels := int(d.NumChans)
	bitDepth := int(d.BitDepth)
	if channels < 1 || bitDepth < 8 || bitDepth > 32 {
		return Audio{}, fmt.Errorf("%w: %d channels, %d bits", ErrInvalidFile, channels, bitDepth)
	}

	interleaved := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float64(v)
	}
	if bitDepth == 8 {
		// 8-bit WAV is unsigned.
		for i := range interleaved {
			interleaved[i] -= 128
		}
	}
	vecmath.ScaleBlockInPlace(interleaved, 1/fullScale(bitDepth))

	frames := len(interleaved) / channels
	out := Audio{
		SampleRate: int(d.SampleRate),
		BitDepth:   bitDepth,
		Channels:   make([][]float64, channels),
	}
	for ch := range out.Channels {
		out.Channels[ch] = make([]float64, frames)
	}
	core.Deinterleave(out.Channels, interleaved)

	return out, nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, err
	}
	defer f.Close()

	return Decode(f)
}

// Encoder settings.
type Options struct {
	// BitDepth is 16, 24 or 32.
	BitDepth int
	// Dither adds one LSB of TPDF dither before quantizing.
	Dither bool
	// Seed seeds the dither generator.
	Seed int64
}

// Encode writes a as integer PCM. Samples are clipped to [-1, 1].
func Encode(w io.WriteSeeker, a Audio, opts Options) error {
	switch opts.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("wavio: bit depth must be 16, 24 or 32: %d", opts.BitDepth)
	}
	channels := len(a.Channels)
	if channels == 0 {
		return errors.New("wavio: no channels to write")
	}
	if a.SampleRate <= 0 {
		return fmt.Errorf("wavio: sample rate must be > 0: %d", a.SampleRate)
	}

	interleaved := make([]float64, channels*a.Frames())
	core.Interleave(interleaved, a.Channels)

	scale := fullScale(opts.BitDepth)
	if opts.Dither {
		vecmath.AddDitherTPDF(interleaved, 1/scale, vecmath.NewDitherState(opts.Seed))
	}

	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		v = core.Clamp(v, -1, 1)
		data[i] = int(math.Max(-scale, math.Min(scale-1, math.Round(v*scale))))
	}

	enc := wav.NewEncoder(w, a.SampleRate, opts.BitDepth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: a.SampleRate},
		Data:           data,
		SourceBitDepth: opts.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}

	return nil
}

// WriteFile encodes a to a new file at path.
func WriteFile(path string, a Audio, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(f, a, opts)
}

func fullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

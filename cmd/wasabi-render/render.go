package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-wasabi/dsp/core"
	"github.com/cwbudde/algo-wasabi/internal/automation"
	"github.com/cwbudde/algo-wasabi/measure/harmonics"
	"github.com/cwbudde/algo-wasabi/plugin/bus"
	"github.com/cwbudde/algo-wasabi/plugin/wasabi"
)

// minReportDB floors dB values in reports.
const minReportDB = -200.0

// renderConfig is shared by every render of one invocation.
type renderConfig struct {
	core.ProcessorConfig
	// Input is planar audio with Channels channels.
	Input [][]float64
	// Fundamental is the test-tone frequency, or 0 for file input.
	Fundamental float64
	GainDB      float64
	Script      string
}

// report is one row of the summary table and the JSON report.
type report struct {
	Program     int       `json:"program"`
	Name        string    `json:"name"`
	Output      string    `json:"output,omitempty"`
	Peak        float64   `json:"peak"`
	RMS         float64   `json:"rms"`
	DC          float64   `json:"dc"`
	Fundamental float64   `json:"fundamentalHz"`
	Level       float64   `json:"fundamentalLevel"`
	THD         float64   `json:"thd"`
	THDdB       float64   `json:"thdDb"`
	Harmonics   []float64 `json:"harmonics"`
}

// render runs the whole input through a fresh plugin set to program and
// returns the processed audio and its analysis.
func render(ctx context.Context, cfg renderConfig, program int, log logrus.FieldLogger) ([][]float64, report, error) {
	layout := bus.Stereo
	if cfg.Channels == 1 {
		layout = bus.Mono
	}

	p, err := wasabi.New(wasabi.WithLogger(log), wasabi.WithLayout(layout))
	if err != nil {
		return nil, report{}, err
	}
	if err := p.Prepare(cfg.SampleRate, cfg.BlockSize); err != nil {
		return nil, report{}, err
	}
	defer p.Release()
	p.SetProgram(program)

	var script *automation.Script
	if cfg.Script != "" {
		script, err = automation.Compile(cfg.Script)
		if err != nil {
			return nil, report{}, err
		}
		defer script.Close()
	}

	frames := 0
	if len(cfg.Input) > 0 {
		frames = len(cfg.Input[0])
	}

	out := make([][]float64, cfg.Channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
		core.CopyInto(out[ch], cfg.Input[ch])
	}

	block := make([][]float64, cfg.Channels)
	for i, off := 0, 0; off < frames; i, off = i+1, off+cfg.BlockSize {
		if err := ctx.Err(); err != nil {
			return nil, report{}, err
		}
		if script != nil {
			if err := script.Run(ctx, float64(off)/cfg.SampleRate, i, p); err != nil {
				return nil, report{}, err
			}
		}

		end := min(off+cfg.BlockSize, frames)
		for ch := range block {
			block[ch] = out[ch][off:end]
		}
		p.ProcessBlock(block)
	}

	if !core.NearlyEqual(cfg.GainDB, 0, 0) {
		g := core.DBToLinear(cfg.GainDB)
		for ch := range out {
			vecmath.ScaleBlock(out[ch], out[ch], g)
		}
	}

	rep := report{Program: program, Name: p.ProgramName(program)}
	if frames > 0 {
		res, err := harmonics.Analyze(out[0], harmonics.Config{
			SampleRate:  cfg.SampleRate,
			Fundamental: cfg.Fundamental,
		})
		if err != nil {
			log.WithFields(logrus.Fields{
				"function": "render",
				"error":    err.Error(),
			}).Warn("Harmonic analysis skipped")
			rep.Peak = vecmath.MaxAbs(out[0])
		} else {
			rep.Peak = res.Peak
			rep.RMS = res.RMS
			rep.DC = res.DC
			rep.Fundamental = res.Fundamental
			rep.Level = res.FundamentalLevel
			rep.THD = res.THD
			rep.THDdB = res.THDdB
			rep.Harmonics = res.Harmonics
		}
	}

	// encoding/json rejects infinities.
	rep.THDdB = math.Max(rep.THDdB, minReportDB)

	return out, rep, nil
}

// toneInput builds a sine test signal on every channel.
func toneInput(cfg core.ProcessorConfig, freq, amp, seconds float64) [][]float64 {
	n := int(math.Round(seconds * cfg.SampleRate))
	in := make([][]float64, cfg.Channels)
	for ch := range in {
		in[ch] = make([]float64, n)
		step := 2 * math.Pi * freq / cfg.SampleRate
		for i := range in[ch] {
			in[ch][i] = amp * math.Sin(step*float64(i))
		}
	}
	return in
}

// outputPath derives a per-program file name when several programs are
// rendered to one -out path.
func outputPath(base string, program int, name string, multi bool) string {
	if base == "" || !multi {
		return base
	}

	ext := ""
	if i := strings.LastIndex(base, "."); i > strings.LastIndex(base, "/") {
		base, ext = base[:i], base[i:]
	}
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))

	return fmt.Sprintf("%s-%d-%s%s", base, program, slug, ext)
}

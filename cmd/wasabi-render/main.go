// Command wasabi-render renders audio through the Wasabi distortion offline.
//
// Usage:
//
//	wasabi-render [flags]
//
// Without -in it renders a sine test tone. With -all every factory program
// is rendered concurrently.
//
// Examples:
//
//	wasabi-render -preset 2
//	wasabi-render -all -freq 220 -seconds 1 -report presets.json
//	wasabi-render -in guitar.wav -out wet.wav -preset 0 -script sweep.lua
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-wasabi/dsp/core"
	"github.com/cwbudde/algo-wasabi/internal/wavio"
	"github.com/cwbudde/algo-wasabi/plugin/preset"
)

func main() {
	in := flag.String("in", "", "input WAV file (default: sine test tone)")
	out := flag.String("out", "", "output WAV file; with -all the program is appended to the name")
	program := flag.Int("preset", 0, "factory program index")
	all := flag.Bool("all", false, "render every factory program")
	rate := flag.Float64("rate", 44100, "sample rate of the test tone in Hz")
	block := flag.Int("block", 512, "processing block size in samples")
	freq := flag.Float64("freq", 1000, "test tone frequency in Hz")
	amp := flag.Float64("amp", 0.5, "test tone amplitude")
	seconds := flag.Float64("seconds", 2, "test tone length in seconds")
	gain := flag.Float64("gain", 0, "output gain in dB")
	scriptPath := flag.String("script", "", "Lua automation script")
	reportPath := flag.String("report", "", "write a JSON report to this file")
	bits := flag.Int("bits", 24, "output bit depth (16, 24 or 32)")
	dither := flag.Bool("dither", true, "apply TPDF dither to the output")
	logLevel := flag.String("log-level", "warning", "log level (debug, info, warning, error)")
	logJSON := flag.Bool("log-json", false, "log as JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wasabi-render [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders a test tone or WAV file through the Wasabi distortion\n")
		fmt.Fprintf(os.Stderr, "and prints level and harmonic statistics per program.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPrograms:\n")
		for i, p := range preset.Builtin() {
			fmt.Fprintf(os.Stderr, "  %d  %s\n", i, p.Name)
		}
	}
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		input:      *in,
		output:     *out,
		program:    *program,
		all:        *all,
		rate:       *rate,
		block:      *block,
		freq:       *freq,
		amp:        *amp,
		seconds:    *seconds,
		gain:       *gain,
		scriptPath: *scriptPath,
		reportPath: *reportPath,
		wav:        wavio.Options{BitDepth: *bits, Dither: *dither},
	}
	if err := run(ctx, opts, os.Stdout, log); err != nil {
		log.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("Render failed")
		os.Exit(1)
	}
}

type options struct {
	input      string
	output     string
	program    int
	all        bool
	rate       float64
	block      int
	freq       float64
	amp        float64
	seconds    float64
	gain       float64
	scriptPath string
	reportPath string
	wav        wavio.Options
}

func run(ctx context.Context, opts options, stdout io.Writer, log *logrus.Logger) error {
	cfg, err := loadInput(opts)
	if err != nil {
		return err
	}

	if opts.scriptPath != "" {
		src, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return err
		}
		cfg.Script = string(src)
	}

	programs := []int{opts.program}
	if opts.all {
		programs = programs[:0]
		for i := range preset.Count() {
			programs = append(programs, i)
		}
	} else if opts.program < 0 || opts.program >= preset.Count() {
		return fmt.Errorf("%w: %d", preset.ErrIndexOutOfRange, opts.program)
	}

	reports := make([]report, len(programs))
	g, ctx := errgroup.WithContext(ctx)
	for i, prog := range programs {
		g.Go(func() error {
			entry := log.WithField("program", prog)

			rendered, rep, err := render(ctx, cfg, prog, entry)
			if err != nil {
				return fmt.Errorf("program %d: %w", prog, err)
			}

			rep.Output = outputPath(opts.output, prog, rep.Name, opts.all)
			if rep.Output != "" {
				wopts := opts.wav
				wopts.Seed = int64(prog) + 1
				a := wavio.Audio{SampleRate: int(cfg.SampleRate), Channels: rendered}
				if err := wavio.WriteFile(rep.Output, a, wopts); err != nil {
					return fmt.Errorf("program %d: %w", prog, err)
				}
				entry.WithField("path", rep.Output).Info("Output written")
			}

			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := printReports(stdout, reports); err != nil {
		return err
	}

	if opts.reportPath != "" {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.reportPath, append(data, '\n'), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// loadInput reads -in or synthesizes the test tone.
func loadInput(opts options) (renderConfig, error) {
	if opts.input == "" {
		pc := core.ApplyProcessorOptions(
			core.WithSampleRate(opts.rate),
			core.WithBlockSize(opts.block),
			core.WithChannels(2),
		)
		if err := validate(pc, opts); err != nil {
			return renderConfig{}, err
		}
		if opts.seconds <= 0 {
			return renderConfig{}, fmt.Errorf("seconds must be > 0: %f", opts.seconds)
		}
		if opts.freq <= 0 || opts.freq >= opts.rate/2 {
			return renderConfig{}, fmt.Errorf("freq must be in (0, %g): %f", opts.rate/2, opts.freq)
		}

		return renderConfig{
			ProcessorConfig: pc,
			Input:           toneInput(pc, opts.freq, opts.amp, opts.seconds),
			Fundamental:     opts.freq,
			GainDB:          opts.gain,
		}, nil
	}

	a, err := wavio.ReadFile(opts.input)
	if err != nil {
		return renderConfig{}, err
	}
	if len(a.Channels) > core.MaxChannels {
		return renderConfig{}, fmt.Errorf("%s: %d channels, want mono or stereo", opts.input, len(a.Channels))
	}

	pc := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(a.SampleRate)),
		core.WithBlockSize(opts.block),
		core.WithChannels(len(a.Channels)),
	)
	if err := validate(pc, opts); err != nil {
		return renderConfig{}, err
	}

	return renderConfig{
		ProcessorConfig: pc,
		Input:           a.Channels,
		GainDB:          opts.gain,
	}, nil
}

// validate rejects flag values that ApplyProcessorOptions ignored.
func validate(pc core.ProcessorConfig, opts options) error {
	if pc.BlockSize != opts.block {
		return fmt.Errorf("block must be > 0: %d", opts.block)
	}
	if opts.input == "" && pc.SampleRate != opts.rate {
		return fmt.Errorf("rate must be > 0: %f", opts.rate)
	}
	return pc.Validate()
}

func printReports(w io.Writer, reports []report) error {
	if len(reports) == 0 {
		return errors.New("nothing rendered")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Program\tName\tPeak\tRMS\tDC\tTHD [%%]\tTHD [dB]\tOutput\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "-------\t----\t----\t---\t--\t-------\t--------\t------\n"); err != nil {
		return err
	}
	for _, r := range reports {
		out := r.Output
		if out == "" {
			out = "-"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%.5f\t%.2f\t%.2f\t%s\n",
			r.Program, r.Name, r.Peak, r.RMS, r.DC, r.THD*100, r.THDdB, out); err != nil {
			return err
		}
	}

	return tw.Flush()
}
